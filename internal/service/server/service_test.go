package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/async-button/internal/content"
	"github.com/oshokin/async-button/internal/coordinator"
	domain "github.com/oshokin/async-button/internal/domain/button"
	repo "github.com/oshokin/async-button/internal/repository/state"
	"github.com/oshokin/async-button/internal/scheduler"
)

var (
	errTestLoad  = errors.New("test load error")
	errTestFetch = errors.New("content server unreachable")
)

var testCode = uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")

// memoryRepository is a minimal in-memory Repository implementation for tests.
type memoryRepository struct {
	mu sync.Mutex
	// state is returned from Load.
	state *domain.FetchState
	// loadErr is returned from Load.
	loadErr error
	// saved is the last state passed to Save.
	saved *domain.FetchState
}

func (m *memoryRepository) Load(context.Context) (*domain.FetchState, error) {
	return m.state, m.loadErr
}

func (m *memoryRepository) Save(_ context.Context, s *domain.FetchState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saved = s

	return nil
}

func (m *memoryRepository) lastSaved() *domain.FetchState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saved
}

// fakeFetcher answers after delay with either err or testCode.
type fakeFetcher struct {
	delay time.Duration
	err   error
}

func (f *fakeFetcher) FetchResponseCode(context.Context) (*content.ResponseCode, error) {
	time.Sleep(f.delay)

	if f.err != nil {
		return nil, f.err
	}

	return &content.ResponseCode{Path: "/response_code", Code: testCode}, nil
}

// startService builds a service on a running loop. It must be called inside a synctest bubble.
func startService(t *testing.T, fetcher Fetcher, repository repo.Repository) (*service, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	loop := scheduler.NewLoop(nil)

	s, err := newService(ctx, loop, fetcher, repository, domain.Config{Label: "Fetch"}, coordinator.NopObserver{})
	require.NoError(t, err)

	go func() {
		_ = loop.Run(ctx)
	}()

	stop := func() {
		cancel()
		<-loop.Done()
	}

	return s, stop
}

// TestNewService_LoadsStateOrDefaults asserts newService behavior on existing, missing, and error states.
func TestNewService_LoadsStateOrDefaults(t *testing.T) {
	t.Parallel()

	old := &domain.FetchState{
		ResponseCode: testCode,
		TimesFetched: 4,
		LastActor:    &domain.Actor{Hostname: "desk-7", Username: "o.shokin"},
		Timestamp:    time.Unix(100, 0),
	}

	newTestService := func(r repo.Repository) (*service, error) {
		return newService(context.Background(), scheduler.NewLoop(nil), new(fakeFetcher), r,
			domain.Config{Label: "Fetch"}, nil)
	}

	s, err := newTestService(&memoryRepository{state: old})
	require.NoError(t, err)
	require.Equal(t, 4, s.fetch.TimesFetched)
	require.Equal(t, old.LastActor, s.fetch.LastActor)
	require.Equal(t, domain.Pending, s.snapshots.Latest().State)

	// Not found -> empty state.
	s, err = newTestService(&memoryRepository{loadErr: repo.ErrNotFound})
	require.NoError(t, err)
	require.Zero(t, s.fetch.TimesFetched)

	// Other error.
	s, err = newTestService(&memoryRepository{loadErr: errTestLoad})
	require.ErrorIs(t, err, errTestLoad)
	require.Nil(t, s)
}

// TestService_PressFetchesAndSettles walks a slow fetch through loading and settling.
func TestService_PressFetchesAndSettles(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		repository := new(memoryRepository)
		s, stop := startService(t, &fakeFetcher{delay: 1500 * time.Millisecond}, repository)
		defer stop()

		actor := &domain.Actor{Hostname: "desk-7", Username: "o.shokin"}
		ctx := context.Background()

		accepted, snapshot, err := s.Press(ctx, actor)
		require.NoError(t, err)
		require.True(t, accepted)
		require.Equal(t, domain.Active, snapshot.State)
		require.False(t, snapshot.Signals.IsLoading)

		// A second press while active is ignored.
		accepted, _, err = s.Press(ctx, &domain.Actor{Hostname: "other", Username: "someone"})
		require.NoError(t, err)
		require.False(t, accepted)

		time.Sleep(1200 * time.Millisecond)
		synctest.Wait()

		snapshot, err = s.Snapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.Active, snapshot.State)
		require.True(t, snapshot.Signals.IsLoading)
		require.Equal(t, "Fetch - loading", snapshot.Signals.AccessibilityLabel)

		// Fetch ends at 1.5s and the debounce settles at 1.8s.
		time.Sleep(time.Second)
		synctest.Wait()

		snapshot, err = s.Snapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.Pending, snapshot.State)
		require.False(t, snapshot.Signals.IsLoading)
		require.Equal(t, 1, snapshot.Fetch.TimesFetched)
		require.Equal(t, testCode, snapshot.Fetch.ResponseCode)
		require.Equal(t, actor, snapshot.Fetch.LastActor)
		require.Empty(t, snapshot.Fetch.ErrorMessage)

		saved := repository.lastSaved()
		require.NotNil(t, saved)
		require.Equal(t, 1, saved.TimesFetched)
	})
}

// TestService_FetchFailureSetsMessage verifies a quick failing fetch never shows loading.
func TestService_FetchFailureSetsMessage(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		s, stop := startService(t, &fakeFetcher{delay: 100 * time.Millisecond, err: errTestFetch}, nil)
		defer stop()

		ctx := context.Background()
		watch, err := s.Watch(ctx)
		require.NoError(t, err)

		var (
			mu       sync.Mutex
			sawShown bool
		)

		go func() {
			for snapshot := range watch {
				mu.Lock()
				sawShown = sawShown || snapshot.Signals.IsLoading
				mu.Unlock()
			}
		}()

		accepted, _, err := s.Press(ctx, &domain.Actor{Hostname: "h", Username: "u"})
		require.NoError(t, err)
		require.True(t, accepted)

		time.Sleep(2 * time.Second)
		synctest.Wait()

		snapshot, err := s.Snapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.Pending, snapshot.State)
		require.Equal(t, domain.FetchFailedMessage, snapshot.Fetch.ErrorMessage)
		require.Zero(t, snapshot.Fetch.TimesFetched)

		mu.Lock()
		require.False(t, sawShown)
		mu.Unlock()
	})
}

// TestService_CancelledFetchKeepsState leaves the stored state alone when shutdown cancels a fetch.
func TestService_CancelledFetchKeepsState(t *testing.T) {
	t.Parallel()

	old := &domain.FetchState{ResponseCode: testCode, TimesFetched: 2, Timestamp: time.Unix(100, 0)}
	repository := &memoryRepository{state: old}

	s, err := newService(context.Background(), scheduler.NewLoop(nil),
		&fakeFetcher{err: context.Canceled}, repository, domain.Config{Label: "Fetch"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.runFetch(ctx, &domain.Actor{Hostname: "h", Username: "u"})

	require.Nil(t, repository.lastSaved())
	require.Equal(t, 2, s.fetch.TimesFetched)
	require.Empty(t, s.fetch.ErrorMessage)

	wrapped := &fakeFetcher{err: fmt.Errorf("get root: %w", context.Canceled)}
	s.fetcher = wrapped

	s.runFetch(ctx, &domain.Actor{Hostname: "h", Username: "u"})
	require.Nil(t, repository.lastSaved())
	require.Empty(t, s.fetch.ErrorMessage)
}

// TestService_WatchEndsWhenLoopStops ensures watchers are released on shutdown.
func TestService_WatchEndsWhenLoopStops(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		s, stop := startService(t, new(fakeFetcher), nil)

		watch, err := s.Watch(context.Background())
		require.NoError(t, err)

		first := <-watch
		require.Equal(t, domain.Pending, first.State)

		stop()
		synctest.Wait()

		_, open := <-watch
		require.False(t, open)

		_, err = s.Watch(context.Background())
		require.ErrorIs(t, err, scheduler.ErrLoopStopped)

		_, _, err = s.Press(context.Background(), &domain.Actor{Hostname: "h", Username: "u"})
		require.ErrorIs(t, err, scheduler.ErrLoopStopped)
	})
}

// TestResolveListenAddress covers the override and port extraction rules.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	address, err := resolveListenAddress("button.example.com:8080", "")
	require.NoError(t, err)
	require.Equal(t, ":8080", address)

	address, err = resolveListenAddress("button.example.com:8080", "127.0.0.1:9090")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9090", address)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("no-port", "")
	require.Error(t, err)
}
