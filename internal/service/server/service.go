package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oshokin/async-button/internal/content"
	"github.com/oshokin/async-button/internal/coordinator"
	domain "github.com/oshokin/async-button/internal/domain/button"
	"github.com/oshokin/async-button/internal/logger"
	repo "github.com/oshokin/async-button/internal/repository/state"
	"github.com/oshokin/async-button/internal/scheduler"
	"github.com/oshokin/async-button/internal/stream"
)

// Fetcher retrieves a response code from the content server.
type Fetcher interface {
	FetchResponseCode(ctx context.Context) (*content.ResponseCode, error)
}

// service runs the button coordinator on a scheduler loop and turns every
// press into a content fetch.
type service struct {
	loop    *scheduler.Loop
	coord   *coordinator.Coordinator
	fetcher Fetcher
	repo    repo.Repository

	// pressedBy is the actor of the latest press; touched on the loop only.
	pressedBy *domain.Actor

	// mu protects fetch, which the fetch goroutine replaces.
	mu    sync.RWMutex
	fetch *domain.FetchState

	snapshots *stream.Stream[domain.Snapshot]
}

// newService loads the persisted fetch state and builds a coordinator on loop.
// It must be called before loop runs.
func newService(
	ctx context.Context,
	loop *scheduler.Loop,
	fetcher Fetcher,
	repository repo.Repository,
	cfg domain.Config,
	observer coordinator.Observer,
) (*service, error) {
	s := &service{
		loop:    loop,
		fetcher: fetcher,
		repo:    repository,
		fetch:   new(domain.FetchState),
	}

	if repository != nil {
		state, err := repository.Load(ctx)

		switch {
		case err == nil:
			if state != nil {
				s.fetch = state
			}
		case errors.Is(err, repo.ErrNotFound):
			// Keep the empty state.
		default:
			return nil, fmt.Errorf("load state: %w", err)
		}
	}

	coord, err := coordinator.New(
		cfg,
		s.action(ctx),
		loop,
		coordinator.WithObserver(observer),
		coordinator.WithLogger(logger.FromContext(logger.WithName(ctx, "coordinator"))),
	)
	if err != nil {
		return nil, fmt.Errorf("create coordinator: %w", err)
	}

	s.coord = coord
	s.snapshots = stream.New(s.snapshot())

	// Both streams publish on the loop, where reading the coordinator is safe.
	coord.Signals().Subscribe(func(domain.Signals) {
		s.snapshots.Publish(s.snapshot())
	})
	coord.States().Subscribe(func(domain.ActivityState) {
		s.snapshots.Publish(s.snapshot())
	})

	return s, nil
}

// Press triggers the coordinator on behalf of actor.
func (s *service) Press(ctx context.Context, actor *domain.Actor) (bool, domain.Snapshot, error) {
	var (
		accepted bool
		snapshot domain.Snapshot
	)

	err := s.loop.Do(ctx, func() {
		if s.coord.State() == domain.Pending {
			s.pressedBy = actor.Clone()
		}

		accepted = s.coord.Trigger()
		snapshot = s.snapshot()
	})
	if err != nil {
		return false, domain.Snapshot{}, fmt.Errorf("press: %w", err)
	}

	if accepted {
		logger.InfoKV(ctx, "Button pressed", "actor", actor.String())
	} else {
		logger.DebugKV(ctx, "Press ignored while active", "actor", actor.String())
	}

	return accepted, snapshot, nil
}

// Snapshot returns the current state read on the loop.
func (s *service) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var snapshot domain.Snapshot

	if err := s.loop.Do(ctx, func() { snapshot = s.snapshot() }); err != nil {
		return domain.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	return snapshot, nil
}

// Watch follows snapshot changes until ctx ends or the loop stops.
func (s *service) Watch(ctx context.Context) (<-chan domain.Snapshot, error) {
	select {
	case <-s.loop.Done():
		return nil, scheduler.ErrLoopStopped
	default:
	}

	watchCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer cancel()

		select {
		case <-s.loop.Done():
		case <-watchCtx.Done():
		}
	}()

	return s.snapshots.Watch(watchCtx), nil
}

// snapshot combines the coordinator view with the fetch state. Loop only.
func (s *service) snapshot() domain.Snapshot {
	snapshot := s.coord.Snapshot()

	s.mu.RLock()
	snapshot.Fetch = s.fetch.Clone()
	s.mu.RUnlock()

	return snapshot
}

// action fetches a response code off the loop and completes when done.
func (s *service) action(ctx context.Context) coordinator.Action {
	return func(complete coordinator.Completion) {
		actor := s.pressedBy

		go func() {
			defer complete()

			s.runFetch(ctx, actor)
		}()
	}
}

// runFetch records the outcome of one fetch and persists it.
func (s *service) runFetch(ctx context.Context, actor *domain.Actor) {
	ctx = logger.WithKV(ctx, "actor", actor.String())

	code, err := s.fetcher.FetchResponseCode(ctx)
	if errors.Is(err, context.Canceled) {
		logger.InfoKV(ctx, "Fetch cancelled on shutdown, state kept")

		return
	}

	now := s.loop.Now()

	s.mu.Lock()

	if err != nil {
		s.fetch = s.fetch.Failed(now)
	} else {
		s.fetch = s.fetch.Succeeded(code.Code, actor, now)
	}

	next := s.fetch.Clone()
	s.mu.Unlock()

	if err != nil {
		logger.WarnKV(ctx, "Fetch failed", "error", err)
	} else {
		logger.InfoKV(ctx, "Fetched response code", "path", code.Path, "times_fetched", next.TimesFetched)
	}

	if s.repo == nil {
		return
	}

	if err := s.repo.Save(ctx, next); err != nil {
		logger.Errorf(ctx, "Failed to persist fetch state: %v", err)
	}
}
