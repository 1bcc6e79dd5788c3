package integration

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/async-button/internal/config"
	domain "github.com/oshokin/async-button/internal/domain/button"
	"github.com/oshokin/async-button/internal/service/client"
	"github.com/oshokin/async-button/internal/service/common"
)

// TestGRPC_PressCycle presses the real server, follows the cycle and checks persistence across restarts.
func TestGRPC_PressCycle(t *testing.T) {
	t.Parallel()

	code := uuid.New()
	content := startContent(t, code, 400*time.Millisecond)
	statePath := filepath.Join(t.TempDir(), "state.yaml")

	settings := &config.Config{
		ServerAddress: reservePort(t),
		StateFile:     statePath,
		ContentURL:    content.URL,
		Timeout:       5 * time.Second,
		Button:        testButton,
	}

	stop := startServer(t, settings)
	ctx := context.Background()

	c, err := common.Dial(ctx, settings.ServerAddress)
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	actor := &domain.Actor{Hostname: "test-host", Username: "test-user"}

	accepted, snapshot, err := c.Press(ctx, actor)
	require.NoError(t, err)
	require.True(t, accepted)
	require.Equal(t, domain.Active, snapshot.State)

	// Pressing again during the cycle is ignored.
	accepted, _, err = c.Press(ctx, actor)
	require.NoError(t, err)
	require.False(t, accepted)

	watchCtx, cancelWatch := context.WithTimeout(ctx, 5*time.Second)
	defer cancelWatch()

	stream, err := c.WatchSignals(watchCtx)
	require.NoError(t, err)

	sawLoading := false

	for {
		snapshot, err = stream.Recv()
		require.NoError(t, err)

		sawLoading = sawLoading || snapshot.Signals.IsLoading

		if snapshot.State == domain.Pending {
			break
		}
	}

	require.True(t, sawLoading)
	require.False(t, snapshot.Signals.IsLoading)
	require.Equal(t, "Fetch", snapshot.Signals.AccessibilityLabel)
	require.NotNil(t, snapshot.Fetch)
	require.Equal(t, code, snapshot.Fetch.ResponseCode)
	require.Equal(t, 1, snapshot.Fetch.TimesFetched)
	require.Equal(t, actor, snapshot.Fetch.LastActor)

	stop()

	// The fetch state survives a restart.
	settings.ServerAddress = reservePort(t)
	stop = startServer(t, settings)
	defer stop()

	restarted, err := common.Dial(ctx, settings.ServerAddress)
	require.NoError(t, err)

	defer func() {
		_ = restarted.Close()
	}()

	snapshot, err = restarted.GetState(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Pending, snapshot.State)
	require.Equal(t, 1, snapshot.Fetch.TimesFetched)
	require.Equal(t, code, snapshot.Fetch.ResponseCode)
}

// TestClient_RunPress drives the CLI press flow end to end.
func TestClient_RunPress(t *testing.T) {
	t.Parallel()

	content := startContent(t, uuid.New(), 10*time.Millisecond)

	settings := &config.Config{
		ServerAddress: reservePort(t),
		StateFile:     filepath.Join(t.TempDir(), "state.yaml"),
		ContentURL:    content.URL,
		Timeout:       5 * time.Second,
		Button:        testButton,
	}

	stop := startServer(t, settings)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfgPath := writeSettings(t, settings)

	require.NoError(t, client.RunPress(ctx, &client.Options{ConfigPath: cfgPath}))
	require.NoError(t, client.RunState(ctx, &client.Options{ConfigPath: cfgPath}))
}

// TestMetrics_Endpoint checks coordinator counters are exported once a cycle settles.
func TestMetrics_Endpoint(t *testing.T) {
	t.Parallel()

	content := startContent(t, uuid.New(), 10*time.Millisecond)
	metricsAddress := reservePort(t)

	settings := &config.Config{
		ServerAddress:  reservePort(t),
		MetricsAddress: metricsAddress,
		StateFile:      filepath.Join(t.TempDir(), "state.yaml"),
		ContentURL:     content.URL,
		Timeout:        5 * time.Second,
		Button:         testButton,
	}

	stop := startServer(t, settings)
	defer stop()

	ctx := context.Background()

	c, err := common.Dial(ctx, settings.ServerAddress)
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	_, _, err = c.Press(ctx, &domain.Actor{Hostname: "h", Username: "u"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+metricsAddress+"/metrics", http.NoBody)
		if err != nil {
			return false
		}

		response, err := http.DefaultClient.Do(req)
		if err != nil {
			return false
		}

		defer func() {
			_ = response.Body.Close()
		}()

		body, err := io.ReadAll(response.Body)
		if err != nil {
			return false
		}

		return strings.Contains(string(body), "async_button_triggers_total 1") &&
			strings.Contains(string(body), "async_button_cycle_duration_seconds_count")
	}, 5*time.Second, 50*time.Millisecond)
}
