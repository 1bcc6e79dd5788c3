package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/async-button/internal/config"
	domain "github.com/oshokin/async-button/internal/domain/button"
	"github.com/oshokin/async-button/internal/logger"
	"github.com/oshokin/async-button/internal/service/common"
)

// Options configures the command line client.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string

	// NoFollow makes Press return right after the server accepts the press.
	NoFollow bool
}

// defaultPushInterval defines retry delay when the server cannot be reached.
const defaultPushInterval = 1 * time.Second

// errStreamEnded is returned when the server closes a watch before the cycle settles.
var errStreamEnded = errors.New("server closed the signal stream")

// RunPress presses the button, retrying transient failures, then follows
// the cycle until it settles.
func RunPress(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "async-button-press")

	client, settings, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Pressing button", "server_address", settings.ServerAddress, "actor", actor.String())

	accepted, snapshot, err := pressWithRetry(ctx, client, actor)
	if err != nil {
		return err
	}

	if accepted {
		logger.Infof(ctx, "Press accepted: %s", formatSnapshot(snapshot))
	} else {
		logger.Infof(ctx, "Button is busy, following the running cycle: %s", formatSnapshot(snapshot))
	}

	if opts.NoFollow {
		return nil
	}

	final, err := follow(ctx, client)
	if err != nil {
		return err
	}

	logger.Infof(ctx, "Cycle settled: %s", formatSnapshot(final))

	return nil
}

// RunState prints the current snapshot.
func RunState(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "async-button-state")

	client, _, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	snapshot, err := client.GetState(ctx)
	if err != nil {
		return err
	}

	logger.Infof(ctx, "Button state: %s", formatSnapshot(snapshot))

	return nil
}

// RunWatch prints every snapshot until ctx is canceled or the server goes away.
func RunWatch(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "async-button-watch")

	client, _, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	stream, err := client.WatchSignals(ctx)
	if err != nil {
		return err
	}

	for {
		snapshot, err := stream.Recv()

		switch {
		case err == nil:
			logger.Info(ctx, formatSnapshot(snapshot))
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, io.EOF):
			return errStreamEnded
		default:
			return fmt.Errorf("receive snapshot: %w", err)
		}
	}
}

// connect loads the settings and dials the configured server.
func connect(ctx context.Context, opts *Options) (*common.Client, *config.Config, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	if opts.ServerAddress != "" {
		settings.ServerAddress = opts.ServerAddress
	}

	client, err := common.Dial(ctx, settings.ServerAddress, common.WithCallTimeout(settings.Timeout))
	if err != nil {
		return nil, nil, err
	}

	return client, settings, nil
}

// pressWithRetry calls Press until the server answers or ctx ends.
func pressWithRetry(ctx context.Context, client *common.Client, actor *domain.Actor) (bool, domain.Snapshot, error) {
	accepted, snapshot, err := client.Press(ctx, actor)
	if err == nil {
		return accepted, snapshot, nil
	}

	logger.ErrorKV(ctx, "Press failed", "error", err)

	ticker := time.NewTicker(defaultPushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, domain.Snapshot{}, ctx.Err()
		case <-ticker.C:
			accepted, snapshot, err := client.Press(ctx, actor)
			if err == nil {
				return accepted, snapshot, nil
			}

			logger.ErrorKV(ctx, "Press failed", "error", err)
		}
	}
}

// follow logs snapshots until the button is pending again. The watch is
// opened after the press, so the first pending snapshot ends the cycle.
func follow(ctx context.Context, client *common.Client) (domain.Snapshot, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := client.WatchSignals(watchCtx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	for {
		snapshot, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return domain.Snapshot{}, errStreamEnded
			}

			return domain.Snapshot{}, fmt.Errorf("receive snapshot: %w", err)
		}

		if snapshot.State == domain.Pending {
			return snapshot, nil
		}

		logger.Infof(ctx, "Progress: %s", formatSnapshot(snapshot))
	}
}

// formatSnapshot renders a snapshot as one readable log line.
func formatSnapshot(snapshot domain.Snapshot) string {
	line := fmt.Sprintf("state=%s label=%q alpha=%.0f",
		snapshot.State, snapshot.Signals.AccessibilityLabel, snapshot.Signals.ContentAlpha)

	fetch := snapshot.Fetch
	if fetch == nil {
		return line
	}

	if fetch.ErrorMessage != "" {
		return fmt.Sprintf("%s error=%q", line, fetch.ErrorMessage)
	}

	if fetch.ResponseCode == uuid.Nil {
		return line + " response_code=<none>"
	}

	timestamp := "<unknown>"
	if !fetch.Timestamp.IsZero() {
		timestamp = fetch.Timestamp.Format(time.RFC3339)
	}

	return fmt.Sprintf("%s response_code=%s times_fetched=%d by %s (%s)",
		line, fetch.ResponseCode, fetch.TimesFetched, fetch.LastActor, timestamp)
}
