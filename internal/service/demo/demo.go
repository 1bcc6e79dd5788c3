package demo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/oshokin/async-button/internal/coordinator"
	domain "github.com/oshokin/async-button/internal/domain/button"
	"github.com/oshokin/async-button/internal/logger"
	"github.com/oshokin/async-button/internal/scheduler"
)

// Options configures a demo run.
type Options struct {
	// Button configures the coordinator; zero periods take their defaults.
	Button domain.Config
	// Duration is how long the simulated action runs before completing.
	Duration time.Duration
	// Completions is how many completion signals the action sends.
	Completions int
	// CompletionGap separates consecutive completion signals.
	CompletionGap time.Duration
	// Clock measures time; nil means the real clock.
	Clock clockwork.Clock
}

// Event is one value published on a signal stream.
type Event struct {
	// Elapsed is measured from the press.
	Elapsed time.Duration
	// Stream names the signal.
	Stream string
	// Value is the published value rendered as text.
	Value string
}

// Report summarizes a demo run.
type Report struct {
	// Events are the published signal values in order.
	Events []Event
	// Elapsed is the cycle duration from press to settle.
	Elapsed time.Duration
	// ShowedLoading reports whether the busy indicator appeared.
	ShowedLoading bool
}

// Stream names used in events.
const (
	StreamIsLoading          = "is_loading"
	StreamContentAlpha       = "content_alpha"
	StreamAccessibilityLabel = "accessibility_label"
)

// errNoCompletions is returned when the simulated action would never complete.
var errNoCompletions = errors.New("completions must be positive")

// settleObserver closes settled when the first cycle returns to Pending.
type settleObserver struct {
	coordinator.NopObserver

	settled chan struct{}
	report  *Report
}

func (o *settleObserver) Settled(_ uint64, elapsed time.Duration, showedLoading bool) {
	o.report.Elapsed = elapsed
	o.report.ShowedLoading = showedLoading
	close(o.settled)
}

// Run presses a local button once and blocks until the cycle settles.
func Run(ctx context.Context, opts *Options) (*Report, error) {
	ctx = logger.WithName(ctx, "async-button-demo")

	if opts.Completions <= 0 {
		return nil, errNoCompletions
	}

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	loop := scheduler.NewLoop(clock)

	loopCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		<-loop.Done()
	}()

	go func() {
		_ = loop.Run(loopCtx)
	}()

	report := new(Report)
	observer := &settleObserver{settled: make(chan struct{}), report: report}

	coord, err := coordinator.New(
		opts.Button,
		simulatedAction(loopCtx, clock, opts),
		loop,
		coordinator.WithObserver(observer),
		coordinator.WithLogger(logger.FromContext(logger.WithName(ctx, "coordinator"))),
	)
	if err != nil {
		return nil, fmt.Errorf("create coordinator: %w", err)
	}

	var (
		mu        sync.Mutex
		startedAt time.Time
	)

	record := func(name, value string) {
		mu.Lock()
		defer mu.Unlock()

		var elapsed time.Duration
		if !startedAt.IsZero() {
			elapsed = clock.Since(startedAt)
		}

		report.Events = append(report.Events, Event{Elapsed: elapsed, Stream: name, Value: value})
		logger.InfoKV(ctx, "Signal", "elapsed", elapsed, "stream", name, "value", value)
	}

	coord.IsLoading().Subscribe(func(v bool) { record(StreamIsLoading, strconv.FormatBool(v)) })
	coord.ContentAlpha().Subscribe(func(v float64) {
		record(StreamContentAlpha, strconv.FormatFloat(v, 'g', -1, 64))
	})
	coord.AccessibilityLabel().Subscribe(func(v string) { record(StreamAccessibilityLabel, v) })

	logger.InfoKV(ctx, "Pressing button",
		"duration", opts.Duration,
		"completions", opts.Completions,
		"grace_period", coord.Config().GracePeriod,
		"debounce_period", coord.Config().DebouncePeriod)

	err = loop.Do(ctx, func() {
		mu.Lock()
		startedAt = clock.Now()
		mu.Unlock()

		coord.Trigger()
	})
	if err != nil {
		return nil, fmt.Errorf("press: %w", err)
	}

	select {
	case <-observer.settled:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// Settled runs on the loop after the last publish; stopping the loop
	// before reading the report orders those writes.
	cancel()
	<-loop.Done()

	logger.InfoKV(ctx, "Cycle settled", "elapsed", report.Elapsed, "showed_loading", report.ShowedLoading)

	return report, nil
}

// simulatedAction waits for opts.Duration, then signals completion
// opts.Completions times separated by opts.CompletionGap.
func simulatedAction(ctx context.Context, clock clockwork.Clock, opts *Options) coordinator.Action {
	return func(complete coordinator.Completion) {
		go func() {
			if !sleep(ctx, clock, opts.Duration) {
				return
			}

			for i := range opts.Completions {
				if i > 0 && !sleep(ctx, clock, opts.CompletionGap) {
					return
				}

				complete()
			}
		}()
	}
}

// sleep waits for d on clock and reports false when ctx ended first.
func sleep(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	select {
	case <-clock.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
