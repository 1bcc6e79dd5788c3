package coordinator

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oshokin/async-button/internal/domain/button"
	"github.com/oshokin/async-button/internal/logger"
	"github.com/oshokin/async-button/internal/scheduler"
	"github.com/oshokin/async-button/internal/stream"
)

// Completion signals that the action finished. It may be called from any
// goroutine, any number of times.
type Completion func()

// Action is the work performed on trigger. It should eventually call
// complete at least once; never calling it leaves the coordinator Active.
type Action func(complete Completion)

var (
	// ErrNoAction is returned by New when the action is nil.
	ErrNoAction = errors.New("action must be provided")
	// ErrNoScheduler is returned by New when the scheduler is nil.
	ErrNoScheduler = errors.New("scheduler must be provided")
)

// Coordinator is the async button state machine. Except for the streams and
// accessors documented as safe, its methods must run on the scheduler context.
type Coordinator struct {
	cfg      button.Config
	action   Action
	sched    scheduler.Scheduler
	observer Observer
	log      *zap.SugaredLogger

	state   button.ActivityState
	loading bool

	// cycle identifies the current activation; stale callbacks compare against it.
	cycle     uint64
	startedAt time.Time
	grace     scheduler.Handle
	debouncer *debouncer
	shown     bool

	loadingStream *stream.Stream[bool]
	alphaStream   *stream.Stream[float64]
	labelStream   *stream.Stream[string]
	signalsStream *stream.Stream[button.Signals]
	stateStream   *stream.Stream[button.ActivityState]
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithObserver registers lifecycle hooks.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithLogger sets the logger used for cycle transitions.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Pending, not loading coordinator. Zero periods in cfg take
// their defaults.
func New(cfg button.Config, action Action, sched scheduler.Scheduler, opts ...Option) (*Coordinator, error) {
	if action == nil {
		return nil, ErrNoAction
	}

	if sched == nil {
		return nil, ErrNoScheduler
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("coordinator config: %w", err)
	}

	c := &Coordinator{
		cfg:      cfg,
		action:   action,
		sched:    sched,
		observer: NopObserver{},
		log:      logger.Logger(),
		state:    button.Pending,
	}

	for _, opt := range opts {
		opt(c)
	}

	label := cfg.Label
	c.loadingStream = stream.New(false)
	c.alphaStream = stream.Map(c.loadingStream, button.ContentAlpha)
	c.labelStream = stream.Map(c.loadingStream, func(isLoading bool) string {
		return button.AccessibilityLabel(label, isLoading)
	})
	c.signalsStream = stream.Map(c.loadingStream, func(isLoading bool) button.Signals {
		return button.SignalsFor(label, isLoading)
	})
	c.stateStream = stream.New(button.Pending)

	return c, nil
}

// Config returns the effective configuration.
func (c *Coordinator) Config() button.Config {
	return c.cfg
}

// Trigger starts a cycle when Pending and reports whether it did. While
// Active it does nothing and returns false.
func (c *Coordinator) Trigger() bool {
	if c.state == button.Active {
		c.observer.TriggerIgnored()
		c.log.Debugw("Trigger ignored, action in flight", "cycle", c.cycle)

		return false
	}

	c.cycle++
	cycle := c.cycle
	c.startedAt = c.sched.Now()
	c.shown = false
	c.debouncer = newDebouncer(c.sched, c.cfg.DebouncePeriod, func() { c.finalize(cycle) })
	c.setState(button.Active)

	c.observer.Triggered(cycle)
	c.log.Debugw("Cycle started", "cycle", cycle)

	c.action(c.completion(cycle))

	// The action may have settled the cycle synchronously.
	if c.cycle != cycle || c.state != button.Active {
		return true
	}

	c.grace = c.sched.Schedule(c.cfg.GracePeriod, func() { c.graceElapsed(cycle) })

	return true
}

// State returns the activity state. Must run on the scheduler context.
func (c *Coordinator) State() button.ActivityState {
	return c.state
}

// Loading returns the loading flag. Must run on the scheduler context.
func (c *Coordinator) Loading() bool {
	return c.loading
}

// Snapshot returns the state and signals. Must run on the scheduler context.
func (c *Coordinator) Snapshot() button.Snapshot {
	return button.Snapshot{
		State:   c.state,
		Signals: button.SignalsFor(c.cfg.Label, c.loading),
	}
}

// IsLoading is the loading flag stream. Safe for concurrent use.
func (c *Coordinator) IsLoading() *stream.Stream[bool] {
	return c.loadingStream
}

// ContentAlpha is the content opacity stream. Safe for concurrent use.
func (c *Coordinator) ContentAlpha() *stream.Stream[float64] {
	return c.alphaStream
}

// AccessibilityLabel is the accessibility label stream. Safe for concurrent use.
func (c *Coordinator) AccessibilityLabel() *stream.Stream[string] {
	return c.labelStream
}

// Signals combines the three derived signals. Safe for concurrent use.
func (c *Coordinator) Signals() *stream.Stream[button.Signals] {
	return c.signalsStream
}

// States is the activity state stream. Safe for concurrent use.
func (c *Coordinator) States() *stream.Stream[button.ActivityState] {
	return c.stateStream
}

// completion builds the callback handed to the action of cycle. Calls are
// moved onto the scheduler context before touching state.
func (c *Coordinator) completion(cycle uint64) Completion {
	return func() {
		c.sched.Schedule(0, func() {
			if cycle != c.cycle || c.debouncer == nil {
				return
			}

			c.observer.CompletionSignalled(cycle)
			c.debouncer.signal()
		})
	}
}

// graceElapsed shows the busy indicator if cycle is still running.
func (c *Coordinator) graceElapsed(cycle uint64) {
	if cycle != c.cycle || c.state != button.Active {
		return
	}

	c.grace = nil
	c.shown = true
	c.observer.LoadingShown(cycle)
	c.log.Debugw("Grace period elapsed, showing busy indicator", "cycle", cycle)
	c.setLoading(true)
}

// finalize ends cycle: loading off, back to Pending, grace timer cancelled.
func (c *Coordinator) finalize(cycle uint64) {
	if cycle != c.cycle || c.state != button.Active {
		return
	}

	c.setLoading(false)
	c.setState(button.Pending)

	if c.grace != nil {
		c.grace.Cancel()
		c.grace = nil
	}

	if c.debouncer != nil {
		c.debouncer.stop()
		c.debouncer = nil
	}

	elapsed := c.sched.Now().Sub(c.startedAt)
	c.observer.Settled(cycle, elapsed, c.shown)
	c.log.Debugw("Cycle settled", "cycle", cycle, "elapsed", elapsed, "showed_loading", c.shown)
}

// setLoading updates the flag and publishes it, even when unchanged, so
// observers see every settle.
func (c *Coordinator) setLoading(isLoading bool) {
	c.loading = isLoading
	c.loadingStream.Publish(isLoading)
}

// setState updates and publishes the activity state.
func (c *Coordinator) setState(state button.ActivityState) {
	c.state = state
	c.stateStream.Publish(state)
}
