package scheduler

import (
	"sync"
	"time"
)

// Handle cancels a scheduled callback.
type Handle interface {
	// Cancel prevents the callback from running. Calling it more than once,
	// or after the callback ran, has no effect.
	Cancel()
}

// Scheduler runs callbacks after a delay on its serialized context.
// Schedule is safe for concurrent use; a delay <= 0 runs as soon as possible.
type Scheduler interface {
	// Now returns the scheduler's notion of the current time.
	Now() time.Time
	// Schedule arranges for fn to run after delay.
	Schedule(delay time.Duration, fn func()) Handle
}

// handleState is the lifecycle of a scheduled callback.
type handleState int

const (
	// scheduled callbacks may still run.
	scheduled handleState = iota
	// fired callbacks already ran.
	fired
	// cancelled callbacks never run.
	cancelled
)

// task is a Handle shared by all implementations; claim decides exactly once
// whether the callback runs.
type task struct {
	mu    sync.Mutex
	state handleState
	// onCancel releases implementation resources, such as a pending timer.
	onCancel func()
}

// Cancel implements Handle.
func (t *task) Cancel() {
	t.mu.Lock()

	if t.state != scheduled {
		t.mu.Unlock()
		return
	}

	t.state = cancelled
	onCancel := t.onCancel
	t.mu.Unlock()

	if onCancel != nil {
		onCancel()
	}
}

// claim marks the task fired and reports whether the callback may run.
func (t *task) claim() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != scheduled {
		return false
	}

	t.state = fired

	return true
}

// setOnCancel attaches a cleanup hook; it runs at once if already cancelled.
func (t *task) setOnCancel(fn func()) {
	t.mu.Lock()

	if t.state == cancelled {
		t.mu.Unlock()
		fn()

		return
	}

	t.onCancel = fn
	t.mu.Unlock()
}

// spent is the Handle of a callback that has already run.
type spent struct{}

// Cancel implements Handle.
func (spent) Cancel() {}
