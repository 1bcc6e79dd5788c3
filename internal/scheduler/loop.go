package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

var (
	// ErrLoopStopped is returned when work is submitted to a loop whose Run has returned.
	ErrLoopStopped = errors.New("scheduler loop stopped")
	// ErrLoopAlreadyRunning is returned when Run is called twice.
	ErrLoopAlreadyRunning = errors.New("scheduler loop already running")
)

// Loop is a real-time Scheduler backed by one goroutine.
//
// Delays are measured by a clockwork.Clock; when a delay elapses the callback
// is queued and executed by the goroutine inside Run. Work queued before Run
// starts executes once it does. The queue is unbounded, so callbacks may
// schedule further work without blocking the loop.
type Loop struct {
	clock clockwork.Clock

	mu      sync.Mutex
	queue   []func()
	stopped bool

	wake    chan struct{}
	done    chan struct{}
	running atomic.Bool
}

// NewLoop creates a loop measuring delays with clock; nil means the real clock.
func NewLoop(clock clockwork.Clock) *Loop {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Loop{
		clock: clock,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Run executes queued callbacks until ctx is done. After it returns the loop
// rejects new work and pending timers are dropped.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopAlreadyRunning
	}

	defer l.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.wake:
			l.drain(ctx)
		}
	}
}

// Now returns the loop clock's time.
func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// Schedule runs fn on the loop after delay.
func (l *Loop) Schedule(delay time.Duration, fn func()) Handle {
	t := new(task)
	run := func() {
		if t.claim() {
			fn()
		}
	}

	if delay <= 0 {
		l.post(run)

		return t
	}

	timer := l.clock.AfterFunc(delay, func() {
		l.post(run)
	})

	t.setOnCancel(func() {
		timer.Stop()
	})

	return t
}

// Do runs fn on the loop and waits for it to return. It must not be called
// from a loop callback. When ctx ends first, fn may still run later.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})

	if !l.post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrLoopStopped
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// post appends fn to the queue and wakes the loop.
func (l *Loop) post(fn func()) bool {
	l.mu.Lock()

	if l.stopped {
		l.mu.Unlock()
		return false
	}

	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}

	return true
}

// drain runs queued callbacks in batches until the queue is empty.
func (l *Loop) drain(ctx context.Context) {
	for ctx.Err() == nil {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return
		}

		for _, fn := range batch {
			fn()
		}
	}
}

// stop rejects further work and releases waiters.
func (l *Loop) stop() {
	l.mu.Lock()
	l.stopped = true
	l.queue = nil
	l.mu.Unlock()

	close(l.done)
}
