package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

// startLoop runs l in the background and stops it when the test ends.
func startLoop(t *testing.T, l *Loop) context.Context {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		_ = l.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})

	return ctx
}

// TestLoop_ScheduleFiresAfterDelay verifies that timers fire only after the fake clock advances.
func TestLoop_ScheduleFiresAfterDelay(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	loop := NewLoop(clock)
	ctx := startLoop(t, loop)

	var fired atomic.Int32

	loop.Schedule(time.Second, func() { fired.Add(1) })
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(999 * time.Millisecond)
	require.NoError(t, loop.Do(ctx, func() {}))
	require.Zero(t, fired.Load())

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
}

// TestLoop_CancelStopsTimer ensures a cancelled timer never reaches the loop.
func TestLoop_CancelStopsTimer(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	loop := NewLoop(clock)
	ctx := startLoop(t, loop)

	var fired atomic.Int32

	h := loop.Schedule(time.Second, func() { fired.Add(1) })
	h.Cancel()
	h.Cancel()

	clock.Advance(2 * time.Second)
	require.NoError(t, loop.Do(ctx, func() {}))
	require.Zero(t, fired.Load())
}

// TestLoop_CancelWhileQueued guards the race where a callback is queued but cancelled before running.
func TestLoop_CancelWhileQueued(t *testing.T) {
	t.Parallel()

	loop := NewLoop(clockwork.NewFakeClock())
	ctx := startLoop(t, loop)

	release := make(chan struct{})
	blocked := make(chan struct{})

	loop.Schedule(0, func() {
		close(blocked)
		<-release
	})
	<-blocked

	var fired atomic.Int32

	h := loop.Schedule(0, func() { fired.Add(1) })
	h.Cancel()
	close(release)

	require.NoError(t, loop.Do(ctx, func() {}))
	require.Zero(t, fired.Load())
}

// TestLoop_DoRunsSerially checks that Do executes on the loop in submission order.
func TestLoop_DoRunsSerially(t *testing.T) {
	t.Parallel()

	loop := NewLoop(nil)
	ctx := startLoop(t, loop)

	var order []int

	loop.Schedule(0, func() { order = append(order, 1) })
	require.NoError(t, loop.Do(ctx, func() { order = append(order, 2) }))
	require.NoError(t, loop.Do(ctx, func() { order = append(order, 3) }))

	require.Equal(t, []int{1, 2, 3}, order)
}

// TestLoop_StoppedRejectsWork verifies Run exclusivity and behaviour after shutdown.
func TestLoop_StoppedRejectsWork(t *testing.T) {
	t.Parallel()

	loop := NewLoop(clockwork.NewFakeClock())
	ctx, cancel := context.WithCancel(context.Background())

	errs := make(chan error, 1)

	go func() { errs <- loop.Run(ctx) }()

	require.NoError(t, loop.Do(ctx, func() {}))
	require.ErrorIs(t, loop.Run(ctx), ErrLoopAlreadyRunning)

	cancel()
	require.NoError(t, <-errs)

	err := loop.Do(context.Background(), func() {})
	require.ErrorIs(t, err, ErrLoopStopped)
}
