package coordinator

import (
	"time"

	"github.com/oshokin/async-button/internal/scheduler"
)

// debouncer turns a burst of signals into one settle call.
//
// Every signal restarts a timer of period; when it elapses without another
// signal, settle runs. It settles at most once, after which signals are
// ignored. A debouncer lives for one activation only.
type debouncer struct {
	sched  scheduler.Scheduler
	period time.Duration
	settle func()

	timer   scheduler.Handle
	settled bool
}

// newDebouncer creates a debouncer calling settle after a quiet period.
func newDebouncer(sched scheduler.Scheduler, period time.Duration, settle func()) *debouncer {
	return &debouncer{
		sched:  sched,
		period: period,
		settle: settle,
	}
}

// signal restarts the quiet window.
func (d *debouncer) signal() {
	if d.settled {
		return
	}

	if d.timer != nil {
		d.timer.Cancel()
	}

	d.timer = d.sched.Schedule(d.period, d.fire)
}

// stop cancels a pending settle; later signals are ignored.
func (d *debouncer) stop() {
	d.settled = true

	if d.timer != nil {
		d.timer.Cancel()
		d.timer = nil
	}
}

// fire runs settle once.
func (d *debouncer) fire() {
	if d.settled {
		return
	}

	d.settled = true
	d.timer = nil
	d.settle()
}
