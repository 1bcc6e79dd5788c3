package scheduler

import (
	"container/heap"
	"sync"
	"time"
)

// Virtual is a manually advanced scheduler.
//
// Time only moves inside Advance and AdvanceTo. Due callbacks run on the
// calling goroutine ordered by due time, then by scheduling order; callbacks
// may schedule more work, which runs in the same advance when it falls due.
type Virtual struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	seq   uint64
	queue virtualQueue
}

// NewVirtual creates a virtual scheduler whose clock starts at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{
		start: start,
		now:   start,
	}
}

// Now returns the virtual time.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.now
}

// Elapsed returns how far virtual time moved since the start.
func (v *Virtual) Elapsed() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.now.Sub(v.start)
}

// Pending returns the number of callbacks that are queued and not cancelled.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	count := 0

	for _, item := range v.queue {
		item.task.mu.Lock()
		if item.task.state == scheduled {
			count++
		}
		item.task.mu.Unlock()
	}

	return count
}

// Schedule queues fn to run once virtual time reaches now+delay.
func (v *Virtual) Schedule(delay time.Duration, fn func()) Handle {
	if delay < 0 {
		delay = 0
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.seq++
	item := &virtualItem{
		at:   v.now.Add(delay),
		seq:  v.seq,
		fn:   fn,
		task: new(task),
	}
	heap.Push(&v.queue, item)

	return item.task
}

// Advance moves virtual time forward by d, running everything that falls due.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now.Add(d)
	v.mu.Unlock()

	v.runUntil(target)
}

// AdvanceTo moves virtual time to start+elapsed. Moving backwards only runs
// callbacks that are already due.
func (v *Virtual) AdvanceTo(elapsed time.Duration) {
	v.runUntil(v.start.Add(elapsed))
}

// runUntil pops and runs due callbacks without holding the lock.
func (v *Virtual) runUntil(target time.Time) {
	for {
		v.mu.Lock()

		if v.queue.Len() == 0 || v.queue[0].at.After(target) {
			if target.After(v.now) {
				v.now = target
			}

			v.mu.Unlock()

			return
		}

		item, _ := heap.Pop(&v.queue).(*virtualItem)
		if item.at.After(v.now) {
			v.now = item.at
		}

		v.mu.Unlock()

		if item.task.claim() {
			item.fn()
		}
	}
}

// virtualItem is one queued callback.
type virtualItem struct {
	at   time.Time
	seq  uint64
	fn   func()
	task *task
}

// virtualQueue is a min-heap by (at, seq).
type virtualQueue []*virtualItem

func (q virtualQueue) Len() int { return len(q) }

func (q virtualQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}

	return q[i].at.Before(q[j].at)
}

func (q virtualQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *virtualQueue) Push(x any) {
	item, _ := x.(*virtualItem)
	*q = append(*q, item)
}

func (q *virtualQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]

	return item
}
