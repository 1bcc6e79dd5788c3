package scheduler

import "time"

// Immediate runs callbacks synchronously on the caller, ignoring the delay.
//
// It suits tests that only care about ordering, not about timing: a debounced
// or delayed callback fires inside the Schedule call itself.
type Immediate struct{}

// Now returns the wall clock time.
func (Immediate) Now() time.Time {
	return time.Now()
}

// Schedule runs fn right away and returns an already spent Handle.
func (Immediate) Schedule(_ time.Duration, fn func()) Handle {
	fn()

	return spent{}
}
