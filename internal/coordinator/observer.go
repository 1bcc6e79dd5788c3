package coordinator

import "time"

// Observer receives lifecycle notifications from a Coordinator. Methods are
// called on the scheduler context and must not block.
type Observer interface {
	// Triggered is called when a trigger starts cycle.
	Triggered(cycle uint64)
	// TriggerIgnored is called when a trigger arrives while Active.
	TriggerIgnored()
	// CompletionSignalled is called for every completion signal of cycle,
	// including repeated ones.
	CompletionSignalled(cycle uint64)
	// LoadingShown is called when the grace period of cycle elapsed.
	LoadingShown(cycle uint64)
	// Settled is called once per cycle when it returns to Pending.
	Settled(cycle uint64, elapsed time.Duration, showedLoading bool)
}

// NopObserver ignores every notification.
type NopObserver struct{}

// Triggered implements Observer.
func (NopObserver) Triggered(uint64) {}

// TriggerIgnored implements Observer.
func (NopObserver) TriggerIgnored() {}

// CompletionSignalled implements Observer.
func (NopObserver) CompletionSignalled(uint64) {}

// LoadingShown implements Observer.
func (NopObserver) LoadingShown(uint64) {}

// Settled implements Observer.
func (NopObserver) Settled(uint64, time.Duration, bool) {}
