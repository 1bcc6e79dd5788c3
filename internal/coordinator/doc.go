// Package coordinator drives the busy state of a button while an action runs.
//
// A Coordinator is a two-state machine (Pending, Active) with two timers. A
// trigger while Pending invokes the action and arms a grace timer; if the
// grace period elapses first the loading flag turns on. Completion signals
// from the action pass through a trailing debouncer, and the first settled
// signal clears the loading flag, cancels the grace timer and returns the
// machine to Pending. Triggers while Active are ignored.
//
// All state lives on the Scheduler's serialized context: Trigger must be
// called there (use scheduler.Loop.Do from other goroutines), while the
// completion callback handed to the action may be called from anywhere and
// any number of times. An action that never completes leaves the coordinator
// Active, and loading after the grace period, for good; no timeout applies.
package coordinator
