// Package scheduler runs delayed callbacks on a single serialized context.
//
// A Scheduler hands out cancellable Handles. Three implementations exist:
//   - Loop owns one goroutine and drives real-time delays through a
//     clockwork.Clock; every callback runs on the loop goroutine.
//   - Virtual keeps manual time; callbacks run on the goroutine that calls
//     Advance or AdvanceTo, in due-time order, which makes timing scenarios
//     deterministic in tests.
//   - Immediate runs every callback synchronously and ignores the delay.
//
// Cancelling a Handle is idempotent and a cancelled callback never runs,
// even when it was already queued for execution.
package scheduler
