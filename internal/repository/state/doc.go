// Package state persists the button's fetch state.
//
// FileRepository stores the state as YAML on disk and implements the
// Repository interface the server service depends on. The on-disk record
// is decoupled from the domain type through explicit conversions.
package state
