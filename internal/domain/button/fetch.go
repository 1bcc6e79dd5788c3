package button

import (
	"time"

	"github.com/google/uuid"
)

// FetchFailedMessage is shown to the user when the fetch action fails.
const FetchFailedMessage = "Sorry, something went wrong. Please try again."

// Actor identifies who pressed the button.
type Actor struct {
	// Hostname is the machine the press came from.
	Hostname string
	// Username is the system user who pressed.
	Username string
}

// Clone returns a copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// String renders the actor as username@hostname.
func (a *Actor) String() string {
	if a == nil {
		return "<unknown>"
	}

	return a.Username + "@" + a.Hostname
}

// FetchState is the outcome of the fetch actions run so far.
type FetchState struct {
	// ResponseCode is the last fetched response code; uuid.Nil before the first success.
	ResponseCode uuid.UUID
	// TimesFetched counts successful fetches.
	TimesFetched int
	// ErrorMessage is set after a failed fetch and cleared by the next success.
	ErrorMessage string
	// LastActor pressed the button for the last successful fetch.
	LastActor *Actor
	// Timestamp is when the state last changed.
	Timestamp time.Time
}

// Clone returns a deep copy of the state.
func (s *FetchState) Clone() *FetchState {
	if s == nil {
		return nil
	}

	cloned := *s
	cloned.LastActor = s.LastActor.Clone()

	return &cloned
}

// Succeeded returns the state after a fetch returned code on behalf of actor.
func (s *FetchState) Succeeded(code uuid.UUID, actor *Actor, at time.Time) *FetchState {
	next := s.Clone()
	next.ResponseCode = code
	next.TimesFetched++
	next.ErrorMessage = ""
	next.LastActor = actor.Clone()
	next.Timestamp = at

	return next
}

// Failed returns the state after a failed fetch; counters are kept.
func (s *FetchState) Failed(at time.Time) *FetchState {
	next := s.Clone()
	next.ErrorMessage = FetchFailedMessage
	next.Timestamp = at

	return next
}

// Snapshot is a consistent view of a button at one instant.
type Snapshot struct {
	// State is the coordinator activity state.
	State ActivityState
	// Signals are the derived view signals.
	Signals Signals
	// Fetch is the fetch outcome; nil when the caller has no fetch feature.
	Fetch *FetchState
}
