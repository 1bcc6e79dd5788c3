package button

import (
	"errors"
	"fmt"
	"time"
)

// ActivityState is the coordinator's position in a press cycle.
type ActivityState int

const (
	// Pending means no action is outstanding and a trigger starts a new cycle.
	Pending ActivityState = iota
	// Active means an action is running; further triggers are ignored.
	Active
)

// String returns a lower-case name of the state.
func (s ActivityState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseActivityState is the inverse of ActivityState.String.
func ParseActivityState(s string) (ActivityState, error) {
	switch s {
	case "pending":
		return Pending, nil
	case "active":
		return Active, nil
	default:
		return Pending, fmt.Errorf("activity state %q: %w", s, ErrUnknownState)
	}
}

const (
	// DefaultGracePeriod is how long an action may run before the busy indicator shows.
	DefaultGracePeriod = time.Second
	// DefaultDebouncePeriod is the quiet window required after the last completion signal.
	DefaultDebouncePeriod = 300 * time.Millisecond

	// loadingSuffix is appended to the label while loading.
	loadingSuffix = " - loading"
)

var (
	// ErrUnknownState is returned when an activity state name cannot be parsed.
	ErrUnknownState = errors.New("unknown activity state")
	// ErrNegativePeriod is returned when a grace or debounce period is negative.
	ErrNegativePeriod = errors.New("period must not be negative")
)

// Config is the immutable coordinator configuration.
type Config struct {
	// Label is the button title used for the accessibility label.
	Label string `yaml:"label"`
	// GracePeriod delays the busy indicator; zero means DefaultGracePeriod.
	GracePeriod time.Duration `yaml:"grace_period"`
	// DebouncePeriod is the trailing completion window; zero means DefaultDebouncePeriod.
	DebouncePeriod time.Duration `yaml:"debounce_period"`
}

// WithDefaults returns a copy of c where unset periods take their defaults.
func (c Config) WithDefaults() Config {
	if c.GracePeriod == 0 {
		c.GracePeriod = DefaultGracePeriod
	}

	if c.DebouncePeriod == 0 {
		c.DebouncePeriod = DefaultDebouncePeriod
	}

	return c
}

// Validate rejects negative periods.
func (c Config) Validate() error {
	if c.GracePeriod < 0 {
		return fmt.Errorf("grace period %s: %w", c.GracePeriod, ErrNegativePeriod)
	}

	if c.DebouncePeriod < 0 {
		return fmt.Errorf("debounce period %s: %w", c.DebouncePeriod, ErrNegativePeriod)
	}

	return nil
}
