package observable

import (
	"fmt"
	"time"

	"github.com/juju/clock"
)

// Event is an immutable timestamped value.
type Event[T any] struct {
	timestamp time.Time
	value     T
}

// NewEvent stamps value with the current time of clk.
// A nil clk uses the wall clock.
func NewEvent[T any](value T, clk clock.Clock) Event[T] {
	if clk == nil {
		clk = clock.WallClock
	}
	return Event[T]{timestamp: clk.Now(), value: value}
}

// Timestamp returns the time the event was created.
func (e Event[T]) Timestamp() time.Time {
	return e.timestamp
}

// Value returns the event payload.
func (e Event[T]) Value() T {
	return e.value
}

func (e Event[T]) String() string {
	return fmt.Sprintf("%v@%s", e.value, e.timestamp.Format(time.RFC3339Nano))
}
