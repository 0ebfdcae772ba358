package observable

import "github.com/juju/clock"

// Timestamp wraps every value from src in an Event stamped by clk.
// A nil clk uses the wall clock.
func Timestamp[T any](
	src Source[T],
	clk clock.Clock,
	opts ...Option,
) *Observable[Event[T]] {
	if clk == nil {
		clk = clock.WallClock
	}
	return Map(src, func(v T) (Event[T], error) {
		return NewEvent(v, clk), nil
	}, opts...)
}
