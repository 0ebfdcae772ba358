package backpressure

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/fxsml/rxpipe/observable"
)

// Throttle forwards the first value from src and then drops every value until
// interval has passed since the last forwarded one. The check runs when a
// value arrives, against the clock set with observable.WithClock. An interval
// of zero or less forwards every value.
func Throttle[T any](src observable.Source[T], interval time.Duration, opts ...observable.Option) *Stream[T] {
	s := &Stream[T]{reason: ReasonThrottle}
	s.Observable = observable.Lift(func(down *observable.Observable[T]) {
		var limiter *rate.Limiter
		if interval > 0 {
			limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
		observable.Attach(down, src, observable.NewObserver(
			func(v T) {
				if limiter != nil && !limiter.AllowN(down.Clock().Now(), 1) {
					s.drop()
					return
				}
				down.Emit(v)
			},
			down.Error,
			down.Complete,
		))
	}, opts...)
	return s
}
