package backpressure

import (
	"sync/atomic"

	"github.com/fxsml/rxpipe/internal/logging"
	"github.com/fxsml/rxpipe/observable"
)

// Drop reasons passed to observable.Recorder.Dropped.
const (
	ReasonDropOldest = "drop_oldest"
	ReasonDropNewest = "drop_newest"
	ReasonThrottle   = "throttle"
)

// Logger is the logger interface used by all strategies.
type Logger = logging.Logger

// SetDefaultLogger sets the logger used by streams without WithLogger.
func SetDefaultLogger(l Logger) {
	logging.SetDefaultLogger(l)
}

// Stream is an Observable produced by a backpressure strategy.
type Stream[T any] struct {
	*observable.Observable[T]

	reason  string
	dropped atomic.Int64
}

// Dropped returns the number of values the strategy discarded or evicted.
func (s *Stream[T]) Dropped() int {
	return int(s.dropped.Load())
}

func (s *Stream[T]) drop() {
	n := s.dropped.Add(1)
	s.Recorder().Dropped(s.Name(), s.reason)
	s.Logger().Debug("RXPIPE: Value dropped", "stream", s.Name(), "strategy", s.reason, "dropped", n)
}
