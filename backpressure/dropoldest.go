package backpressure

import (
	"sync"

	"github.com/fxsml/rxpipe/observable"
)

// History is the Stream returned by DropOldest.
type History[T any] struct {
	*Stream[T]

	mu   sync.Mutex
	ring []T
	head int
	size int
}

// DropOldest forwards every value from src immediately and records the most
// recent capacity values. Recording past capacity evicts the oldest value,
// which counts as a drop. A capacity below one is treated as one.
func DropOldest[T any](src observable.Source[T], capacity int, opts ...observable.Option) *History[T] {
	h := &History[T]{
		Stream: &Stream[T]{reason: ReasonDropOldest},
		ring:   make([]T, max(capacity, 1)),
	}
	h.Observable = observable.Lift(func(down *observable.Observable[T]) {
		observable.Attach(down, src, observable.NewObserver(
			func(v T) {
				h.record(v)
				down.Emit(v)
			},
			down.Error,
			down.Complete,
		))
	}, opts...)
	return h
}

func (h *History[T]) record(v T) {
	h.mu.Lock()
	evicted := h.size == len(h.ring)
	if evicted {
		h.ring[h.head] = v
		h.head = (h.head + 1) % len(h.ring)
	} else {
		h.ring[(h.head+h.size)%len(h.ring)] = v
		h.size++
	}
	h.mu.Unlock()
	if evicted {
		h.drop()
	}
}

// Buffer returns the recorded values, oldest first.
func (h *History[T]) Buffer() []T {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]T, h.size)
	for i := range out {
		out[i] = h.ring[(h.head+i)%len(h.ring)]
	}
	return out
}

// Capacity returns the size of the history.
func (h *History[T]) Capacity() int {
	return len(h.ring)
}
