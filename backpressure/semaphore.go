package backpressure

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// window is a non-blocking wrapper around golang.org/x/sync/semaphore.Weighted
// that bounds the values a strategy holds in flight.
type window struct {
	sem      *semaphore.Weighted
	capacity int64
	inFlight atomic.Int64
}

func newWindow(capacity int64) *window {
	return &window{
		sem:      semaphore.NewWeighted(capacity),
		capacity: capacity,
	}
}

// tryAcquire takes a slot without blocking and reports whether it succeeded.
func (w *window) tryAcquire() bool {
	if !w.sem.TryAcquire(1) {
		return false
	}
	w.inFlight.Add(1)
	return true
}

// release frees a slot taken by tryAcquire.
func (w *window) release() {
	w.inFlight.Add(-1)
	w.sem.Release(1)
}

func (w *window) len() int {
	return int(w.inFlight.Load())
}
