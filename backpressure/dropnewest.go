package backpressure

import (
	"sync"

	"github.com/fxsml/rxpipe/observable"
)

// Window is the Stream returned by DropNewest.
type Window[T any] struct {
	*Stream[T]

	slots *window
}

type item[T any] struct {
	value T
	err   error
	done  bool
}

// DropNewest delivers values from src to its observers on a dedicated
// goroutine. At most capacity values are in flight between src and the
// observers; values arriving while the window is full are discarded. Error
// and completion are never discarded and are delivered after the values
// already admitted. A capacity below one is treated as one.
//
// The goroutine starts with the first notification from src. It exits after
// delivering the terminal notification or when the last observer
// unsubscribes.
func DropNewest[T any](src observable.Source[T], capacity int, opts ...observable.Option) *Window[T] {
	capacity = max(capacity, 1)
	w := &Window[T]{
		Stream: &Stream[T]{reason: ReasonDropNewest},
		slots:  newWindow(int64(capacity)),
	}
	w.Observable = observable.Lift(func(down *observable.Observable[T]) {
		// One extra slot keeps room for the terminal notification.
		ch := make(chan item[T], capacity+1)
		stop := make(chan struct{})
		down.OnRelease(func() { close(stop) })

		var start sync.Once
		send := func(it item[T]) {
			start.Do(func() { go w.run(down, ch, stop) })
			select {
			case ch <- it:
			case <-stop:
			}
		}
		observable.Attach(down, src, observable.NewObserver(
			func(v T) {
				if !w.slots.tryAcquire() {
					w.drop()
					return
				}
				send(item[T]{value: v})
			},
			func(err error) { send(item[T]{err: err, done: true}) },
			func() { send(item[T]{done: true}) },
		))
	}, opts...)
	return w
}

func (w *Window[T]) run(down *observable.Observable[T], ch <-chan item[T], stop <-chan struct{}) {
	for {
		var it item[T]
		select {
		case it = <-ch:
		case <-stop:
			return
		}
		if !it.done {
			down.Emit(it.value)
			w.slots.release()
			continue
		}
		if it.err != nil {
			down.Error(it.err)
		} else {
			down.Complete()
		}
		return
	}
}

// InFlight returns the number of admitted values not yet delivered.
func (w *Window[T]) InFlight() int {
	return w.slots.len()
}

// Capacity returns the size of the in-flight window.
func (w *Window[T]) Capacity() int {
	return int(w.slots.capacity)
}
