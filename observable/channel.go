package observable

import (
	"context"
	"sync"
)

// FromChannel emits every value received from in. It completes when in is
// closed and errors with ctx.Err() when ctx is done first. The channel is
// read by one goroutine started with the first subscriber. The goroutine also
// stops when the last subscriber unsubscribes.
func FromChannel[T any](ctx context.Context, in <-chan T, opts ...Option) *Observable[T] {
	return Lift(func(down *Observable[T]) {
		stop := make(chan struct{})
		down.OnRelease(func() { close(stop) })
		go func() {
			for {
				select {
				case <-stop:
					return
				case v, ok := <-in:
					if !ok {
						down.Complete()
						return
					}
					down.Emit(v)
				case <-ctx.Done():
					down.Error(ctx.Err())
					return
				}
			}
		}()
	}, opts...)
}

// Range creates a cold Source that emits count integers starting at start
// and completes.
func Range(start, count int, opts ...Option) *Cold[int] {
	return Defer(func(e Emitter[int]) {
		for i := range count {
			if isDone(e.Done()) {
				return
			}
			e.Emit(start + i)
		}
		e.Complete()
	}, opts...)
}

// ToSlice subscribes to src and collects its values until it terminates.
// It returns the values together with the error src ended with, or with
// ctx.Err() if ctx is done first.
func ToSlice[T any](ctx context.Context, src Source[T]) ([]T, error) {
	var (
		mu     sync.Mutex
		values []T
		err    error
	)
	done := make(chan struct{})
	var once sync.Once
	finish := func(e error) {
		once.Do(func() {
			mu.Lock()
			err = e
			mu.Unlock()
			close(done)
		})
	}
	sub := src.Subscribe(NewObserver(
		func(v T) {
			mu.Lock()
			values = append(values, v)
			mu.Unlock()
		},
		finish,
		func() { finish(nil) },
	))

	select {
	case <-done:
	case <-ctx.Done():
		sub.Unsubscribe()
		finish(ctx.Err())
	}
	mu.Lock()
	defer mu.Unlock()
	return values, err
}
