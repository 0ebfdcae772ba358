package observable

// Source is anything observers can subscribe to. *Observable is a hot
// Source; the values produced by Defer are cold and run their producer once
// per subscriber, which makes them re-subscribable.
type Source[T any] interface {
	Subscribe(observer Observer[T]) Subscription
}

// Cold is a Source that produces a fresh stream for every subscriber.
type Cold[T any] struct {
	produce func(Emitter[T])
	opts    []Option
}

// Defer creates a cold Source. produce is called synchronously inside every
// Subscribe with an Emitter bound to that subscriber only. The Emitter's Done
// channel is closed when the subscriber unsubscribes or the stream ends.
func Defer[T any](produce func(Emitter[T]), opts ...Option) *Cold[T] {
	return &Cold[T]{produce: produce, opts: opts}
}

type coldEmitter[T any] struct {
	*Observable[T]
	stop chan struct{}
}

func (e *coldEmitter[T]) Done() <-chan struct{} {
	return e.stop
}

// Subscribe runs the producer for observer.
func (c *Cold[T]) Subscribe(observer Observer[T]) Subscription {
	o := New[T](c.opts...)
	sub := o.Subscribe(observer)
	e := &coldEmitter[T]{Observable: o, stop: make(chan struct{})}
	o.OnRelease(func() { close(e.stop) })
	c.produce(e)
	return sub
}

func isDone(done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}

// FromSlice creates a cold Source that emits the values in order and completes.
func FromSlice[T any](values []T, opts ...Option) *Cold[T] {
	return Defer(func(e Emitter[T]) {
		for _, v := range values {
			if isDone(e.Done()) {
				return
			}
			e.Emit(v)
		}
		e.Complete()
	}, opts...)
}

// Just creates a cold Source that emits values and completes.
func Just[T any](values ...T) *Cold[T] {
	return FromSlice(values)
}

// Fail creates a cold Source that errors immediately with err.
func Fail[T any](err error) *Cold[T] {
	return Defer(func(e Emitter[T]) {
		e.Error(err)
	})
}

// Empty creates a cold Source that completes without emitting.
func Empty[T any]() *Cold[T] {
	return Defer(func(e Emitter[T]) {
		e.Complete()
	})
}
