package observable

// Observer receives notifications from an Observable.
type Observer[T any] interface {
	// OnNext is called for every emitted value.
	OnNext(value T)
	// OnError is called at most once when the stream fails.
	OnError(err error)
	// OnCompleted is called at most once when the stream ends normally.
	OnCompleted()
}

// Emitter is the producer side of a stream.
type Emitter[T any] interface {
	Emit(value T)
	Error(err error)
	Complete()
	// Done is closed once no observer will receive further values.
	// Producers of long or unbounded streams stop when it is closed.
	Done() <-chan struct{}
}

type funcObserver[T any] struct {
	next      func(T)
	err       func(error)
	completed func()
}

// NewObserver builds an Observer from callbacks. Nil callbacks are ignored.
func NewObserver[T any](onNext func(T), onError func(error), onCompleted func()) Observer[T] {
	return &funcObserver[T]{
		next:      onNext,
		err:       onError,
		completed: onCompleted,
	}
}

func (o *funcObserver[T]) OnNext(value T) {
	if o.next != nil {
		o.next(value)
	}
}

func (o *funcObserver[T]) OnError(err error) {
	if o.err != nil {
		o.err(err)
	}
}

func (o *funcObserver[T]) OnCompleted() {
	if o.completed != nil {
		o.completed()
	}
}
