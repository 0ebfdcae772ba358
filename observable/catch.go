package observable

// Catch replaces an error from src with a fallback value: handler is called
// with the error, its result is emitted, then the returned Observable
// completes. If handler fails or panics, an *OperatorError is delivered
// instead.
func Catch[T any](
	src Source[T],
	handler func(error) (T, error),
	opts ...Option,
) *Observable[T] {
	return Lift(func(down *Observable[T]) {
		Attach(down, src, NewObserver(
			down.Emit,
			func(err error) {
				fallback, herr := protect(func() (T, error) { return handler(err) })
				if herr != nil {
					down.Error(newOperatorError("catch", herr))
					return
				}
				down.Emit(fallback)
				down.Complete()
			},
			down.Complete,
		))
	}, opts...)
}
