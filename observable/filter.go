package observable

// Filter passes through values from src for which predicate returns true.
// A failing or panicking predicate errors the returned Observable with an
// *OperatorError.
func Filter[T any](
	src Source[T],
	predicate func(T) (bool, error),
	opts ...Option,
) *Observable[T] {
	return Lift(func(down *Observable[T]) {
		up := &down.up
		subscribeTo(up, src, NewObserver(
			func(v T) {
				if up.isReleased() {
					return
				}
				ok, err := protect(func() (bool, error) { return predicate(v) })
				if err != nil {
					up.release()
					down.Error(newOperatorError("filter", err))
					return
				}
				if ok {
					down.Emit(v)
				}
			},
			down.Error,
			down.Complete,
		))
	}, opts...)
}
