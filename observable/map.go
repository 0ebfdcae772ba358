package observable

// Map applies f to each value from src and emits the result.
// If f returns an error or panics, the returned Observable errors with an
// *OperatorError and the subscription to src is released. Errors and
// completion from src pass through unchanged.
func Map[In, Out any](
	src Source[In],
	f func(In) (Out, error),
	opts ...Option,
) *Observable[Out] {
	return Lift(func(down *Observable[Out]) {
		up := &down.up
		subscribeTo(up, src, NewObserver(
			func(v In) {
				if up.isReleased() {
					return
				}
				out, err := protect(func() (Out, error) { return f(v) })
				if err != nil {
					up.release()
					down.Error(newOperatorError("map", err))
					return
				}
				down.Emit(out)
			},
			down.Error,
			down.Complete,
		))
	}, opts...)
}
