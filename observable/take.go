package observable

// Take forwards the first n values from src, then completes and unsubscribes
// from src. If n <= 0 the returned Observable completes as soon as it is
// subscribed to.
func Take[T any](
	src Source[T],
	n int,
	opts ...Option,
) *Observable[T] {
	return Lift(func(down *Observable[T]) {
		if n <= 0 {
			down.Complete()
			return
		}
		up := &down.up
		count := 0
		subscribeTo(up, src, NewObserver(
			func(v T) {
				if count >= n {
					return
				}
				count++
				down.Emit(v)
				if count == n {
					up.release()
					down.Complete()
				}
			},
			down.Error,
			down.Complete,
		))
	}, opts...)
}
