// Package observable provides a push-based, in-process event stream.
//
// An [Observable] holds an ordered list of [Observer]s and a terminal state.
// Producers call Emit, Error and Complete; every current observer is notified
// in subscription order, synchronously on the producer's goroutine unless the
// observable was created [WithQueue].
//
// # Quick Start
//
//	src := observable.New[int]()
//	doubled := observable.Map(src, func(v int) (int, error) { return v * 2, nil })
//	large := observable.Filter(doubled, func(v int) (bool, error) { return v > 4, nil })
//	large.Subscribe(observable.NewObserver(
//		func(v int) { fmt.Println(v) },
//		func(err error) { fmt.Println("error:", err) },
//		func() { fmt.Println("done") },
//	))
//	for i := 1; i <= 5; i++ {
//		src.Emit(i)
//	}
//	src.Complete()
//
// # Categories
//
// Sources: [New], [Defer], [FromSlice], [Just], [Fail], [Empty], [Range], [FromChannel]
//
// Operators: [Map], [Filter], [Take], [Timestamp]
//
// Fan-in: [Merge], [MergeWithConfig], [CombineLatest], [CombineLatest2]
//
// Error handling: [Retry], [RetryWithConfig], [Catch]
//
// Sinks: [ToSlice]
//
// Operator results connect to their sources lazily, when their first observer
// subscribes, so chains can be assembled over cold sources without losing
// values. An operator releases its sources when it terminates or when its
// last observer unsubscribes; a cold source sees this through
// [Emitter].Done and stops producing, even in the middle of a Subscribe call.
//
// For flow-control strategies, see the backpressure package.
package observable
