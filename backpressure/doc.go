/*
Package backpressure provides flow-control strategies for streams whose
consumer cannot keep up with the producer.

Every strategy wraps an observable.Source and returns a Stream, an
*observable.Observable that also counts the values the strategy dropped:

	DropOldest  keeps a bounded history of recent values, evicting the oldest.
	            Every value is still forwarded.
	DropNewest  admits values into a bounded in-flight window drained by a
	            consumer goroutine and discards values while the window is full.
	Throttle    forwards the first value of each interval and drops the rest.

Each drop is logged at debug level and reported to the stream Recorder with
the strategy name as reason.

	src := observable.New[int]()
	limited := backpressure.DropNewest[int](src, 16, observable.WithName("ingest"))
	limited.Subscribe(observer)
*/
package backpressure
