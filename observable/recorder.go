package observable

import "time"

// Recorder receives stream lifecycle notifications, typically to export
// metrics. Implementations must be safe for concurrent use.
type Recorder interface {
	// Emitted is called once per value dispatched by Emit.
	Emitted(stream string)
	// Dropped is called when a backpressure strategy discards a value.
	Dropped(stream, reason string)
	// Terminated is called once when the stream completes or errors.
	Terminated(stream string, state State)
	// SubscriberPanicked is called when an observer callback panics.
	SubscriberPanicked(stream string)
	// Dispatched reports how long a queued notification waited.
	Dispatched(stream string, latency time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) Emitted(string)                   {}
func (noopRecorder) Dropped(string, string)           {}
func (noopRecorder) Terminated(string, State)         {}
func (noopRecorder) SubscriberPanicked(string)        {}
func (noopRecorder) Dispatched(string, time.Duration) {}
