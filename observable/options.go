package observable

import (
	"github.com/google/uuid"
	"github.com/juju/clock"
)

// Option configures an Observable.
type Option func(*options)

type options struct {
	name     string
	logger   Logger
	recorder Recorder
	clock    clock.Clock
	queue    *QueueConfig
}

func parseOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = uuid.NewString()
	}
	if o.recorder == nil {
		o.recorder = noopRecorder{}
	}
	if o.clock == nil {
		o.clock = clock.WallClock
	}
	return o
}

// WithName sets the name used in log attributes and metric labels.
// Defaults to a random UUID.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger overrides the package default logger for one Observable.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRecorder sets the Recorder notified about emissions, drops and failures.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithClock sets the clock used to timestamp events. Defaults to the wall clock.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithQueue enables queued dispatch: producers enqueue notifications into a
// bounded FIFO and one goroutine delivers them to observers.
func WithQueue(cfg QueueConfig) Option {
	return func(o *options) {
		cfg = cfg.parse()
		o.queue = &cfg
	}
}
