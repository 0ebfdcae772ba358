package observable

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/juju/clock"

	"github.com/fxsml/rxpipe/internal/logging"
)

// State is the lifecycle state of an Observable.
type State int

const (
	// Active observables accept subscribers and deliver values.
	Active State = iota
	// Completed observables ended normally.
	Completed
	// Errored observables ended with an error.
	Errored
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Completed:
		return "completed"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Observable is a hot stream of values of type T.
//
// Emit, Error and Complete must be called by one producer at a time.
// Subscribe and Unsubscribe are safe for concurrent use.
type Observable[T any] struct {
	opts options

	mu    sync.Mutex
	subs  []*entry[T] // copy-on-write, dispatch iterates a snapshot
	state State
	err   error
	done  chan struct{}

	connect     func(*Observable[T])
	connectOnce sync.Once
	up          upstream

	queue *queue[T]
}

type entry[T any] struct {
	observer Observer[T]
	removed  atomic.Bool
}

// New creates an empty, active Observable.
func New[T any](opts ...Option) *Observable[T] {
	return newObservable[T](nil, opts)
}

// Lift creates an Observable that calls connect once, when its first observer
// subscribes. Operators use it to attach to their sources lazily; connect
// receives the new Observable and drives it through Emit, Error and Complete.
// Sources attached with Attach are released when the Observable terminates or
// its last observer unsubscribes. It does not reconnect afterwards.
func Lift[T any](connect func(down *Observable[T]), opts ...Option) *Observable[T] {
	return newObservable(connect, opts)
}

func newObservable[T any](connect func(*Observable[T]), opts []Option) *Observable[T] {
	o := &Observable[T]{
		opts:    parseOptions(opts),
		done:    make(chan struct{}),
		connect: connect,
	}
	if o.opts.queue != nil {
		o.queue = newQueue(o, *o.opts.queue)
	}
	return o
}

// Subscribe adds observer to the subscriber list. Once the Observable has
// terminated the call is a no-op: the observer receives nothing, not even the
// terminal notification.
func (o *Observable[T]) Subscribe(observer Observer[T]) Subscription {
	if observer == nil {
		return noopSubscription{}
	}
	o.mu.Lock()
	if o.state != Active {
		state := o.state
		o.mu.Unlock()
		o.logger().Debug("RXPIPE: Late subscriber dropped", "stream", o.opts.name, "state", state)
		return noopSubscription{}
	}
	e := &entry[T]{observer: observer}
	subs := make([]*entry[T], len(o.subs), len(o.subs)+1)
	copy(subs, o.subs)
	o.subs = append(subs, e)
	o.mu.Unlock()

	sub := newSubscription(func() { o.remove(e) })
	if b, ok := observer.(binder); ok {
		b.bind(sub)
	}
	if o.connect != nil {
		o.connectOnce.Do(func() { o.connect(o) })
	}
	return sub
}

func (o *Observable[T]) remove(e *entry[T]) {
	e.removed.Store(true)
	o.mu.Lock()
	i := slices.Index(o.subs, e)
	if i < 0 {
		o.mu.Unlock()
		return
	}
	o.subs = slices.Delete(slices.Clone(o.subs), i, i+1)
	idle := len(o.subs) == 0
	o.mu.Unlock()
	if idle {
		o.up.release()
	}
}

// OnRelease registers fn to run once, when the Observable terminates or its
// last observer unsubscribes. If that already happened fn runs immediately.
func (o *Observable[T]) OnRelease(fn func()) {
	o.up.add(newSubscription(fn))
}

// Emit delivers value to every subscriber in subscription order.
// It is a no-op once the Observable has terminated.
func (o *Observable[T]) Emit(value T) {
	_ = o.EmitContext(context.Background(), value)
}

// EmitContext is like Emit but, in queued mode, gives up waiting for queue
// space when ctx is done and returns ctx.Err().
func (o *Observable[T]) EmitContext(ctx context.Context, value T) error {
	if o.queue != nil {
		return o.queue.push(ctx, notification[T]{kind: kindNext, event: NewEvent(value, o.opts.clock)})
	}
	o.dispatchNext(value)
	return nil
}

// Error terminates the Observable and delivers err to every current
// subscriber exactly once. Subsequent calls are no-ops.
func (o *Observable[T]) Error(err error) {
	if o.queue != nil {
		var zero T
		_ = o.queue.push(context.Background(), notification[T]{kind: kindError, event: NewEvent(zero, o.opts.clock), err: err})
		return
	}
	o.terminate(Errored, err)
}

// Complete terminates the Observable and notifies every current subscriber
// exactly once. Subsequent calls are no-ops.
func (o *Observable[T]) Complete() {
	if o.queue != nil {
		var zero T
		_ = o.queue.push(context.Background(), notification[T]{kind: kindCompleted, event: NewEvent(zero, o.opts.clock)})
		return
	}
	o.terminate(Completed, nil)
}

func (o *Observable[T]) dispatchNext(value T) {
	o.mu.Lock()
	if o.state != Active {
		o.mu.Unlock()
		return
	}
	subs := o.subs
	o.mu.Unlock()

	o.opts.recorder.Emitted(o.opts.name)
	for _, e := range subs {
		if e.removed.Load() {
			continue
		}
		o.deliver(func() { e.observer.OnNext(value) })
	}
}

func (o *Observable[T]) terminate(state State, err error) {
	o.mu.Lock()
	if o.state != Active {
		o.mu.Unlock()
		return
	}
	o.state = state
	o.err = err
	subs := o.subs
	o.subs = nil
	o.mu.Unlock()

	o.opts.recorder.Terminated(o.opts.name, state)
	for _, e := range subs {
		if e.removed.Load() {
			continue
		}
		if state == Errored {
			o.deliver(func() { e.observer.OnError(err) })
		} else {
			o.deliver(e.observer.OnCompleted)
		}
	}
	close(o.done)
	o.up.release()
}

// deliver runs one observer callback. A panic is logged and swallowed so the
// remaining subscribers still receive the notification.
func (o *Observable[T]) deliver(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := newRecoveryError(r)
			o.logger().Error("RXPIPE: Subscriber panicked",
				"stream", o.opts.name, "error", err, "stack", err.StackTrace)
			o.opts.recorder.SubscriberPanicked(o.opts.name)
		}
	}()
	fn()
}

// State returns the current lifecycle state.
func (o *Observable[T]) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Err returns the error the Observable terminated with, if any.
func (o *Observable[T]) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Done returns a channel that is closed after the terminal notification has
// been delivered to all subscribers.
func (o *Observable[T]) Done() <-chan struct{} {
	return o.done
}

// Len returns the number of current subscribers.
func (o *Observable[T]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

// Pending returns the number of queued notifications. It is always zero
// without WithQueue.
func (o *Observable[T]) Pending() int {
	if o.queue == nil {
		return 0
	}
	return len(o.queue.ch)
}

// Name returns the name set with WithName.
func (o *Observable[T]) Name() string {
	return o.opts.name
}

// Recorder returns the Recorder set with WithRecorder.
func (o *Observable[T]) Recorder() Recorder {
	return o.opts.recorder
}

// Clock returns the clock set with WithClock.
func (o *Observable[T]) Clock() clock.Clock {
	return o.opts.clock
}

// Logger returns the logger used by the Observable.
func (o *Observable[T]) Logger() Logger {
	return o.logger()
}

func (o *Observable[T]) logger() Logger {
	if o.opts.logger != nil {
		return o.opts.logger
	}
	return logging.Default()
}
