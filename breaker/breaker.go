package breaker

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"

	"github.com/fxsml/rxpipe/internal/logging"
)

// Config configures a CircuitBreaker.
type Config struct {
	// Name identifies the breaker in logs, errors and metrics.
	// Defaults to a random UUID.
	Name string `yaml:"name"`

	// FailureThreshold is the number of consecutive failures that opens the
	// circuit. Default is 5.
	FailureThreshold int `yaml:"failure_threshold"`

	// Timeout is how long the circuit stays open after the last failure.
	// Default is 60s.
	Timeout time.Duration `yaml:"timeout"`

	// Clock is used to measure the timeout. Defaults to the wall clock.
	Clock clock.Clock `yaml:"-"`

	// Logger overrides the package default logger.
	Logger Logger `yaml:"-"`

	// OnStateChange is called after every state change, outside the
	// breaker's lock.
	OnStateChange func(name string, from, to State) `yaml:"-"`
}

func (c Config) parse() Config {
	if c.Name == "" {
		c.Name = uuid.NewString()
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.Clock == nil {
		c.Clock = clock.WallClock
	}
	return c
}

// CircuitBreaker stops invoking a failing operation for a cooldown period.
// It is safe for concurrent use.
type CircuitBreaker struct {
	cfg Config

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	probing     bool
}

type change struct {
	from, to State
}

// New creates a closed CircuitBreaker.
func New(cfg Config) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg.parse()}
}

// NewCircuitBreaker creates a closed CircuitBreaker with the given threshold
// and timeout.
func NewCircuitBreaker(failureThreshold int, timeout time.Duration) *CircuitBreaker {
	return New(Config{FailureThreshold: failureThreshold, Timeout: timeout})
}

// Call invokes op unless the circuit is open and returns its error.
// A rejected call returns a *CircuitOpenError.
func (cb *CircuitBreaker) Call(op func() error) error {
	probe, ch, err := cb.before()
	cb.notify(ch)
	if err != nil {
		return err
	}
	err = invoke(op)
	cb.notify(cb.after(probe, err))
	return err
}

// Execute runs fn through cb and returns its result.
func Execute[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var out T
	err := cb.Call(func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

func invoke(op func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{PanicValue: r}
		}
	}()
	return op()
}

// before admits a call and reports whether it is the half-open probe.
func (cb *CircuitBreaker) before() (bool, *change, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case Open:
		elapsed := cb.cfg.Clock.Now().Sub(cb.lastFailure)
		if elapsed < cb.cfg.Timeout {
			return false, nil, &CircuitOpenError{Name: cb.cfg.Name, RetryAfter: cb.cfg.Timeout - elapsed}
		}
		ch := cb.setState(EventTimeoutElapsed)
		cb.probing = true
		return true, ch, nil
	case HalfOpen:
		if cb.probing {
			return false, nil, &CircuitOpenError{Name: cb.cfg.Name}
		}
		cb.probing = true
		return true, nil, nil
	}
	return false, nil, nil
}

func (cb *CircuitBreaker) after(probe bool, err error) *change {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch {
	case probe:
		if cb.state != HalfOpen {
			// Reset while the probe was running.
			cb.probing = false
			return nil
		}
		cb.probing = false
		if err == nil {
			cb.failures = 0
			return cb.setState(EventSuccess)
		}
		cb.failures++
		cb.lastFailure = cb.cfg.Clock.Now()
		return cb.setState(EventFailure)
	case cb.state == Closed:
		if err == nil {
			cb.failures = 0
			return nil
		}
		cb.failures++
		cb.lastFailure = cb.cfg.Clock.Now()
		if cb.failures >= cb.cfg.FailureThreshold {
			return cb.setState(EventThresholdReached)
		}
	}
	// Calls admitted before the circuit opened do not affect it.
	return nil
}

// setState must be called with mu held.
func (cb *CircuitBreaker) setState(e Event) *change {
	next := Transition(cb.state, e)
	if next == cb.state {
		return nil
	}
	ch := &change{from: cb.state, to: next}
	cb.state = next
	return ch
}

func (cb *CircuitBreaker) notify(ch *change) {
	if ch == nil {
		return
	}
	cb.logger().Info("RXPIPE: Circuit state changed",
		"breaker", cb.cfg.Name, "from", ch.from, "to", ch.to)
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.cfg.Name, ch.from, ch.to)
	}
}

// State returns the current state. An open circuit whose timeout has elapsed
// reports Open until the next Call.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current consecutive failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Name returns the breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.cfg.Name
}

// Reset closes the circuit and clears the failure count.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	var ch *change
	if cb.state != Closed {
		ch = &change{from: cb.state, to: Closed}
	}
	cb.state = Closed
	cb.failures = 0
	cb.probing = false
	cb.mu.Unlock()
	cb.notify(ch)
}

func (cb *CircuitBreaker) logger() Logger {
	if cb.cfg.Logger != nil {
		return cb.cfg.Logger
	}
	return logging.Default()
}
