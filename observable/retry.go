package observable

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/juju/clock"
)

// BackoffFunc returns the wait duration before a re-subscription.
// The attempt parameter is one-based (1 for first retry, 2 for second, etc.).
type BackoffFunc func(attempt int) time.Duration

// ConstantBackoff creates a backoff function that returns a constant duration with optional jitter.
// The jitter parameter controls randomization: 0.0 = no jitter, 0.2 = ±20% variation.
func ConstantBackoff(delay time.Duration, jitter float64) BackoffFunc {
	applyJitter := newApplyJitterFunc(jitter)
	return func(attempt int) time.Duration {
		return applyJitter(delay)
	}
}

// ExponentialBackoff creates a backoff function with exponential backoff and jitter.
// Each retry waits initialDelay * factor^(attempt-1), capped at maxDelay (0 = no limit).
func ExponentialBackoff(initialDelay time.Duration, factor float64, maxDelay time.Duration, jitter float64) BackoffFunc {
	applyJitter := newApplyJitterFunc(jitter)
	return func(attempt int) time.Duration {
		backoff := time.Duration(float64(initialDelay) * math.Pow(factor, float64(attempt-1)))
		if maxDelay > 0 && backoff > maxDelay {
			backoff = maxDelay
		}
		return applyJitter(backoff)
	}
}

func newApplyJitterFunc(jitter float64) func(d time.Duration) time.Duration {
	jitter = max(0, min(jitter, 1))
	return func(d time.Duration) time.Duration {
		jitterFactor := 1.0 + (rand.Float64()*2*jitter - jitter)
		return time.Duration(float64(d) * jitterFactor)
	}
}

// ShouldRetryFunc determines whether an upstream error triggers a re-subscription.
type ShouldRetryFunc func(error) bool

// ShouldRetry creates a function that retries on specific errors.
// If no errors are specified, all errors trigger retries.
func ShouldRetry(errs ...error) ShouldRetryFunc {
	if len(errs) == 0 {
		return func(err error) bool { return true }
	}
	return func(err error) bool {
		for _, e := range errs {
			if errors.Is(err, e) {
				return true
			}
		}
		return false
	}
}

// ShouldNotRetry creates a function that skips retries on specific errors.
func ShouldNotRetry(errs ...error) ShouldRetryFunc {
	return func(err error) bool {
		for _, e := range errs {
			if errors.Is(err, e) {
				return false
			}
		}
		return true
	}
}

// RetryConfig configures RetryWithConfig.
type RetryConfig struct {
	// MaxRetries is the number of re-subscriptions allowed after the first
	// subscription fails. Zero or negative disables retrying.
	MaxRetries int `yaml:"max_retries"`

	// ShouldRetry selects the errors that are retried. Other errors are
	// forwarded unchanged. If nil, all errors are retried.
	ShouldRetry ShouldRetryFunc `yaml:"-"`

	// Backoff produces the wait before each re-subscription. If nil or if it
	// returns a non-positive duration, the source is re-subscribed
	// immediately, on the goroutine that delivered the failure.
	Backoff BackoffFunc `yaml:"-"`

	// Clock schedules delayed re-subscriptions. Defaults to the wall clock.
	Clock clock.Clock `yaml:"-"`

	// Options configure the returned Observable.
	Options []Option `yaml:"-"`
}

func (c RetryConfig) parse() RetryConfig {
	if c.ShouldRetry == nil {
		c.ShouldRetry = ShouldRetry()
	}
	if c.Clock == nil {
		c.Clock = clock.WallClock
	}
	return c
}

// Retry re-subscribes to src each time it errors, up to maxRetries times.
// Values from failed attempts are forwarded. When the budget is exhausted the
// last error is delivered wrapped in a *RetryExhaustedError.
//
// src must be re-subscribable, such as a Source created by Defer. A hot
// *Observable that has already errored drops the re-subscription silently.
func Retry[T any](src Source[T], maxRetries int) *Observable[T] {
	return RetryWithConfig(src, RetryConfig{MaxRetries: maxRetries})
}

// RetryWithConfig is Retry with backoff and error selection.
func RetryWithConfig[T any](src Source[T], cfg RetryConfig) *Observable[T] {
	cfg = cfg.parse()
	return Lift(func(down *Observable[T]) {
		r := &retrier[T]{src: src, down: down, cfg: cfg}
		down.OnRelease(r.stop)
		r.subscribe()
	}, cfg.Options...)
}

type retrier[T any] struct {
	src  Source[T]
	down *Observable[T]
	cfg  RetryConfig

	mu      sync.Mutex
	retries int
	attempt *upstream
	timer   clock.Timer
	stopped bool
	// subscribing is set while subscribe is on the stack. A synchronous
	// re-subscription requested meanwhile sets again instead of recursing.
	subscribing bool
	again       bool
}

func (r *retrier[T]) subscribe() {
	for {
		r.mu.Lock()
		if r.stopped {
			r.mu.Unlock()
			return
		}
		attempt := &upstream{}
		r.attempt = attempt
		r.timer = nil
		r.subscribing = true
		r.again = false
		r.mu.Unlock()

		subscribeTo(attempt, r.src, NewObserver(r.down.Emit, r.error, r.down.Complete))

		r.mu.Lock()
		r.subscribing = false
		again := r.again
		r.mu.Unlock()
		if !again {
			return
		}
	}
}

func (r *retrier[T]) error(err error) {
	if !r.cfg.ShouldRetry(err) {
		r.down.Error(err)
		return
	}
	r.mu.Lock()
	if r.retries >= r.cfg.MaxRetries {
		attempts := r.retries + 1
		r.mu.Unlock()
		r.down.Error(&RetryExhaustedError{Attempts: attempts, Cause: err})
		return
	}
	r.retries++
	attempt := r.retries
	r.mu.Unlock()

	var delay time.Duration
	if r.cfg.Backoff != nil {
		delay = r.cfg.Backoff(attempt)
	}
	r.down.Logger().Debug("RXPIPE: Retrying",
		"stream", r.down.Name(), "attempt", attempt, "delay", delay, "error", err)

	r.mu.Lock()
	switch {
	case r.stopped:
	case delay > 0:
		r.timer = r.cfg.Clock.AfterFunc(delay, r.subscribe)
	case r.subscribing:
		r.again = true
	default:
		// The failure arrived after subscribe returned.
		r.mu.Unlock()
		r.subscribe()
		return
	}
	r.mu.Unlock()
}

// stop cancels a pending re-subscription and releases the current attempt.
func (r *retrier[T]) stop() {
	r.mu.Lock()
	r.stopped = true
	attempt, timer := r.attempt, r.timer
	r.mu.Unlock()
	if timer != nil {
		timer.Stop()
	}
	if attempt != nil {
		attempt.release()
	}
}
