package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juju/clock"
	"github.com/juju/retry"
)

// RetryArgs configures CallWithRetry.
type RetryArgs struct {
	// Attempts is the maximum number of calls. A negative value retries until
	// MaxDuration passes. Default is 3 when MaxDuration is also unset.
	Attempts int `yaml:"attempts"`

	// Delay is the wait before the first retry. Default is 100ms.
	Delay time.Duration `yaml:"delay"`

	// MaxDelay caps the delay produced by BackoffFunc. Zero means no cap.
	MaxDelay time.Duration `yaml:"max_delay"`

	// MaxDuration bounds the total time spent retrying. Zero means no bound.
	MaxDuration time.Duration `yaml:"max_duration"`

	// BackoffFunc computes the next delay, e.g. retry.DoubleDelay or
	// retry.ExpBackoff. If nil, Delay is used for every retry.
	BackoffFunc func(delay time.Duration, attempt int) time.Duration `yaml:"-"`

	// IsFatalError stops retrying for the errors it accepts. An open circuit
	// always stops retrying.
	IsFatalError func(error) bool `yaml:"-"`

	// Clock defaults to the breaker's clock.
	Clock clock.Clock `yaml:"-"`
}

func (a RetryArgs) parse(cb *CircuitBreaker) RetryArgs {
	if a.Attempts == 0 && a.MaxDuration <= 0 {
		a.Attempts = 3
	}
	if a.Delay <= 0 {
		a.Delay = 100 * time.Millisecond
	}
	if a.Clock == nil {
		a.Clock = cb.cfg.Clock
	}
	return a
}

// CallWithRetry calls op through cb until it succeeds, the circuit opens, a
// fatal error occurs, the attempts are used up or ctx is done.
//
// Exhausted retries return an error wrapping ErrRetriesExhausted and the last
// failure. Cancellation returns ctx.Err() wrapped with the last failure.
// Fatal errors, including *CircuitOpenError, are returned unchanged.
func CallWithRetry(ctx context.Context, cb *CircuitBreaker, op func() error, args RetryArgs) error {
	args = args.parse(cb)
	var last error
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			last = cb.Call(op)
			return last
		},
		IsFatalError: func(err error) bool {
			if errors.Is(err, ErrCircuitOpen) {
				return true
			}
			return args.IsFatalError != nil && args.IsFatalError(err)
		},
		NotifyFunc: func(err error, attempt int) {
			cb.logger().Debug("RXPIPE: Call failed",
				"breaker", cb.cfg.Name, "attempt", attempt, "error", err)
		},
		Attempts:    args.Attempts,
		Delay:       args.Delay,
		MaxDelay:    args.MaxDelay,
		MaxDuration: args.MaxDuration,
		BackoffFunc: args.BackoffFunc,
		Clock:       args.Clock,
		Stop:        ctx.Done(),
	})
	switch {
	case err == nil:
		return nil
	case retry.IsRetryStopped(err):
		return fmt.Errorf("%w: %w", ctx.Err(), last)
	case retry.IsAttemptsExceeded(err), retry.IsDurationExceeded(err):
		return fmt.Errorf("%w: %w", ErrRetriesExhausted, last)
	case last != nil:
		return last
	default:
		return err
	}
}
