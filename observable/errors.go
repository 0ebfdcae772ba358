package observable

import (
	"errors"
	"fmt"
)

var (
	// ErrOperator indicates that a user-supplied function inside an operator failed.
	ErrOperator = errors.New("rxpipe: operator failed")
	// ErrRetryExhausted indicates that Retry gave up re-subscribing.
	ErrRetryExhausted = errors.New("rxpipe: retry exhausted")
)

// OperatorError is delivered downstream when a map function, filter predicate
// or catch handler returns an error or panics.
type OperatorError struct {
	// Op names the operator, e.g. "map".
	Op string
	// Cause is the error returned by the user function, or a *RecoveryError.
	Cause error
}

func newOperatorError(op string, cause error) error {
	return &OperatorError{Op: op, Cause: cause}
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("rxpipe: %s: %v", e.Op, e.Cause)
}

func (e *OperatorError) Unwrap() []error {
	return []error{ErrOperator, e.Cause}
}

// RetryExhaustedError re-surfaces the last upstream error after Retry has
// used its re-subscription budget.
type RetryExhaustedError struct {
	// Attempts is the number of subscriptions made, including the first.
	Attempts int
	// Cause is the error of the last attempt.
	Cause error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("rxpipe: retry exhausted after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *RetryExhaustedError) Unwrap() []error {
	return []error{ErrRetryExhausted, e.Cause}
}
