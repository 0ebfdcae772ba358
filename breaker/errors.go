package breaker

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCircuitOpen indicates that a call was rejected without invoking the operation.
	ErrCircuitOpen = errors.New("breaker: circuit open")
	// ErrRetriesExhausted indicates that CallWithRetry used all attempts or its maximum duration.
	ErrRetriesExhausted = errors.New("breaker: retries exhausted")
)

// CircuitOpenError is returned by Call while the circuit rejects calls.
type CircuitOpenError struct {
	// Name of the breaker.
	Name string
	// RetryAfter is the remaining open time. Zero while a half-open probe is running.
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("breaker: circuit %q open, retry after %v", e.Name, e.RetryAfter)
	}
	return fmt.Sprintf("breaker: circuit %q open", e.Name)
}

func (e *CircuitOpenError) Unwrap() error {
	return ErrCircuitOpen
}

// PanicError is returned by Call when the operation panics. The panic counts
// as a failure.
type PanicError struct {
	PanicValue any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("breaker: operation panicked: %v", e.PanicValue)
}
