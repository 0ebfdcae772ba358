package observable

import (
	"fmt"
	"runtime/debug"
)

// RecoveryError wraps a panic value with the stack trace.
// Panics raised by observers and user functions are converted to it.
type RecoveryError struct {
	// PanicValue is the original value that was passed to panic().
	PanicValue any
	// StackTrace contains the full stack trace at the point of panic.
	StackTrace string
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.PanicValue)
}

func newRecoveryError(v any) *RecoveryError {
	return &RecoveryError{
		PanicValue: v,
		StackTrace: string(debug.Stack()),
	}
}

// protect calls fn and converts a panic into a *RecoveryError.
func protect[R any](fn func() (R, error)) (out R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newRecoveryError(r)
		}
	}()
	return fn()
}
