/*
Package breaker implements a circuit breaker.

A CircuitBreaker guards an operation that may fail repeatedly. It starts
Closed and invokes the operation on every Call. After FailureThreshold
consecutive failures it opens and rejects calls with a *CircuitOpenError
without invoking the operation. Once Timeout has passed since the last
failure, the next Call moves it to HalfOpen and runs a single probe: success
closes the circuit, failure opens it again.

State changes are computed by Transition, a pure function over State and
Event.

	cb := breaker.NewCircuitBreaker(3, 10*time.Second)
	err := cb.Call(func() error {
		return client.Ping(ctx)
	})
	if errors.Is(err, breaker.ErrCircuitOpen) {
		// fail fast
	}

CallWithRetry combines the breaker with github.com/juju/retry. An open
circuit stops the retry loop.

The package does not depend on the observable package; streams use a breaker
from inside their own operators.
*/
package breaker
