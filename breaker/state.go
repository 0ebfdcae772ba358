package breaker

// State is the state of a CircuitBreaker.
type State int

const (
	// Closed invokes the operation and counts consecutive failures.
	Closed State = iota
	// Open rejects calls until the timeout has elapsed.
	Open
	// HalfOpen admits a single probe call.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Event drives Transition.
type Event int

const (
	// EventSuccess reports a successful call.
	EventSuccess Event = iota
	// EventFailure reports a failed call.
	EventFailure
	// EventThresholdReached reports that the failure count reached the threshold.
	EventThresholdReached
	// EventTimeoutElapsed reports that the open timeout has passed.
	EventTimeoutElapsed
)

func (e Event) String() string {
	switch e {
	case EventSuccess:
		return "success"
	case EventFailure:
		return "failure"
	case EventThresholdReached:
		return "threshold-reached"
	case EventTimeoutElapsed:
		return "timeout-elapsed"
	default:
		return "unknown"
	}
}

// Transition returns the state that follows s after e. Events that do not
// apply to s leave it unchanged.
func Transition(s State, e Event) State {
	switch s {
	case Closed:
		if e == EventThresholdReached {
			return Open
		}
	case Open:
		if e == EventTimeoutElapsed {
			return HalfOpen
		}
	case HalfOpen:
		switch e {
		case EventSuccess:
			return Closed
		case EventFailure:
			return Open
		}
	}
	return s
}
