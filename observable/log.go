package observable

import "github.com/fxsml/rxpipe/internal/logging"

// Logger defines an interface for logging at different severity levels.
type Logger = logging.Logger

// SetDefaultLogger sets the default logger for all observables, strategies
// and breakers. slog.Default() is used by default.
func SetDefaultLogger(l Logger) {
	logging.SetDefaultLogger(l)
}
