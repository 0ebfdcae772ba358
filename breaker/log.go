package breaker

import "github.com/fxsml/rxpipe/internal/logging"

// Logger is the logger interface used by breakers.
type Logger = logging.Logger

// SetDefaultLogger sets the logger used by breakers without Config.Logger.
func SetDefaultLogger(l Logger) {
	logging.SetDefaultLogger(l)
}
