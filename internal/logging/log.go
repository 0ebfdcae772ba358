// Package logging holds the logger shared by the rxpipe packages.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

// LogLevel represents the severity level for logging messages.
type LogLevel string

const (
	// LogLevelDebug is used for detailed information.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is used for general information messages.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is used for warning conditions.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError is used for error conditions.
	LogLevelError LogLevel = "error"
)

// Logger defines an interface for logging at different severity levels.
// *slog.Logger satisfies it.
type Logger interface {
	// Debug logs a message at debug level.
	Debug(msg string, args ...any)
	// Info logs a message at info level.
	Info(msg string, args ...any)
	// Warn logs a message at warning level.
	Warn(msg string, args ...any)
	// Error logs a message at error level.
	Error(msg string, args ...any)
}

type holder struct{ Logger }

var logger atomic.Pointer[holder]

func init() {
	logger.Store(&holder{slog.Default()})
}

// SetDefaultLogger sets the logger used by all streams, strategies and
// breakers. slog.Default() is used by default. A nil logger discards output.
func SetDefaultLogger(l Logger) {
	if l == nil {
		l = Discard()
	}
	logger.Store(&holder{l})
}

// Default returns the logger set with SetDefaultLogger.
func Default() Logger {
	return logger.Load().Logger
}

// ParseLevel normalizes level and reports whether it is known.
func ParseLevel(level string) (LogLevel, error) {
	l := LogLevel(strings.ToLower(strings.TrimSpace(level)))
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return l, nil
	case "":
		return LogLevelInfo, nil
	}
	return "", fmt.Errorf("logging: unknown level %q", level)
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewTextLogger returns a slog text logger writing to w at the given level.
func NewTextLogger(w io.Writer, level LogLevel) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level.slogLevel()}))
}

// Discard returns a logger that drops every message.
func Discard() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
