// Package txlog provides structured logging for elaboration diagnostics.
// It wraps github.com/rs/zerolog with module-scoped child loggers, the same
// shape the wyf-ACCEPT-eth2030 client's pkg/log wraps slog with — a
// process-wide default logger plus a Module(name) constructor for
// subsystem-scoped children (here: "sig", "callgraph", "conflict",
// "resolver", "scheduler", "lowering" instead of "evm", "txpool", "p2p").
package txlog

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with elaboration-specific context.
type Logger struct {
	inner zerolog.Logger
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(zerolog.InfoLevel)
}

// New creates a Logger that writes JSON to stderr at the given level.
func New(level zerolog.Level) *Logger {
	return &Logger{inner: zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()}
}

// NewWithWriter creates a Logger backed by the supplied writer, at the
// given level — useful for tests that want to assert on log output.
func NewWithWriter(w zerolog.ConsoleWriter, level zerolog.Level) *Logger {
	return &Logger{inner: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger { return defaultLogger }

// Module returns a child logger tagged with the elaboration stage it came
// from (sig, callgraph, conflict, resolver, scheduler, lowering).
func (l *Logger) Module(name string) *Logger {
	return &Logger{inner: l.inner.With().Str("module", name).Logger()}
}

// With returns a child logger with additional key-value context.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{inner: l.inner.With().Interface(key, value).Logger()}
}

func (l *Logger) Debug(msg string) { l.inner.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.inner.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.inner.Warn().Msg(msg) }
func (l *Logger) Error(msg string) { l.inner.Error().Msg(msg) }

// Debug logs at DebugLevel using the default logger.
func Debug(msg string) { defaultLogger.Debug(msg) }

// Info logs at InfoLevel using the default logger.
func Info(msg string) { defaultLogger.Info(msg) }

// Warn logs at WarnLevel using the default logger.
func Warn(msg string) { defaultLogger.Warn(msg) }

// Error logs at ErrorLevel using the default logger.
func Error(msg string) { defaultLogger.Error(msg) }
