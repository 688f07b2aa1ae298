package tunego

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with tunego-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithTrial adds a trial identifier field to the logger.
func (l *Logger) WithTrial(trialID string) *Logger {
	return &Logger{
		Logger: l.Logger.With("trial", trialID),
	}
}

// WithSearcher adds a searcher class field to the logger.
func (l *Logger) WithSearcher(class string) *Logger {
	return &Logger{
		Logger: l.Logger.With("searcher", class),
	}
}

// LogSuggest logs the outcome of a suggest call.
func (l *Logger) LogSuggest(trialID string, suggested bool, err error) {
	switch {
	case err != nil:
		l.Error("suggest failed", "trial", trialID, "error", err)
	case !suggested:
		l.Debug("no suggestion available", "trial", trialID)
	default:
		l.Debug("suggested configuration", "trial", trialID)
	}
}

// LogComplete logs a trial completion.
func (l *Logger) LogComplete(trialID string, failed bool, err error) {
	switch {
	case err != nil:
		l.Error("completion rejected", "trial", trialID, "error", err)
	case failed:
		l.Warn("trial failed", "trial", trialID)
	default:
		l.Debug("trial completed", "trial", trialID)
	}
}
