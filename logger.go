package kquant

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with field names used across the quantizer.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler writing to stderr at info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that writes human-readable logs to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that writes JSON logs to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// WithFile tags the logger with an input path.
func (l *Logger) WithFile(path string) *Logger {
	return &Logger{Logger: l.Logger.With("file", path)}
}

// WithK tags the logger with the cluster count.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{Logger: l.Logger.With("k", k)}
}

// LogAttempt logs the outcome of a single clustering attempt.
func (l *Logger) LogAttempt(ctx context.Context, attempt, iterations int, compactness float64) {
	l.DebugContext(ctx, "attempt finished",
		"attempt", attempt,
		"iterations", iterations,
		"compactness", compactness,
	)
}

// LogCluster logs the selected clustering result.
func (l *Logger) LogCluster(ctx context.Context, res Result, elapsed time.Duration) {
	l.DebugContext(ctx, "clustering completed",
		"attempt", res.Attempt,
		"iterations", res.Iterations,
		"compactness", res.Compactness,
		"elapsed", elapsed,
	)
}

// LogImage logs the outcome of processing one image.
func (l *Logger) LogImage(ctx context.Context, dst string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "image failed", "error", err)
		return
	}
	l.InfoContext(ctx, "writing result", "output", dst)
}
