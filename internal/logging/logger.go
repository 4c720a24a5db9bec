// Package logging provides centralized logging for the relay probe.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// contextKey is used for storing loggers in context.
type contextKey struct{}

var loggerKey = contextKey{}

// attemptCounter is used to generate unique attempt IDs.
var attemptCounter atomic.Uint64

// NewLogger creates a new slog.Logger with the specified level.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: lvl,
	}
	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}

// WithAttempt returns a new logger with attempt-specific attributes.
// It generates a unique attempt ID for log correlation.
func WithAttempt(logger *slog.Logger, recipient string) *slog.Logger {
	attemptID := attemptCounter.Add(1)
	return logger.With(
		slog.Uint64("attempt_id", attemptID),
		slog.String("recipient", recipient),
	)
}

// FromContext retrieves the logger from the context.
// Returns the default logger if none is found.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// NewContext returns a new context with the logger attached.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// TranscriptReader wraps an io.Reader to log all data read from the helper
// pipe. Used for debugging full helper transcripts.
type TranscriptReader struct {
	r      io.Reader
	logger *slog.Logger
}

// NewTranscriptReader creates a reader that logs all data.
func NewTranscriptReader(r io.Reader, logger *slog.Logger) *TranscriptReader {
	return &TranscriptReader{
		r:      r,
		logger: logger,
	}
}

// Read reads data and logs it.
func (tr *TranscriptReader) Read(p []byte) (n int, err error) {
	n, err = tr.r.Read(p)
	if n > 0 {
		tr.logger.Debug("helper output",
			slog.String("data", string(p[:n])),
		)
	}
	return n, err
}
