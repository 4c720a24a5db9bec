// Package metrics provides interfaces and implementations for collecting
// relay probe metrics. This package defines the Collector interface for
// recording metrics and the Server interface for exposing them.
package metrics

import (
	"context"
	"time"
)

// Collector defines the interface for recording relay probe metrics.
type Collector interface {
	// Attempt metrics. outcome is the runner outcome kind: "completed",
	// "timed_out", "broken_pipe", "no_response", "spawn_failed", "io_error".
	AttemptStarted()
	AttemptFinished(outcome string, duration time.Duration)

	// Verdict metrics. verdict is "notspam", "spam", or "unsure".
	VerdictRecorded(verdict string)

	// Cache metrics.
	CacheLookup(hit bool)
}

// Server defines the interface for a metrics HTTP server.
type Server interface {
	// Start begins serving metrics. It blocks until the context is canceled
	// or an error occurs.
	Start(ctx context.Context) error

	// Shutdown gracefully stops the metrics server.
	Shutdown(ctx context.Context) error
}
