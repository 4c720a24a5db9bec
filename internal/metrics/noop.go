package metrics

import "time"

// NoopCollector is a no-op implementation of the Collector interface.
// All methods are empty stubs that do nothing.
type NoopCollector struct{}

// AttemptStarted is a no-op.
func (n *NoopCollector) AttemptStarted() {}

// AttemptFinished is a no-op.
func (n *NoopCollector) AttemptFinished(outcome string, duration time.Duration) {}

// VerdictRecorded is a no-op.
func (n *NoopCollector) VerdictRecorded(verdict string) {}

// CacheLookup is a no-op.
func (n *NoopCollector) CacheLookup(hit bool) {}
