package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusCollectorImplementsInterface(t *testing.T) {
	reg := prometheus.NewRegistry()
	var _ Collector = NewPrometheusCollector(reg)
}

func TestPrometheusServerImplementsInterface(t *testing.T) {
	var _ Server = NewPrometheusServer(":0", "/metrics")
}

func TestPrometheusCollectorMethods(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	// All methods should execute without panic
	c.AttemptStarted()
	c.AttemptFinished("completed", 400*time.Millisecond)
	c.AttemptStarted()
	c.AttemptFinished("timed_out", 12*time.Second)
	c.VerdictRecorded("notspam")
	c.VerdictRecorded("spam")
	c.VerdictRecorded("unsure")
	c.CacheLookup(true)
	c.CacheLookup(false)

	// Gather metrics to verify they were recorded
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	// Check that metrics were registered
	metricNames := make(map[string]bool)
	for _, mf := range mfs {
		metricNames[mf.GetName()] = true
	}

	expectedMetrics := []string{
		"relayprobe_attempts_active",
		"relayprobe_attempts_total",
		"relayprobe_attempt_duration_seconds",
		"relayprobe_verdicts_total",
		"relayprobe_cache_lookups_total",
	}

	for _, name := range expectedMetrics {
		if !metricNames[name] {
			t.Errorf("expected metric %q not found", name)
		}
	}
}

func TestPrometheusCollectorAttemptMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	// Start three attempts, finish one
	c.AttemptStarted()
	c.AttemptStarted()
	c.AttemptStarted()
	c.AttemptFinished("completed", time.Second)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range mfs {
		switch mf.GetName() {
		case "relayprobe_attempts_active":
			if len(mf.GetMetric()) == 0 {
				t.Error("attempts_active has no metrics")
				continue
			}
			v := mf.GetMetric()[0].GetGauge().GetValue()
			if v != 2 {
				t.Errorf("attempts_active = %v, want 2", v)
			}
		case "relayprobe_attempts_total":
			if len(mf.GetMetric()) == 0 {
				t.Error("attempts_total has no metrics")
				continue
			}
			v := mf.GetMetric()[0].GetCounter().GetValue()
			if v != 1 {
				t.Errorf("attempts_total = %v, want 1", v)
			}
		}
	}
}

func TestPrometheusCollectorVerdictMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	c.VerdictRecorded("spam")
	c.VerdictRecorded("notspam")
	c.VerdictRecorded("unsure")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range mfs {
		if mf.GetName() == "relayprobe_verdicts_total" {
			// Should have 3 metric entries, one per verdict value
			if len(mf.GetMetric()) != 3 {
				t.Errorf("verdicts_total has %d metric entries, want 3", len(mf.GetMetric()))
			}
		}
	}
}

func TestPrometheusServerStartStop(t *testing.T) {
	server := NewPrometheusServer("127.0.0.1:0", "/metrics")

	ctx, cancel := context.WithCancel(context.Background())

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx)
	}()

	// Give server time to start
	time.Sleep(50 * time.Millisecond)

	// Shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	cancel()

	// Check that Start returned without error
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("Start() did not return after shutdown")
	}
}
