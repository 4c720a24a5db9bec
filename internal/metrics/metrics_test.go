package metrics

import (
	"context"
	"testing"
	"time"
)

func TestNoopCollectorImplementsInterface(t *testing.T) {
	var _ Collector = &NoopCollector{}
}

func TestNoopServerImplementsInterface(t *testing.T) {
	var _ Server = &NoopServer{}
}

func TestNoopCollectorMethods(t *testing.T) {
	c := &NoopCollector{}

	// All methods should execute without panic
	c.AttemptStarted()
	c.AttemptFinished("completed", 250*time.Millisecond)
	c.AttemptFinished("timed_out", 12*time.Second)
	c.VerdictRecorded("notspam")
	c.VerdictRecorded("spam")
	c.VerdictRecorded("unsure")
	c.CacheLookup(true)
	c.CacheLookup(false)
}

func TestNoopServerStart(t *testing.T) {
	s := &NoopServer{}
	ctx := context.Background()

	err := s.Start(ctx)
	if err != nil {
		t.Errorf("Start() error = %v, want nil", err)
	}
}

func TestNoopServerShutdown(t *testing.T) {
	s := &NoopServer{}
	ctx := context.Background()

	err := s.Shutdown(ctx)
	if err != nil {
		t.Errorf("Shutdown() error = %v, want nil", err)
	}
}

func TestNewDisabled(t *testing.T) {
	cfg := Config{
		Enabled: false,
		Address: ":9101",
		Path:    "/metrics",
	}

	collector, server := New(cfg)

	if _, ok := collector.(*NoopCollector); !ok {
		t.Errorf("New() with Enabled=false returned collector type %T, want *NoopCollector", collector)
	}
	if _, ok := server.(*NoopServer); !ok {
		t.Errorf("New() with Enabled=false returned server type %T, want *NoopServer", server)
	}

	// Verify the collector works
	collector.AttemptStarted()
	collector.AttemptFinished("completed", time.Second)

	// Verify the server works
	ctx := context.Background()
	if err := server.Start(ctx); err != nil {
		t.Errorf("server.Start() error = %v", err)
	}
	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("server.Shutdown() error = %v", err)
	}
}
