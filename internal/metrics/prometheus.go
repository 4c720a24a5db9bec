package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements the Collector interface using Prometheus metrics.
type PrometheusCollector struct {
	// Attempt metrics
	attemptsActive         prometheus.Gauge
	attemptsTotal          *prometheus.CounterVec
	attemptDurationSeconds prometheus.Histogram

	// Verdict metrics
	verdictsTotal *prometheus.CounterVec

	// Cache metrics
	cacheLookupsTotal *prometheus.CounterVec
}

// NewPrometheusCollector creates a new PrometheusCollector with all metrics registered.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		attemptsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relayprobe_attempts_active",
			Help: "Number of helper attempts currently in flight.",
		}),
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relayprobe_attempts_total",
			Help: "Total number of helper attempts by outcome kind.",
		}, []string{"outcome"}),
		attemptDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "relayprobe_attempt_duration_seconds",
			Help:    "Wall-clock duration of helper attempts.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}),

		verdictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relayprobe_verdicts_total",
			Help: "Total number of verdicts by value.",
		}, []string{"verdict"}),

		cacheLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relayprobe_cache_lookups_total",
			Help: "Total number of verdict cache lookups.",
		}, []string{"result"}),
	}

	// Register all metrics
	reg.MustRegister(
		c.attemptsActive,
		c.attemptsTotal,
		c.attemptDurationSeconds,
		c.verdictsTotal,
		c.cacheLookupsTotal,
	)

	return c
}

// AttemptStarted increments the active attempts gauge.
func (c *PrometheusCollector) AttemptStarted() {
	c.attemptsActive.Inc()
}

// AttemptFinished records the attempt outcome and duration.
func (c *PrometheusCollector) AttemptFinished(outcome string, duration time.Duration) {
	c.attemptsActive.Dec()
	c.attemptsTotal.WithLabelValues(outcome).Inc()
	c.attemptDurationSeconds.Observe(duration.Seconds())
}

// VerdictRecorded increments the verdict counter.
func (c *PrometheusCollector) VerdictRecorded(verdict string) {
	c.verdictsTotal.WithLabelValues(verdict).Inc()
}

// CacheLookup increments the cache lookup counter.
func (c *PrometheusCollector) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookupsTotal.WithLabelValues(result).Inc()
}
