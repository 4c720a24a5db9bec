// Package probe tests whether a message would be accepted by an independent
// outbound relay. It spawns an external delivery-test helper that performs
// the actual SMTP conversation, captures the helper's transcript under a
// wall-clock deadline, and classifies the transcript into a spam verdict.
package probe

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/infodancer/relayprobe/internal/logging"
	"github.com/infodancer/relayprobe/internal/metrics"
	"github.com/infodancer/relayprobe/internal/verdictcache"
)

// Verdict is the ternary outcome of one probe. Unsure and NotSpam are
// identical to the caller; the distinction exists for diagnostics only.
type Verdict string

const (
	// VerdictNotSpam means the relay accepted the message, or rejected it
	// for a reason unrelated to content.
	VerdictNotSpam Verdict = "notspam"
	// VerdictSpam means the relay rejected the message on content or
	// reputation grounds.
	VerdictSpam Verdict = "spam"
	// VerdictUnsure means no recognizable final response was seen.
	VerdictUnsure Verdict = "unsure"
)

// ExitCode maps a verdict to the integer consumed by the scoring boundary:
// 1 for spam, 0 for everything else.
func (v Verdict) ExitCode() int {
	if v == VerdictSpam {
		return 1
	}
	return 0
}

// IsSpam reports whether the verdict is positive.
func (v Verdict) IsSpam() bool {
	return v == VerdictSpam
}

// Prober sequences one delivery attempt: cache lookup, argument
// construction, helper run, transcript classification. A Prober holds no
// per-attempt state and may be reused across attempts.
type Prober struct {
	helperPath string
	runner     *Runner
	cache      *verdictcache.Cache
	logger     *slog.Logger
	collector  metrics.Collector
}

// NewProber creates a Prober for the helper at helperPath. cache may be nil
// to disable verdict caching; collector may be nil to disable metrics.
func NewProber(helperPath string, timeout time.Duration, logger *slog.Logger, collector metrics.Collector, cache *verdictcache.Cache) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = &metrics.NoopCollector{}
	}
	return &Prober{
		helperPath: helperPath,
		runner:     &Runner{Timeout: timeout, Logger: logger},
		cache:      cache,
		logger:     logger,
		collector:  collector,
	}
}

// Check performs one complete attempt for req and returns the verdict.
// Every failure mode degrades to VerdictUnsure; nothing is retried.
func (p *Prober) Check(ctx context.Context, req Request) Verdict {
	logger := logging.WithAttempt(p.logger, req.Recipient)
	start := time.Now()

	if p.cache != nil {
		key := verdictcache.Key(req.ClientIP(), req.SenderAddress())
		cached, ok, err := p.cache.Get(ctx, key)
		if err != nil {
			logger.Debug("verdict cache lookup failed", "error", err.Error())
		} else if ok {
			p.collector.CacheLookup(true)
			if v, valid := parseVerdict(cached); valid {
				logger.Info("verdict from cache", "verdict", string(v))
				p.collector.VerdictRecorded(string(v))
				return v
			}
			logger.Debug("discarding unrecognized cached verdict", "value", cached)
		} else {
			p.collector.CacheLookup(false)
		}
	}

	args, err := BuildArgs(req)
	if err != nil {
		logger.Warn("cannot build helper arguments", "error", err.Error())
		p.collector.VerdictRecorded(string(VerdictUnsure))
		return VerdictUnsure
	}

	logger.Debug("spawning helper",
		slog.String("path", p.helperPath),
		slog.String("args", strings.Join(args, " ")))

	p.collector.AttemptStarted()
	out := p.runner.Run(ctx, p.helperPath, args)
	p.collector.AttemptFinished(string(out.Kind), time.Since(start))

	if out.Kind != OutcomeCompleted {
		if out.Err != nil {
			logger.Info("attempt degraded, no verdict available",
				"outcome", string(out.Kind), "error", out.Err.Error())
		} else {
			logger.Info("attempt degraded, no verdict available",
				"outcome", string(out.Kind))
		}
		p.collector.VerdictRecorded(string(VerdictUnsure))
		return VerdictUnsure
	}

	cls := Classify(out.Transcript)
	logger.Info("transcript classified",
		"verdict", string(cls.Verdict),
		"reason", cls.Reason,
		"lines", len(out.Transcript))
	p.collector.VerdictRecorded(string(cls.Verdict))

	// Only verdicts backed by a real transcript are worth remembering;
	// degraded attempts never reach this point.
	if p.cache != nil {
		key := verdictcache.Key(req.ClientIP(), req.SenderAddress())
		if err := p.cache.Put(ctx, key, string(cls.Verdict)); err != nil {
			logger.Debug("verdict cache store failed", "error", err.Error())
		}
	}

	return cls.Verdict
}

// parseVerdict converts a cached string back into a Verdict.
func parseVerdict(s string) (Verdict, bool) {
	switch Verdict(s) {
	case VerdictNotSpam, VerdictSpam, VerdictUnsure:
		return Verdict(s), true
	default:
		return VerdictUnsure, false
	}
}
