package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/infodancer/relayprobe/internal/config"
	"github.com/infodancer/relayprobe/internal/logging"
	"github.com/infodancer/relayprobe/internal/metrics"
	"github.com/infodancer/relayprobe/internal/probe"
	"github.com/infodancer/relayprobe/internal/verdictcache"
)

// batchRequest is one line of batch input on stdin.
type batchRequest struct {
	Recipient         string `json:"recipient"`
	BodyPath          string `json:"body_path"`
	ClientIP          string `json:"client_ip,omitempty"`
	ClientHelo        string `json:"client_helo,omitempty"`
	ClientRDNS        string `json:"client_rdns,omitempty"`
	EnvelopeFrom      string `json:"envelope_from,omitempty"`
	FromHeaderAddress string `json:"from_header_address,omitempty"`
	FromHeader        string `json:"from_header,omitempty"`
}

// batchResult is one line of batch output on stdout.
type batchResult struct {
	Recipient string `json:"recipient"`
	Verdict   string `json:"verdict"`
	Spam      bool   `json:"spam"`
}

// runBatch probes one message per JSON line on stdin, serially, and writes
// one JSON verdict per line to stdout. Long-running callers get the metrics
// endpoint and verdict cache that a one-shot check cannot benefit from.
func runBatch(args []string) int {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	cfgFlags := config.RegisterFlags(fs)
	_ = fs.Parse(args)

	cfg, err := config.LoadWithFlags(cfgFlags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		return 2
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 2
	}

	logger := logging.NewLogger(cfg.LogLevel)

	// With the helper unavailable every message degrades to a negative
	// verdict without spawning anything.
	disabled := false
	if err := probe.ResolveHelper(cfg.Helper.Path); err != nil {
		logger.Warn("probe disabled", "error", err.Error())
		disabled = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector, server := metrics.New(metrics.Config{
		Enabled: cfg.Metrics.Enabled,
		Address: cfg.Metrics.Address,
		Path:    cfg.Metrics.Path,
	})
	go func() {
		if err := server.Start(ctx); err != nil && err != context.Canceled {
			logger.Error("metrics server error", "error", err.Error())
		}
	}()

	var cache *verdictcache.Cache
	if cfg.Cache.Enabled {
		cache = verdictcache.New(cfg.Cache.Address, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.VerdictTTL())
		defer func() { _ = cache.Close() }()
	}

	p := probe.NewProber(cfg.Helper.Path, cfg.Helper.AttemptTimeout(), logger, collector, cache)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	enc := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var br batchRequest
		if err := json.Unmarshal(line, &br); err != nil {
			logger.Warn("skipping malformed batch line", "error", err.Error())
			continue
		}

		verdict := probe.VerdictUnsure
		if !disabled {
			req := probe.Request{
				Recipient:         br.Recipient,
				RelayServer:       cfg.Relay.Server,
				RelayPort:         cfg.Relay.Port,
				BodyPath:          br.BodyPath,
				EnvelopeFrom:      br.EnvelopeFrom,
				FromHeaderAddress: br.FromHeaderAddress,
				FromHeaderRaw:     br.FromHeader,
				ExtraOptions:      cfg.Helper.ExtraArgs(),
			}
			if br.ClientIP != "" && br.ClientHelo != "" && br.ClientRDNS != "" {
				req.Sender = &probe.SenderIdentity{
					IP:   br.ClientIP,
					Helo: br.ClientHelo,
					RDNS: br.ClientRDNS,
				}
			}
			verdict = p.Check(ctx, req)
		}

		if err := enc.Encode(batchResult{
			Recipient: br.Recipient,
			Verdict:   string(verdict),
			Spam:      verdict.IsSpam(),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "error writing result: %v\n", err)
			return 2
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
		return 2
	}
	return 0
}
