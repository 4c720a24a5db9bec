package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/infodancer/relayprobe/internal/config"
	"github.com/infodancer/relayprobe/internal/logging"
	"github.com/infodancer/relayprobe/internal/probe"
	"github.com/infodancer/relayprobe/internal/verdictcache"
)

// runCheck performs one delivery probe and returns the verdict exit code:
// 1 for spam, 0 for everything else.
func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	cfgFlags := config.RegisterFlags(fs)

	var (
		recipient      = fs.String("recipient", "", "Destination mailbox")
		body           = fs.String("body", "", "Path to the message file to transmit")
		clientIP       = fs.String("client-ip", "", "Originating client IP for the XCLIENT announcement")
		clientHelo     = fs.String("client-helo", "", "HELO hostname the original client presented")
		clientRDNS     = fs.String("client-rdns", "", "Reverse DNS name of the original client")
		envelopeFrom   = fs.String("from", "", "Envelope sender (bounce address)")
		fromHeaderAddr = fs.String("from-header-address", "", "Sender fallback taken from the From header")
		fromHeader     = fs.String("from-header", "", "Verbatim From header to re-present")
		deadline       = fs.Duration("deadline", 0, "Overall wall-clock bound inherited from the enclosing scan (0 = helper timeout only)")
	)
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

	if *recipient == "" || *body == "" {
		fmt.Fprintln(os.Stderr, "usage: relayprobe check -recipient <mailbox> -body <file> [flags]")
		return 2
	}

	if err := probe.ResolveHelper(cfg.Helper.Path); err != nil {
		// The probe is disabled for this run; that is a negative
		// verdict, not an error.
		logger.Warn("probe disabled", "error", err.Error())
		return probe.VerdictUnsure.ExitCode()
	}

	var cache *verdictcache.Cache
	if cfg.Cache.Enabled {
		cache = verdictcache.New(cfg.Cache.Address, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.VerdictTTL())
		defer func() { _ = cache.Close() }()
	}

	req := probe.Request{
		Recipient:         *recipient,
		RelayServer:       cfg.Relay.Server,
		RelayPort:         cfg.Relay.Port,
		BodyPath:          *body,
		EnvelopeFrom:      *envelopeFrom,
		FromHeaderAddress: *fromHeaderAddr,
		FromHeaderRaw:     *fromHeader,
		ExtraOptions:      cfg.Helper.ExtraArgs(),
	}
	// The XCLIENT announcement needs the complete connection identity;
	// with any part missing the attempt proceeds without it.
	if *clientIP != "" && *clientHelo != "" && *clientRDNS != "" {
		req.Sender = &probe.SenderIdentity{
			IP:   *clientIP,
			Helo: *clientHelo,
			RDNS: *clientRDNS,
		}
	}

	ctx := context.Background()
	if *deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *deadline)
		defer cancel()
	}

	p := probe.NewProber(cfg.Helper.Path, cfg.Helper.AttemptTimeout(), logger, nil, cache)
	return p.Check(ctx, req).ExitCode()
}
