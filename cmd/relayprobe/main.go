package main

import (
	"fmt"
	"os"
	"strings"
)

func main() {
	// Dispatch to a subcommand before flag parsing so the chosen function
	// owns its own flag set.
	var subcommand string
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		subcommand = args[0]
		args = args[1:]
	}

	switch subcommand {
	case "", "check":
		os.Exit(runCheck(args))
	case "batch":
		os.Exit(runBatch(args))
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\nusage: relayprobe [check|batch] [flags]\n", subcommand)
		os.Exit(2)
	}
}
