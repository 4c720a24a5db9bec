package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/infodancer/relayprobe/internal/logging"
)

// DefaultTimeout bounds a helper run when neither the Runner nor the context
// supplies a tighter deadline.
const DefaultTimeout = 12 * time.Second

// readChunkSize is the fixed read size for draining the helper's pipe.
const readChunkSize = 4096

// OutcomeKind identifies how a helper attempt terminated.
type OutcomeKind string

const (
	// OutcomeCompleted means the helper produced output and the pipe
	// reached EOF before the deadline.
	OutcomeCompleted OutcomeKind = "completed"
	// OutcomeTimedOut means the deadline fired first; partial output is
	// discarded.
	OutcomeTimedOut OutcomeKind = "timed_out"
	// OutcomeBrokenPipe means the pipe peer closed mid-read.
	OutcomeBrokenPipe OutcomeKind = "broken_pipe"
	// OutcomeNoResponse means the helper exited without writing anything.
	OutcomeNoResponse OutcomeKind = "no_response"
	// OutcomeSpawnFailed means the helper never started.
	OutcomeSpawnFailed OutcomeKind = "spawn_failed"
	// OutcomeIoError means the read failed for a reason other than a
	// broken pipe.
	OutcomeIoError OutcomeKind = "io_error"
)

// Outcome is the result of one helper run. Transcript is populated only for
// OutcomeCompleted; Err only for OutcomeSpawnFailed and OutcomeIoError.
type Outcome struct {
	Kind       OutcomeKind
	Transcript []string
	Err        error
}

// Runner executes the helper under a hard wall-clock deadline and guarantees
// the process is reaped and its pipe closed on every exit path.
type Runner struct {
	// Timeout is the per-attempt ceiling. A sooner context deadline
	// shortens it. Zero means DefaultTimeout.
	Timeout time.Duration

	// Logger receives diagnostics; nil falls back to slog.Default.
	Logger *slog.Logger
}

// Run spawns the helper at path with args, reads its merged stdout+stderr to
// exhaustion, and reports how the attempt ended. The helper's stdin comes
// from the null device; it takes instructions only from its arguments.
func (r *Runner) Run(ctx context.Context, path string, args []string) Outcome {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		// The enclosing deadline already expired; spawning would only
		// produce a process we immediately have to kill.
		return Outcome{Kind: OutcomeTimedOut}
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return Outcome{Kind: OutcomeIoError, Err: fmt.Errorf("creating pipe: %w", err)}
	}

	cmd := exec.Command(path, args...)
	cmd.Stdin = nil // null device
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		_ = pr.Close()
		return Outcome{Kind: OutcomeSpawnFailed, Err: fmt.Errorf("starting helper: %w", err)}
	}
	// The child holds its own copy of the write end; ours must go so that
	// the read below sees EOF when the child exits.
	_ = pw.Close()

	at := &attempt{cmd: cmd, pipe: pr, logger: logger}
	defer at.cleanup()

	watchdog := time.AfterFunc(timeout, at.expire)
	defer watchdog.Stop()

	var buf bytes.Buffer
	rd := logging.NewTranscriptReader(pr, logger)
	chunk := make([]byte, readChunkSize)
	var readErr error
	for {
		n, err := rd.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err != nil {
			if err != io.EOF {
				readErr = err
			}
			break
		}
	}

	switch {
	case at.expired():
		return Outcome{Kind: OutcomeTimedOut}
	case isBrokenPipe(readErr):
		return Outcome{Kind: OutcomeBrokenPipe}
	case readErr != nil:
		return Outcome{Kind: OutcomeIoError, Err: fmt.Errorf("reading helper output: %w", readErr)}
	case buf.Len() == 0:
		// An empty transcript is significant: the classifier must never
		// see one.
		return Outcome{Kind: OutcomeNoResponse}
	}
	return Outcome{Kind: OutcomeCompleted, Transcript: splitTranscript(buf.Bytes())}
}

// attempt owns the process handle and read descriptor for a single run.
// Both are released exactly once no matter how the run ends.
type attempt struct {
	cmd    *exec.Cmd
	pipe   *os.File
	logger *slog.Logger

	mu       sync.Mutex
	timedOut bool
	closed   bool
	cleaned  bool
}

// expire is the watchdog path: mark the deadline as hit and close the read
// end so the blocking read returns immediately. The process itself is
// killed by cleanup.
func (a *attempt) expire() {
	a.mu.Lock()
	a.timedOut = true
	alreadyClosed := a.closed
	a.closed = true
	a.mu.Unlock()

	if !alreadyClosed {
		_ = a.pipe.Close()
	}
}

// expired reports whether the watchdog fired.
func (a *attempt) expired() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timedOut
}

// cleanup terminates the helper if it is still running, closes the pipe
// descriptor, and reaps the process. Calling it more than once is a no-op.
func (a *attempt) cleanup() {
	a.mu.Lock()
	if a.cleaned {
		a.mu.Unlock()
		return
	}
	a.cleaned = true
	alreadyClosed := a.closed
	a.closed = true
	a.mu.Unlock()

	// Termination is fire-and-forget; a failed signal only gets logged.
	if a.cmd.ProcessState == nil {
		if err := a.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			a.logger.Debug("helper kill failed", "error", err.Error())
		}
	}
	if !alreadyClosed {
		_ = a.pipe.Close()
	}

	// Reap and classify the exit status for diagnostics only; it never
	// overrides the data-driven outcome.
	err := a.cmd.Wait()
	switch code := a.cmd.ProcessState.ExitCode(); {
	case err == nil:
		a.logger.Debug("helper exited cleanly")
	case code == 1:
		// The helper is known to exit 1 on a completed-but-flagged
		// transaction.
		a.logger.Debug("helper exited with flagged-transaction status")
	default:
		a.logger.Debug("helper exited with error",
			slog.Int("code", code),
			slog.String("error", err.Error()))
	}
}

// isBrokenPipe reports whether err signals a peer-closed pipe. That is a
// recoverable condition distinct from other read failures.
func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}

// splitTranscript splits the accumulated helper output into lines,
// preserving line boundaries exactly: per-line trailing terminators are
// removed and the empty fragment after a final newline is discarded.
func splitTranscript(b []byte) []string {
	lines := strings.Split(string(b), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
