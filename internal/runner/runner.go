package runner

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/gnupg-sdk-go/internal/errors"
	"github.com/wagiedev/gnupg-sdk-go/internal/pump"
)

const (
	// DefaultTimeout bounds a run when the invocation does not set one.
	DefaultTimeout = 10 * time.Second

	// maxStderrBufferSize caps the captured stderr text. Reading continues
	// past the cap so the subprocess never blocks on a full stderr pipe,
	// but the buffer stops growing.
	maxStderrBufferSize = 10 * 1024 * 1024 // 10MB
)

// Invocation describes one request to run the gpg binary. It is immutable
// once Run starts.
type Invocation struct {
	// Binary is the resolved absolute path of the executable.
	Binary string

	// Args are the command line arguments, excluding the binary name.
	Args []string

	// Env is the subprocess environment; nil inherits the parent's.
	Env []string

	// Dir is the working directory; empty inherits the parent's.
	Dir string

	// Input, when non-nil, is fed into the subprocess stdin, which is then
	// closed so the subprocess observes end of input.
	Input io.Reader

	// Output, when non-nil, receives the subprocess stdout.
	Output io.Writer

	// Timeout bounds the run; zero means DefaultTimeout.
	Timeout time.Duration
}

// Runner spawns gpg subprocesses and renders each run into one outcome.
type Runner struct {
	log *slog.Logger
}

// New creates a Runner. A nil logger disables logging.
func New(log *slog.Logger) *Runner {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Runner{log: log.With("component", "runner")}
}

// Run spawns the invocation's binary and coordinates four concurrent
// activities: feeding stdin, draining stdout, capturing stderr, and
// watching the timeout. It returns after all four have finished.
//
// If exactly one activity failed, that failure is returned as-is. If more
// than one failed, they are combined into an AggregateError. If none
// failed, the run is judged by the exit status: it failed only when the
// exit status is non-zero and the captured stderr text is non-blank.
// gpg reports some non-fatal conditions with a bare non-zero exit, so a
// silent non-zero exit is success.
func (r *Runner) Run(ctx context.Context, inv Invocation) error {
	log := r.log.With("run_id", ulid.Make().String())

	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	//nolint:gosec // G204: subprocess launching with dynamic args is the point of this package
	cmd := exec.Command(inv.Binary, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env

	var stdin io.WriteCloser

	if inv.Input != nil {
		pipe, err := cmd.StdinPipe()
		if err != nil {
			return fmt.Errorf("stdin pipe: %w", err)
		}

		stdin = pipe
	}

	var stdout io.ReadCloser

	if inv.Output != nil {
		pipe, err := cmd.StdoutPipe()
		if err != nil {
			return fmt.Errorf("stdout pipe: %w", err)
		}

		stdout = pipe
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	log.Debug("Starting subprocess", "binary", inv.Binary, "args", inv.Args, "timeout", timeout)

	if err := cmd.Start(); err != nil {
		log.Error("Failed to start subprocess", "error", err)

		return fmt.Errorf("start %s: %w", inv.Binary, err)
	}

	log.Info("Subprocess started", "pid", cmd.Process.Pid)

	var (
		mu       sync.Mutex
		failures []error
		killed   atomic.Bool
	)

	record := func(err error) {
		if err == nil {
			return
		}

		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}

	// Pump failures caused by the subprocess being killed are expected
	// fallout of the kill, not independent failures.
	recordPump := func(err error) {
		if err != nil && killed.Load() && isPipeDeath(err) {
			log.Debug("Suppressing pump error after kill", "error", err)

			return
		}

		record(err)
	}

	var stderrText string

	// drained joins the activities that must finish before cmd.Wait:
	// os/exec requires pipe reads to complete first.
	var drained sync.WaitGroup

	var all sync.WaitGroup

	if stdin != nil {
		all.Go(func() {
			_, err := pump.Pump(stdin, inv.Input)
			if closeErr := stdin.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close stdin: %w", closeErr)
			}

			recordPump(err)
		})
	}

	if stdout != nil {
		drained.Add(1)

		all.Go(func() {
			defer drained.Done()

			_, err := pump.Pump(inv.Output, stdout)
			recordPump(err)
		})
	}

	drained.Add(1)

	all.Go(func() {
		defer drained.Done()

		text, err := captureStderr(stderr)
		stderrText = text

		recordPump(err)
	})

	// exited observes process exit exactly once, after the pipe readers
	// are done.
	exited := make(chan error, 1)

	go func() {
		drained.Wait()
		exited <- cmd.Wait()
	}()

	var exitCode int

	all.Go(func() {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		var waitErr error

		select {
		case waitErr = <-exited:

		case <-timer.C:
			log.Warn("Subprocess timed out, killing", "timeout", timeout)
			killed.Store(true)

			if err := cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
				record(fmt.Errorf("kill %s (pid %d): %w", inv.Binary, cmd.Process.Pid, err))
			}

			// Wait for the kill to be observed so the pumps can finish
			// draining before Run returns.
			waitErr = <-exited

			record(&errors.TimeoutError{Binary: inv.Binary, Timeout: timeout})

		case <-ctx.Done():
			log.Debug("Context cancelled, killing subprocess", "error", ctx.Err())
			killed.Store(true)

			if err := cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
				record(fmt.Errorf("kill %s (pid %d): %w", inv.Binary, cmd.Process.Pid, err))
			}

			waitErr = <-exited

			record(ctx.Err())
		}

		switch {
		case waitErr == nil:

		case killed.Load():
			// Exit state after a kill carries no information.

		default:
			if exitErr, ok := stderrors.AsType[*exec.ExitError](waitErr); ok {
				exitCode = exitErr.ExitCode()
			} else {
				record(fmt.Errorf("wait for %s: %w", inv.Binary, waitErr))
			}
		}
	})

	all.Wait()

	switch len(failures) {
	case 0:

	case 1:
		log.Error("Run failed", "error", failures[0])

		return failures[0]

	default:
		log.Error("Run failed with multiple errors", "count", len(failures))

		return &multierror.Error{Errors: failures}
	}

	if exitCode != 0 && strings.TrimSpace(stderrText) != "" {
		log.Error("Subprocess exited with error", "exit_code", exitCode, "stderr", stderrText)

		return &errors.ProcessError{ExitCode: exitCode, Stderr: stderrText}
	}

	log.Info("Subprocess finished", "exit_code", exitCode)

	return nil
}

// captureStderr reads the stderr pipe to exhaustion and returns the
// captured text, capped at maxStderrBufferSize.
func captureStderr(r io.Reader) (string, error) {
	var b strings.Builder

	buf := make([]byte, 4096)

	for {
		n, err := r.Read(buf)
		if n > 0 && b.Len() < maxStderrBufferSize {
			chunk := buf[:n]
			if remaining := maxStderrBufferSize - b.Len(); len(chunk) > remaining {
				chunk = chunk[:remaining]
			}

			b.Write(chunk)
		}

		if err == io.EOF {
			return b.String(), nil
		}

		if err != nil {
			return b.String(), fmt.Errorf("read stderr: %w", err)
		}
	}
}

// isPipeDeath reports whether err is the kind of failure a pump sees when
// the process on the other end of its pipe has died.
func isPipeDeath(err error) bool {
	return stderrors.Is(err, io.ErrClosedPipe) ||
		stderrors.Is(err, os.ErrClosed) ||
		stderrors.Is(err, syscall.EPIPE)
}
