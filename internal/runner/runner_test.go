package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"

	sdkerrors "github.com/wagiedev/gnupg-sdk-go/internal/errors"
)

const shell = "/bin/sh"

func shellInvocation(script string, inv Invocation) Invocation {
	inv.Binary = shell
	inv.Args = []string{"-c", script}

	return inv
}

func TestRun_EchoesInputToOutput(t *testing.T) {
	var out bytes.Buffer

	err := New(nil).Run(context.Background(), shellInvocation("cat", Invocation{
		Input:   strings.NewReader("hello"),
		Output:  &out,
		Timeout: 5 * time.Second,
	}))

	require.NoError(t, err)
	require.Equal(t, "hello", out.String())
}

func TestRun_ZeroExitWithStderrIsSuccess(t *testing.T) {
	err := New(nil).Run(context.Background(), shellInvocation(
		"echo warning >&2; exit 0",
		Invocation{Timeout: 5 * time.Second},
	))

	require.NoError(t, err)
}

// A silent non-zero exit is success. This is deliberate: gpg reports some
// non-fatal conditions with a bare non-zero exit status.
func TestRun_NonZeroExitWithEmptyStderrIsSuccess(t *testing.T) {
	err := New(nil).Run(context.Background(), shellInvocation(
		"exit 3",
		Invocation{Timeout: 5 * time.Second},
	))

	require.NoError(t, err)
}

func TestRun_NonZeroExitWithBlankStderrIsSuccess(t *testing.T) {
	err := New(nil).Run(context.Background(), shellInvocation(
		"echo '   ' >&2; exit 1",
		Invocation{Timeout: 5 * time.Second},
	))

	require.NoError(t, err)
}

func TestRun_NonZeroExitWithStderrFails(t *testing.T) {
	err := New(nil).Run(context.Background(), shellInvocation(
		"echo 'gpg: decryption failed' >&2; exit 2",
		Invocation{Timeout: 5 * time.Second},
	))

	var procErr *sdkerrors.ProcessError

	require.ErrorAs(t, err, &procErr)
	require.Equal(t, 2, procErr.ExitCode)
	require.Contains(t, procErr.Stderr, "gpg: decryption failed")
}

func TestRun_Timeout(t *testing.T) {
	start := time.Now()

	err := New(nil).Run(context.Background(), shellInvocation(
		"sleep 30",
		Invocation{Timeout: 200 * time.Millisecond},
	))

	elapsed := time.Since(start)

	var timeoutErr *sdkerrors.TimeoutError

	require.ErrorAs(t, err, &timeoutErr)
	require.Equal(t, shell, timeoutErr.Binary)
	require.Equal(t, 200*time.Millisecond, timeoutErr.Timeout)
	require.Less(t, elapsed, 5*time.Second, "run should return promptly after the kill")
}

func TestRun_EndToEndWithinTimeout(t *testing.T) {
	var out bytes.Buffer

	err := New(nil).Run(context.Background(), shellInvocation("sleep 0.3; cat", Invocation{
		Input:   strings.NewReader("hello"),
		Output:  &out,
		Timeout: 5 * time.Second,
	}))

	require.NoError(t, err)
	require.Equal(t, "hello", out.String())
}

func TestRun_EndToEndTimedOut(t *testing.T) {
	var out bytes.Buffer

	err := New(nil).Run(context.Background(), shellInvocation("sleep 30; cat", Invocation{
		Input:   strings.NewReader("hello"),
		Output:  &out,
		Timeout: 100 * time.Millisecond,
	}))

	var timeoutErr *sdkerrors.TimeoutError

	require.ErrorAs(t, err, &timeoutErr)
}

type failingWriter struct {
	err error
}

func (w *failingWriter) Write([]byte) (int, error) {
	return 0, w.err
}

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

func TestRun_SingleFailureIsUnwrapped(t *testing.T) {
	root := errors.New("sink failed")

	err := New(nil).Run(context.Background(), shellInvocation("echo data", Invocation{
		Output:  &failingWriter{err: root},
		Timeout: 5 * time.Second,
	}))

	require.ErrorIs(t, err, root)

	var agg *multierror.Error

	require.False(t, errors.As(err, &agg), "a singleton failure must not be wrapped")
}

func TestRun_ConcurrentFailuresAggregate(t *testing.T) {
	readRoot := errors.New("source failed")
	writeRoot := errors.New("sink failed")

	err := New(nil).Run(context.Background(), shellInvocation("cat >/dev/null; echo out", Invocation{
		Input:   &failingReader{err: readRoot},
		Output:  &failingWriter{err: writeRoot},
		Timeout: 5 * time.Second,
	}))

	var agg *multierror.Error

	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Errors, 2)
	require.ErrorIs(t, err, readRoot)
	require.ErrorIs(t, err, writeRoot)
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	err := New(nil).Run(ctx, shellInvocation(
		"sleep 30",
		Invocation{Timeout: time.Minute},
	))

	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_StartFailure(t *testing.T) {
	err := New(nil).Run(context.Background(), Invocation{
		Binary:  "/nonexistent/gpg-binary",
		Timeout: time.Second,
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "start")
}
