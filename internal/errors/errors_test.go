package errors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBinaryNotFoundError(t *testing.T) {
	err := &BinaryNotFoundError{
		SearchedPaths: []string{"/usr/bin/gpg", "/usr/local/bin/gpg"},
	}

	require.Equal(
		t,
		"gpg binary not found in: [/usr/bin/gpg /usr/local/bin/gpg]",
		err.Error(),
	)
	require.True(t, err.IsGnuPGError())
}

func TestUnsupportedStreamError(t *testing.T) {
	root := errors.New("file already closed")
	err := &UnsupportedStreamError{Op: "read", Err: root}

	require.Equal(t, "stream does not support read: file already closed", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsGnuPGError())
}

func TestProcessError_WithUnderlyingError(t *testing.T) {
	root := errors.New("process terminated")
	err := &ProcessError{
		ExitCode: 9,
		Stderr:   "ignored when Err is set",
		Err:      root,
	}

	require.Equal(t, "gpg process failed (exit 9): process terminated", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsGnuPGError())
}

func TestProcessError_WithStderrOnly(t *testing.T) {
	err := &ProcessError{
		ExitCode: 2,
		Stderr:   "gpg: decryption failed: No secret key",
	}

	require.Equal(t, "gpg process failed (exit 2): gpg: decryption failed: No secret key", err.Error())
	require.NoError(t, err.Unwrap())
	require.True(t, err.IsGnuPGError())
}

func TestTimeoutError(t *testing.T) {
	err := &TimeoutError{Binary: "gpg", Timeout: 10 * time.Second}

	require.Equal(t, "gpg did not exit within 10s and was killed", err.Error())
	require.True(t, err.IsGnuPGError())
}

func TestDoubleCompletionError(t *testing.T) {
	require.Equal(t, "operation already completed", (&DoubleCompletionError{}).Error())
	require.Equal(
		t,
		"operation already completed (token job-7)",
		(&DoubleCompletionError{Token: "job-7"}).Error(),
	)
}

func TestMismatchedHandleError(t *testing.T) {
	err := &MismatchedHandleError{Expected: "*async.Operation[string]", Got: "*async.Operation[int]"}

	require.Equal(
		t,
		"mismatched operation handle: expected *async.Operation[string], got *async.Operation[int]",
		err.Error(),
	)
	require.True(t, err.IsGnuPGError())
}
