package errors

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// GnuPGError is the base interface for all SDK errors.
type GnuPGError interface {
	error
	IsGnuPGError() bool
}

// Compile-time verification that all error types implement GnuPGError.
var (
	_ GnuPGError = (*BinaryNotFoundError)(nil)
	_ GnuPGError = (*UnsupportedStreamError)(nil)
	_ GnuPGError = (*ProcessError)(nil)
	_ GnuPGError = (*TimeoutError)(nil)
	_ GnuPGError = (*DoubleCompletionError)(nil)
	_ GnuPGError = (*MismatchedHandleError)(nil)
)

// AggregateError combines more than one concurrently raised failure from a
// single subprocess run. A singleton failure set is never wrapped; it is
// propagated directly.
type AggregateError = multierror.Error

// Sentinel errors for commonly checked conditions.
var (
	// ErrNoRecipients indicates an encrypt request without any recipient.
	ErrNoRecipients = errors.New("no recipients specified")

	// ErrNoKeyID indicates an export request without a key id.
	ErrNoKeyID = errors.New("no key id specified")
)

// BinaryNotFoundError indicates the gpg binary was not found.
type BinaryNotFoundError struct {
	SearchedPaths []string
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("gpg binary not found in: %v", e.SearchedPaths)
}

// IsGnuPGError implements GnuPGError.
func (e *BinaryNotFoundError) IsGnuPGError() bool { return true }

// UnsupportedStreamError indicates a supplied stream cannot be read or
// written as required by a pump.
type UnsupportedStreamError struct {
	Op  string // "read" or "write"
	Err error
}

func (e *UnsupportedStreamError) Error() string {
	return fmt.Sprintf("stream does not support %s: %v", e.Op, e.Err)
}

func (e *UnsupportedStreamError) Unwrap() error {
	return e.Err
}

// IsGnuPGError implements GnuPGError.
func (e *UnsupportedStreamError) IsGnuPGError() bool { return true }

// ProcessError indicates the gpg process failed: it exited non-zero and
// wrote to stderr. Stderr carries the captured error text verbatim.
//
// A non-zero exit with empty stderr is not reported as a ProcessError;
// gpg signals some non-fatal conditions that way.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gpg process failed (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("gpg process failed (exit %d): %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsGnuPGError implements GnuPGError.
func (e *ProcessError) IsGnuPGError() bool { return true }

// TimeoutError indicates the gpg process did not exit within the allotted
// duration and was forcibly terminated.
type TimeoutError struct {
	Binary  string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s did not exit within %s and was killed", e.Binary, e.Timeout)
}

// IsGnuPGError implements GnuPGError.
func (e *TimeoutError) IsGnuPGError() bool { return true }

// DoubleCompletionError indicates an operation's completion method was
// invoked more than once. This is a programming-usage error, not a runtime
// condition to recover from.
type DoubleCompletionError struct {
	Token any
}

func (e *DoubleCompletionError) Error() string {
	if e.Token != nil {
		return fmt.Sprintf("operation already completed (token %v)", e.Token)
	}

	return "operation already completed"
}

// IsGnuPGError implements GnuPGError.
func (e *DoubleCompletionError) IsGnuPGError() bool { return true }

// MismatchedHandleError indicates End was invoked with a handle that does
// not match the expected result type.
type MismatchedHandleError struct {
	Expected string
	Got      string
}

func (e *MismatchedHandleError) Error() string {
	return fmt.Sprintf("mismatched operation handle: expected %s, got %s", e.Expected, e.Got)
}

// IsGnuPGError implements GnuPGError.
func (e *MismatchedHandleError) IsGnuPGError() bool { return true }
