package gnupg

import (
	stderrors "errors"

	"github.com/wagiedev/gnupg-sdk-go/internal/errors"
	"github.com/wagiedev/gnupg-sdk-go/internal/gpg"
)

// Re-export error types from internal package

// GnuPGError is the base interface for all SDK errors.
type GnuPGError = errors.GnuPGError

// BinaryNotFoundError indicates the gpg binary was not found.
type BinaryNotFoundError = errors.BinaryNotFoundError

// UnsupportedStreamError indicates a supplied stream cannot be read or
// written as required.
type UnsupportedStreamError = errors.UnsupportedStreamError

// ProcessError indicates the gpg process exited non-zero and wrote to
// stderr; it carries the captured error text verbatim.
type ProcessError = errors.ProcessError

// TimeoutError indicates the gpg process was killed after exceeding its
// timeout.
type TimeoutError = errors.TimeoutError

// AggregateError combines more than one concurrently raised failure.
type AggregateError = errors.AggregateError

// DoubleCompletionError indicates an Operation was completed twice.
type DoubleCompletionError = errors.DoubleCompletionError

// MismatchedHandleError indicates End was given a handle of the wrong
// result type.
type MismatchedHandleError = errors.MismatchedHandleError

// Re-export sentinel errors from internal package.
var (
	// ErrNoRecipients indicates an encrypt call without any recipient.
	ErrNoRecipients = errors.ErrNoRecipients

	// ErrNoKeyID indicates an export call without a key id.
	ErrNoKeyID = errors.ErrNoKeyID
)

// IsBadSignature reports whether err is a gpg failure caused by a BAD
// signature verdict during verification.
func IsBadSignature(err error) bool {
	var procErr *ProcessError

	if !stderrors.As(err, &procErr) {
		return false
	}

	return gpg.HasBadSignature(procErr.Stderr)
}
