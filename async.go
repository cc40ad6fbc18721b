package gnupg

import (
	"context"

	"github.com/wagiedev/gnupg-sdk-go/internal/async"
)

// Handle is the type-erased view of an in-flight Operation. Callbacks
// receive it and End accepts it.
type Handle = async.Handle

// Operation is a single-completion result container for a value of type T.
// It is completed exactly once; completing it a second time is a
// programming error reported as DoubleCompletionError. The stored value or
// failure is observable any number of times.
type Operation[T any] = async.Operation[T]

// Begin hosts work on its own goroutine and returns a handle for its
// eventual outcome. The callback, if non-nil, is invoked once after
// completion. The token is an opaque correlation value carried on the
// handle, uninterpreted by the SDK.
func Begin[T any](work func() (T, error), callback func(Handle), token any) *Operation[T] {
	return async.Begin(nil, work, callback, token)
}

// End blocks until the operation behind h completes, then returns its
// value or re-raises its failure. The handle must carry a result of type
// T; anything else fails with MismatchedHandleError. Calling End again on
// the same handle observes the identical outcome.
func End[T any](ctx context.Context, h Handle) (T, error) {
	return async.End[T](ctx, h)
}
