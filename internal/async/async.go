// Package async provides the single-completion operation primitive behind
// the SDK's asynchronous surface.
//
// An Operation is completed exactly once, by whichever goroutine gets
// there first; the stored value or failure is then observable any number
// of times. Callers may block on the result, poll for completion, or
// receive a callback.
package async

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/gnupg-sdk-go/internal/errors"
)

// Handle is the type-erased view of an in-flight Operation. It is what
// callbacks receive and what End accepts.
type Handle interface {
	// ID is the operation's unique identifier.
	ID() string

	// Token returns the caller-supplied correlation token, uninterpreted.
	Token() any

	// Completed is a non-blocking, momentary snapshot.
	Completed() bool

	kind() string
}

// Operation is a single-completion result container for a value of type T.
//
// The zero value is not usable; create operations with New or Begin.
type Operation[T any] struct {
	id       string
	token    any
	callback func(Handle)

	// completed is the only completion guard: exactly one completer wins
	// the compare-and-set, all others observe the already-completed state.
	completed atomic.Bool

	mu       sync.Mutex
	signaled bool
	done     chan struct{} // created lazily by the first blocking waiter

	value T
	err   error

	eg *errgroup.Group
}

var _ Handle = (*Operation[int])(nil)

// New creates a pending operation. The callback, if non-nil, is invoked
// once after completion, with the completed state fully visible. The token
// is opaque to the SDK.
func New[T any](callback func(Handle), token any) *Operation[T] {
	return &Operation[T]{
		id:       ulid.Make().String(),
		token:    token,
		callback: callback,
	}
}

// Begin creates an operation and hosts work on its own goroutine,
// completing or failing the operation with the work's outcome.
func Begin[T any](log *slog.Logger, work func() (T, error), callback func(Handle), token any) *Operation[T] {
	op := New[T](callback, token)

	if log != nil {
		log.Debug("Beginning async operation", "op_id", op.id, "token", token)
	}

	// Errgroup keeps the work goroutine joinable from End.
	op.eg = &errgroup.Group{}
	op.eg.Go(func() error {
		value, err := work()
		if err != nil {
			return op.Fail(err)
		}

		return op.Complete(value)
	})

	return op
}

// ID implements Handle.
func (o *Operation[T]) ID() string { return o.id }

// Token implements Handle.
func (o *Operation[T]) Token() any { return o.token }

// Completed implements Handle.
func (o *Operation[T]) Completed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.signaled
}

func (o *Operation[T]) kind() string {
	return fmt.Sprintf("%T", o)
}

// Complete stores the operation's value and marks it completed. Completing
// an operation twice is a programming error reported as
// DoubleCompletionError; the first completion always wins.
func (o *Operation[T]) Complete(value T) error {
	return o.finish(value, nil)
}

// Fail stores err as the operation's outcome and marks it completed.
// Every subsequent Wait re-raises the stored error.
func (o *Operation[T]) Fail(err error) error {
	var zero T

	return o.finish(zero, err)
}

func (o *Operation[T]) finish(value T, err error) error {
	if !o.completed.CompareAndSwap(false, true) {
		return &errors.DoubleCompletionError{Token: o.token}
	}

	o.mu.Lock()
	o.value = value
	o.err = err
	o.signaled = true

	if o.done != nil {
		close(o.done)
	}
	o.mu.Unlock()

	if o.callback != nil {
		o.callback(o)
	}

	return nil
}

// Wait blocks until the operation completes, then returns the stored
// value, or re-raises the stored failure. Waiting is not a one-time
// consumption: every call observes the identical outcome.
func (o *Operation[T]) Wait(ctx context.Context) (T, error) {
	o.mu.Lock()

	if o.done == nil {
		o.done = make(chan struct{})
		if o.signaled {
			close(o.done)
		}
	}

	done := o.done
	o.mu.Unlock()

	select {
	case <-done:

	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}

	if o.eg != nil {
		// Join the work goroutine so Begin leaves nothing running.
		_ = o.eg.Wait()
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	return o.value, o.err
}

// End blocks for the outcome of h. The handle must be an operation with
// result type T; anything else fails with MismatchedHandleError.
func End[T any](ctx context.Context, h Handle) (T, error) {
	op, ok := h.(*Operation[T])
	if !ok {
		var zero T

		return zero, &errors.MismatchedHandleError{
			Expected: fmt.Sprintf("%T", op),
			Got:      h.kind(),
		}
	}

	return op.Wait(ctx)
}
