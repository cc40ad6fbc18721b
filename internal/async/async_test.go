package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	sdkerrors "github.com/wagiedev/gnupg-sdk-go/internal/errors"
)

func TestOperation_CompleteThenWait(t *testing.T) {
	op := New[string](nil, nil)

	require.False(t, op.Completed())
	require.NoError(t, op.Complete("done"))
	require.True(t, op.Completed())

	value, err := op.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, "done", value)
}

func TestOperation_WaitBlocksUntilCompletion(t *testing.T) {
	op := New[int](nil, nil)

	go func() {
		time.Sleep(50 * time.Millisecond)

		_ = op.Complete(42)
	}()

	value, err := op.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, value)
}

func TestOperation_DoubleCompletion(t *testing.T) {
	op := New[int](nil, "job-1")

	require.NoError(t, op.Complete(1))

	err := op.Complete(2)

	var doubleErr *sdkerrors.DoubleCompletionError

	require.ErrorAs(t, err, &doubleErr)
	require.Equal(t, "job-1", doubleErr.Token)

	// Fail after Complete is the same programming error.
	require.ErrorAs(t, op.Fail(errors.New("late")), &doubleErr)

	// The first completion wins.
	value, waitErr := op.Wait(context.Background())
	require.NoError(t, waitErr)
	require.Equal(t, 1, value)
}

func TestOperation_FailureIsRepeatable(t *testing.T) {
	root := errors.New("bad passphrase")
	op := New[string](nil, nil)

	require.NoError(t, op.Fail(root))

	for range 3 {
		_, err := op.Wait(context.Background())
		require.ErrorIs(t, err, root)
	}
}

func TestOperation_CallbackAfterCompletion(t *testing.T) {
	var (
		observedDone  bool
		observedToken any
	)

	callback := func(h Handle) {
		observedDone = h.Completed()
		observedToken = h.Token()
	}

	op := New[int](callback, "corr-9")
	require.NoError(t, op.Complete(7))

	require.True(t, observedDone, "callback must observe the completed state")
	require.Equal(t, "corr-9", observedToken)
}

func TestOperation_ConcurrentCompletersExactlyOneWins(t *testing.T) {
	op := New[int](nil, nil)

	const completers = 16

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		losers int
	)

	for i := range completers {
		wg.Go(func() {
			if err := op.Complete(i); err != nil {
				mu.Lock()
				losers++
				mu.Unlock()
			}
		})
	}

	wg.Wait()

	require.Equal(t, completers-1, losers)
	require.True(t, op.Completed())
}

func TestBegin_RunsWorkAndEnds(t *testing.T) {
	op := Begin(nil, func() (string, error) {
		return "payload", nil
	}, nil, nil)

	value, err := End[string](context.Background(), op)
	require.NoError(t, err)
	require.Equal(t, "payload", value)
}

func TestBegin_WorkFailurePropagates(t *testing.T) {
	root := errors.New("boom")

	op := Begin(nil, func() (int, error) {
		return 0, root
	}, nil, nil)

	_, err := End[int](context.Background(), op)
	require.ErrorIs(t, err, root)

	// And again: failure observation is repeatable.
	_, err = End[int](context.Background(), op)
	require.ErrorIs(t, err, root)
}

func TestEnd_MismatchedHandle(t *testing.T) {
	op := Begin(nil, func() (int, error) {
		return 1, nil
	}, nil, nil)

	_, err := End[string](context.Background(), op)

	var mismatchErr *sdkerrors.MismatchedHandleError

	require.ErrorAs(t, err, &mismatchErr)
	require.Contains(t, mismatchErr.Got, "int")
	require.Contains(t, mismatchErr.Expected, "string")
}

func TestWait_ContextCancellation(t *testing.T) {
	op := New[int](nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := op.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// A later completion is still observable.
	require.NoError(t, op.Complete(5))

	value, err := op.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, value)
}

func TestBegin_CallbackReceivesHandle(t *testing.T) {
	done := make(chan Handle, 1)

	op := Begin(nil, func() (int, error) {
		return 3, nil
	}, func(h Handle) {
		done <- h
	}, "tok")

	h := <-done
	require.Equal(t, op.ID(), h.ID())
	require.Equal(t, "tok", h.Token())
	require.True(t, h.Completed())
}
