package fetch

import (
	"context"
	"errors"
)

// errNoCandidates is returned by Race when given an empty operation list.
var errNoCandidates = errors.New("no candidates to race")

// Race runs every operation concurrently and returns the first success.
// Losing operations are cancelled through the shared context once a winner
// settles; results that arrive afterwards are drained and dropped, so
// correctness never depends on the cancellation being observed. If every
// operation fails, the last failure is returned.
func Race[T any](ctx context.Context, ops []func(context.Context) (T, error)) (T, error) {
	var zero T
	if len(ops) == 0 {
		return zero, errNoCandidates
	}

	raceCtx, cancel := context.WithCancel(ctx)

	type outcome struct {
		val T
		err error
	}

	// Buffered so losers can settle after the winner without anyone
	// listening.
	results := make(chan outcome, len(ops))
	for _, op := range ops {
		go func(op func(context.Context) (T, error)) {
			val, err := op(raceCtx)
			results <- outcome{val: val, err: err}
		}(op)
	}

	var lastErr error
	for range ops {
		select {
		case out := <-results:
			if out.err == nil {
				cancel()
				return out.val, nil
			}
			lastErr = out.err
		case <-ctx.Done():
			cancel()
			return zero, ctx.Err()
		}
	}

	cancel()
	return zero, lastErr
}
