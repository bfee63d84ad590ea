package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// ErrRetry tells Bounded to try again.
var ErrRetry = errors.New("retry")

// ErrExhausted is returned when all attempts have been used.
var ErrExhausted = errors.New("retry attempts exhausted")

// Backoff is a (blocking) function returns when to retry.
//
// # Args
//
// - context: context. If context is canceled, Backoff should return ctx.Err().
//
// # Returns
//
// - error: nil if retry, non-nil if not.
type Backoff func(context.Context) error

// JitteredBackoff returns a Backoff function that waits with exponential backoff,
// extending each wait randomly.
//
// For N-th call, it waits for a duration in
// `[initialInterval * r^N, initialInterval * r^N * (1 + jitter))`.
// Non-positive jitter means no extension.
func JitteredBackoff(initialInterval time.Duration, r float64, jitter float64) Backoff {
	interval := initialInterval
	return func(ctx context.Context) error {
		d := interval
		if jitter > 0 {
			d = wait.Jitter(interval, jitter)
		}
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			interval = time.Duration(float64(interval) * r)
			return nil
		}
	}
}

// Bounded calls f at most maxAttempts times.
//
// The first call is made immediately, and b is waited between calls.
// When f returns an error wrapping ErrRetry, it is called again.
// Other errors and nil stop the loop.
//
// # Returns
//
// - T: last return value of f
//
// - error: the error from f which stopped the loop,
// the error from b (e.g. context canceled),
// or ErrExhausted wrapping the last ErrRetry-ish error from f.
func Bounded[T any](ctx context.Context, maxAttempts int, b Backoff, f func(attempt int) (T, error)) (T, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	last := *new(T)
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt != 1 {
			if err := b(ctx); err != nil {
				return last, err
			}
		} else if err := ctx.Err(); err != nil {
			return last, err
		}

		last, lastErr = f(attempt)
		if lastErr == nil {
			return last, nil
		}
		if !errors.Is(lastErr, ErrRetry) {
			return last, lastErr
		}
	}
	return last, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, maxAttempts, lastErr)
}
