package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/dgallion1/contractlens/internal/llm"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryStep   = 2 * time.Second
)

// Attempt is what one call returned and how it should be treated.
type Attempt[T any] struct {
	Value   T
	Outcome llm.Outcome
	Err     error
}

// Backoff returns how long to wait after failed attempt n (1-based).
type Backoff func(attempt int) time.Duration

// LinearBackoff waits attempt × step: step, then 2×step, and so on.
func LinearBackoff(step time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// Policy bounds the retry loop.
type Policy struct {
	MaxAttempts int
	Backoff     Backoff
}

var errNoAttempt = errors.New("call failed without an error")

// Invoke runs call until it reports llm.OK, it reports llm.Fatal, the
// attempts are used up, or ctx is done. On failure the zero value is
// returned with the last attempt's error.
func Invoke[T any](ctx context.Context, p Policy, call func(ctx context.Context, attempt int) Attempt[T]) (T, int, error) {
	var zero T
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	backoff := p.Backoff
	if backoff == nil {
		backoff = LinearBackoff(DefaultRetryStep)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		a := call(ctx, attempt)
		if a.Outcome == llm.OK {
			return a.Value, attempt, nil
		}
		lastErr = a.Err
		if lastErr == nil {
			lastErr = errNoAttempt
		}
		if a.Outcome == llm.Fatal || attempt == maxAttempts {
			return zero, attempt, lastErr
		}
		if err := sleep(ctx, backoff(attempt)); err != nil {
			return zero, attempt, lastErr
		}
	}
	return zero, maxAttempts, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
