package resilience

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// RetryableError marks an attempt failure that may be retried after Wait.
type RetryableError struct {
	Err  error
	Wait time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

func Retryable(err error, wait time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, Wait: wait}
}

// RetryWait reports the wait attached to a retryable error.
func RetryWait(err error) (time.Duration, bool) {
	var retryable *RetryableError
	if !errors.As(err, &retryable) {
		return 0, false
	}
	return retryable.Wait, true
}

type RetryPolicy struct {
	MaxRetries int
	Sleep      func(ctx context.Context, d time.Duration) error
}

// Do runs fn until it succeeds, returns a non-retryable error, or MaxRetries
// retries are spent. The last error is returned as-is.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return nil
		}

		wait, ok := RetryWait(lastErr)
		if !ok || attempt == maxRetries {
			return lastErr
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}

	return lastErr
}

func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
