package executor

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy describes one reviewed retry behavior. A multiplier of 1 yields
// a flat delay between attempts.
type RetryPolicy struct {
	MaxAttempts uint64
	BaseDelay   time.Duration
	Multiplier  float64
}

// AllowanceRetryPolicy re-verifies the allowance after an approve confirms:
// three attempts with a flat three second delay.
var AllowanceRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   3 * time.Second,
	Multiplier:  1,
}

// ReceiptRetryPolicy polls for transaction inclusion with exponential backoff
// up to a fixed attempt cap.
var ReceiptRetryPolicy = RetryPolicy{
	MaxAttempts: 8,
	BaseDelay:   time.Second,
	Multiplier:  2,
}

// Retry runs fn under the given policy until it succeeds, the attempts are
// exhausted, or the context is cancelled.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.BaseDelay
	b.Multiplier = policy.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	return backoff.RetryWithData(
		fn,
		backoff.WithContext(backoff.WithMaxRetries(b, policy.MaxAttempts-1), ctx),
	)
}
