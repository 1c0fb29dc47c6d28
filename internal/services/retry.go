package services

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"social-service/internal/apperrors"
	"social-service/internal/observability"
)

// RetryPolicy bounds how often an operation is re-run after a TransientConflict.
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxTries: 5, InitialInterval: 5 * time.Millisecond, MaxInterval: 100 * time.Millisecond}
}

// retryOnConflict re-runs fn while it fails with TransientConflict. Every other
// error, and the last conflict once the budget is spent, is returned as is.
func retryOnConflict[T any](ctx context.Context, policy RetryPolicy, operation string, fn func() (T, error)) (T, error) {
	tries := policy.MaxTries
	if tries == 0 {
		tries = 1
	}

	b := backoff.NewExponentialBackOff()
	if policy.InitialInterval > 0 {
		b.InitialInterval = policy.InitialInterval
	}
	if policy.MaxInterval > 0 {
		b.MaxInterval = policy.MaxInterval
	}

	attempt := uint(0)
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !apperrors.HasCode(err, apperrors.CodeTransientConflict) {
			return result, backoff.Permanent(err)
		}
		if attempt < tries {
			observability.IncConflictRetry(operation)
		}
		return result, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(tries))
}
