package pipeline

import (
	"context"

	"github.com/cenkalti/backoff/v4"

	"noteforge/quill/internal/gemini"
)

// withRetry wraps one outbound model call with bounded exponential backoff.
// Only errors classified as retryable (server overload / internal) are
// retried; everything else propagates on first occurrence. The attempt cap
// counts the first call, so RetryAttempts=3 means at most two retries.
func withRetry[T any](ctx context.Context, cfg Config, op func() (T, error)) (T, error) {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.RetryBaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.5
	bo.MaxElapsedTime = 0

	wrapped := func() (T, error) {
		v, err := op()
		if err == nil {
			return v, nil
		}
		if gemini.Classify(err) != gemini.KindRetryable {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	return backoff.RetryWithData(wrapped,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(attempts-1)), ctx))
}
