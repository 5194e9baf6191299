package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"
)

func retryTestConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryAttempts = 3
	cfg.RetryBaseDelay = time.Millisecond
	return cfg
}

func TestWithRetryEventualSuccess(t *testing.T) {
	attempts := 0
	got, err := withRetry(context.Background(), retryTestConfig(), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("UNAVAILABLE: the model is overloaded")
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("withRetry() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("withRetry() = %q, want %q", got, "ok")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetryNonRetryableFailsFast(t *testing.T) {
	cause := errors.New("API key not valid")
	attempts := 0
	_, err := withRetry(context.Background(), retryTestConfig(), func() (string, error) {
		attempts++
		return "", cause
	})

	if !errors.Is(err, cause) {
		t.Errorf("withRetry() error = %v, want %v", err, cause)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	cause := errors.New("503 service unavailable")
	attempts := 0
	_, err := withRetry(context.Background(), retryTestConfig(), func() (int, error) {
		attempts++
		return 0, cause
	})

	if !errors.Is(err, cause) {
		t.Errorf("withRetry() error = %v, want last error %v", err, cause)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetryQuotaIsNotRetried(t *testing.T) {
	attempts := 0
	_, err := withRetry(context.Background(), retryTestConfig(), func() (string, error) {
		attempts++
		return "", errors.New("RESOURCE_EXHAUSTED: quota exceeded")
	})

	if err == nil {
		t.Fatal("withRetry() expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (quota must not be retried)", attempts)
	}
}
