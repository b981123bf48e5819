package utils

import (
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger()}

	attempts := 0
	err := r.Do("flaky op", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("boom")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts: got %d, want 3", attempts)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger()}

	attempts := 0
	err := r.Do("always failing op", func() error {
		attempts++
		return errors.New("boom")
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("attempts: got %d, want 3", attempts)
	}
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	notFound := errors.New("404 not found")
	r := &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Logger:      NewLogger(),
		ShouldRetry: func(err error) bool { return !errors.Is(err, notFound) },
	}

	attempts := 0
	err := r.Do("permanent failure", func() error {
		attempts++
		return notFound
	})

	if !errors.Is(err, notFound) {
		t.Fatalf("expected the original error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts: got %d, want 1 (no retry on permanent errors)", attempts)
	}
}
