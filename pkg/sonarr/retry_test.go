package sonarr

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fastRetryConfig keeps backoff waits negligible in tests.
func fastRetryConfig(maxAttempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       maxAttempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetryWithBackoff_SuccessFirstAttempt(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), fastRetryConfig(3), func() error {
		attempts++
		return nil
	}, func() ErrorClass {
		return ErrorClassServer
	})

	if err != nil {
		t.Errorf("retryWithBackoff() error: %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetryWithBackoff_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), fastRetryConfig(3), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary failure")
		}
		return nil
	}, func() ErrorClass {
		return ErrorClassServer
	})

	if err != nil {
		t.Errorf("retryWithBackoff() error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithBackoff_ClientErrorNotRetried(t *testing.T) {
	attempts := 0
	wantErr := errors.New("401 unauthorized")
	err := retryWithBackoff(context.Background(), fastRetryConfig(3), func() error {
		attempts++
		return wantErr
	}, func() ErrorClass {
		return ErrorClassClient
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("retryWithBackoff() error = %v, want %v", err, wantErr)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetryWithBackoff_Exhaustion(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), fastRetryConfig(3), func() error {
		attempts++
		return errors.New("still broken")
	}, func() ErrorClass {
		return ErrorClassNetwork
	})

	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("retryWithBackoff() error = %v, want ErrRetryExhausted", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	config := RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    10 * time.Second, // cancellation must win the wait
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
	}

	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- retryWithBackoff(ctx, config, func() error {
			attempts++
			return errors.New("failing")
		}, func() ErrorClass {
			return ErrorClassServer
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, ErrContextCancelled) {
			t.Errorf("retryWithBackoff() error = %v, want ErrContextCancelled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("retryWithBackoff() did not return after context cancellation")
	}

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (cancelled during first backoff)", attempts)
	}
}
