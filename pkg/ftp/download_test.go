package ftp

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDownloadWithRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	res := downloadWithRetry(context.Background(), DownloadOptions{RetryAttempts: 3, RetryDelayMs: 1}, func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("ok"), nil
	})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDownloadWithRetryExhausted(t *testing.T) {
	calls := 0
	res := downloadWithRetry(context.Background(), DownloadOptions{RetryAttempts: 3, RetryDelayMs: 1}, func(ctx context.Context) ([]byte, error) {
		calls++
		return nil, errors.New("boom")
	})
	if res.Err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestDownloadWithRetrySucceedsOnSecondAttempt(t *testing.T) {
	calls := 0
	res := downloadWithRetry(context.Background(), DownloadOptions{RetryAttempts: 3, RetryDelayMs: 1}, func(ctx context.Context) ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return []byte("ok"), nil
	})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestDownloadWithRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	res := downloadWithRetry(ctx, DownloadOptions{RetryAttempts: 5, RetryDelayMs: 1000}, func(ctx context.Context) ([]byte, error) {
		calls++
		return nil, errors.New("always fails")
	})
	if res.Err == nil {
		t.Fatal("expected error when context is cancelled mid-backoff")
	}
}
