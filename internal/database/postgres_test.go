package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

var errRefused = errors.New("connection refused")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestWithRetryNoWaitAfterLastAttempt проверяет, что после последней неудачи ошибка возвращается сразу.
func TestWithRetryNoWaitAfterLastAttempt(t *testing.T) {
	calls := 0
	started := time.Now()

	_, err := withRetry(context.Background(), discardLogger(), 2, 50*time.Millisecond, func(context.Context) (int, error) {
		calls++
		return 0, errRefused
	})

	elapsed := time.Since(started)
	if !errors.Is(err, errRefused) {
		t.Fatalf("expected wrapped refusal, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
	if elapsed >= 100*time.Millisecond {
		t.Fatalf("expected a single 50ms pause, took %s", elapsed)
	}
}

// TestWithRetrySucceedsAfterFailure проверяет успешную повторную попытку.
func TestWithRetrySucceedsAfterFailure(t *testing.T) {
	calls := 0

	got, err := withRetry(context.Background(), discardLogger(), 3, time.Millisecond, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errRefused
		}
		return "pool", nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "pool" || calls != 2 {
		t.Fatalf("unexpected result %q after %d calls", got, calls)
	}
}

// TestWithRetryStopsOnCancel проверяет прерывание паузы отменой контекста.
func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := withRetry(ctx, discardLogger(), 5, time.Hour, func(context.Context) (int, error) {
		return 0, errRefused
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
