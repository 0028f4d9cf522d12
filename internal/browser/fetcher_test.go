package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"balanca/internal/model"
)

func newTestFetcher(max int, attempt func(int) (string, error)) (*ChromeFetcher, *int, *[]time.Duration) {
	calls := 0
	var sleeps []time.Duration
	f := NewChromeFetcher(Options{MaxAttempts: max, RetryDelay: 5 * time.Second})
	f.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	f.attempt = func(ctx context.Context, url string) (string, error) {
		calls++
		return attempt(calls)
	}
	return f, &calls, &sleeps
}

func TestFetch_RetriesUntilSuccess(t *testing.T) {
	f, calls, sleeps := newTestFetcher(3, func(n int) (string, error) {
		if n < 3 {
			return "", fmt.Errorf("%w: timeout", model.ErrPageLoad)
		}
		return "<table></table>", nil
	})

	html, err := f.Fetch(context.Background(), "http://exemplo")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if html != "<table></table>" {
		t.Fatalf("unexpected html %q", html)
	}
	if *calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", *calls)
	}
	if len(*sleeps) != 2 || (*sleeps)[0] != 5*time.Second {
		t.Fatalf("expected 2 waits of 5s, got %v", *sleeps)
	}
}

func TestFetch_ExhaustsAttempts(t *testing.T) {
	f, calls, sleeps := newTestFetcher(3, func(int) (string, error) {
		return "", fmt.Errorf("%w: chrome não encontrado", model.ErrDriverInit)
	})

	_, err := f.Fetch(context.Background(), "http://exemplo")
	if !errors.Is(err, model.ErrDriverInit) {
		t.Fatalf("expected ErrDriverInit, got %v", err)
	}
	var se *model.StageError
	if !errors.As(err, &se) || se.Stage != model.StageFetch {
		t.Fatalf("expected fetch StageError, got %T %v", err, err)
	}
	if *calls != 3 || len(*sleeps) != 2 {
		t.Fatalf("expected 3 attempts and 2 waits, got %d / %d", *calls, len(*sleeps))
	}
}

func TestFetch_DoesNotRetryOtherErrors(t *testing.T) {
	f, calls, _ := newTestFetcher(3, func(int) (string, error) {
		return "", errors.New("erro inesperado")
	})
	if _, err := f.Fetch(context.Background(), "http://exemplo"); err == nil {
		t.Fatal("expected error")
	}
	if *calls != 1 {
		t.Fatalf("expected a single attempt, got %d", *calls)
	}
}

func TestAllocatorOptions_ChromePath(t *testing.T) {
	base := len(NewChromeFetcher(DefaultOptions()).allocatorOptions())
	opts := DefaultOptions()
	opts.ChromePath = "/usr/bin/chromium"
	if got := len(NewChromeFetcher(opts).allocatorOptions()); got != base+1 {
		t.Fatalf("expected ExecPath option to be added, got %d options (base %d)", got, base)
	}
}

func TestFetch_StopsWhenContextIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f, calls, sleeps := newTestFetcher(3, func(int) (string, error) {
		cancel()
		return "", fmt.Errorf("%w: %v", model.ErrPageLoad, context.Canceled)
	})

	_, err := f.Fetch(ctx, "http://exemplo")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var se *model.StageError
	if !errors.As(err, &se) || se.Stage != model.StageFetch {
		t.Fatalf("expected fetch StageError, got %T %v", err, err)
	}
	if *calls != 1 || len(*sleeps) != 0 {
		t.Fatalf("expected a single attempt without waiting, got %d attempts and %v waits", *calls, *sleeps)
	}
}

func TestSleepCtx(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := sleepCtx(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("sleepCtx must return as soon as the context is done")
	}
	if err := sleepCtx(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
