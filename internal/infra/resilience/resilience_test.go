package resilience_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/helpers-app/helpers-api/internal/infra/resilience"

	"github.com/sony/gobreaker"
)

var errBackendUnavailable = errors.New("supabase returned status 503")

// flakyListing fails n times before serving the catalog page, the shape
// of a PostgREST blip during a deploy.
func flakyListing(failures int) func() error {
	attempts := 0
	return func() error {
		attempts++
		if attempts <= failures {
			return errBackendUnavailable
		}
		return nil
	}
}

func TestRetryWithBackoff_FirstAttemptSucceeds(t *testing.T) {
	cfg := resilience.Config{MaxRetries: 3, InitialBackoff: 10 * time.Millisecond}

	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), cfg, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestRetryWithBackoff_RecoversFromBlip(t *testing.T) {
	cfg := resilience.Config{MaxRetries: 3, InitialBackoff: 10 * time.Millisecond}

	if err := resilience.RetryWithBackoff(context.Background(), cfg, flakyListing(2)); err != nil {
		t.Fatalf("expected recovery within the retry budget, got %v", err)
	}
}

func TestRetryWithBackoff_SurfacesLastErrorWhenExhausted(t *testing.T) {
	cfg := resilience.Config{MaxRetries: 2, InitialBackoff: 10 * time.Millisecond}

	err := resilience.RetryWithBackoff(context.Background(), cfg, flakyListing(10))
	if !errors.Is(err, errBackendUnavailable) {
		t.Fatalf("expected the backend error after exhausting retries, got %v", err)
	}
}

func TestRetryWithBackoff_StopsOnCancelledRequest(t *testing.T) {
	cfg := resilience.Config{MaxRetries: 5, InitialBackoff: 1 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := resilience.RetryWithBackoff(ctx, cfg, flakyListing(10))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCircuitBreaker_OpensAfterRepeatedBackendFailures(t *testing.T) {
	cb := resilience.NewCircuitBreaker("supabase")

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(func() (any, error) {
			return nil, errBackendUnavailable
		})
		if !errors.Is(err, errBackendUnavailable) {
			t.Fatalf("attempt %d: expected backend error, got %v", i+1, err)
		}
	}

	// The breaker now fails fast without touching the backend.
	touched := false
	_, err := cb.Execute(func() (any, error) {
		touched = true
		return nil, nil
	})
	if err != gobreaker.ErrOpenState {
		t.Fatalf("expected ErrOpenState once the breaker tripped, got %v", err)
	}
	if touched {
		t.Error("expected the open breaker to short-circuit the call")
	}
}

func TestBulkhead_CapsConcurrentUploads(t *testing.T) {
	bh := resilience.NewBulkhead(2)

	for i := 0; i < 2; i++ {
		if err := bh.Acquire(context.Background()); err != nil {
			t.Fatalf("upload slot %d: %v", i+1, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := bh.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the third upload to wait out its deadline, got %v", err)
	}

	bh.Release()
	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatalf("expected a slot after release, got %v", err)
	}
}

func TestBulkhead_ReleaseWakesWaiter(t *testing.T) {
	bh := resilience.NewBulkhead(1)
	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var waited error
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		waited = bh.Acquire(ctx)
	}()

	time.Sleep(10 * time.Millisecond)
	bh.Release()
	wg.Wait()

	if waited != nil {
		t.Fatalf("expected the waiting upload to get the freed slot, got %v", waited)
	}
}
