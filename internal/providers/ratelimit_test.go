package providers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	t.Run("wait consumes from a full bucket without blocking", func(t *testing.T) {
		limiter := NewRateLimiter(60)

		start := time.Now()
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("took too long: %v", elapsed)
		}
	})

	t.Run("try consume drains the bucket", func(t *testing.T) {
		limiter := NewRateLimiter(2)

		if !limiter.TryConsume() {
			t.Error("first TryConsume should succeed")
		}
		if !limiter.TryConsume() {
			t.Error("second TryConsume should succeed")
		}
		if limiter.TryConsume() {
			t.Error("TryConsume on an empty bucket should fail")
		}
	})

	t.Run("status", func(t *testing.T) {
		limiter := NewRateLimiter(60)

		status := limiter.Status()

		if status.TokensLimit != 60 {
			t.Errorf("TokensLimit = %d, want 60", status.TokensLimit)
		}
		if status.TokensAvailable <= 0 {
			t.Error("expected positive tokens available")
		}
		if !status.Last429Time.IsZero() {
			t.Error("Last429Time set before any 429")
		}
	})

	t.Run("record 429 drains the bucket", func(t *testing.T) {
		limiter := NewRateLimiter(60)

		limiter.Record429(time.Second)

		status := limiter.Status()
		if status.Last429Time.IsZero() {
			t.Error("Last429Time should be set")
		}
		if status.TokensAvailable != 0 {
			t.Errorf("TokensAvailable = %d, want drained bucket", status.TokensAvailable)
		}
	})

	t.Run("observe error reacts to rate-limit errors only", func(t *testing.T) {
		limiter := NewRateLimiter(60)

		limiter.ObserveError(fmt.Errorf("connection reset"))
		limiter.ObserveError(&CallError{Kind: ErrKindBadRequest, StatusCode: 400, Message: "image too large"})
		if st := limiter.Status(); !st.Last429Time.IsZero() {
			t.Error("non-rate-limit errors must not register a 429")
		}

		wrapped := fmt.Errorf("redraw: %w", &CallError{Kind: ErrKindRateLimit, StatusCode: 429, Message: "quota"})
		limiter.ObserveError(wrapped)
		st := limiter.Status()
		if st.Last429Time.IsZero() {
			t.Error("wrapped rate-limit error should register a 429")
		}
		if st.TokensAvailable != 0 {
			t.Errorf("TokensAvailable = %d, want drained bucket", st.TokensAvailable)
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		limiter := NewRateLimiter(1)

		// Consume the one available token
		limiter.Wait(context.Background())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := limiter.Wait(ctx); err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("concurrent requests", func(t *testing.T) {
		limiter := NewRateLimiter(6000)

		var wg sync.WaitGroup
		var errCount atomic.Int32

		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := limiter.Wait(context.Background()); err != nil {
					errCount.Add(1)
				}
			}()
		}
		wg.Wait()

		if errCount.Load() > 0 {
			t.Errorf("had %d errors", errCount.Load())
		}
		if status := limiter.Status(); status.TotalConsumed != 10 {
			t.Errorf("TotalConsumed = %d, want 10", status.TotalConsumed)
		}
	})
}
