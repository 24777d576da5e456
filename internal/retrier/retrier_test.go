package retrier

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

var errTransient = errors.New("rate limited")

func transientOnly(err error) bool {
	return errors.Is(err, errTransient)
}

func TestDo(t *testing.T) {
	fast := Policy{Attempts: 3, Delay: time.Millisecond, RetryIf: transientOnly}

	t.Run("succeeds first attempt", func(t *testing.T) {
		calls := 0
		got, err := Do(context.Background(), "op", fast, func(ctx context.Context) (string, error) {
			calls++
			return "ok", nil
		})
		if err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if got != "ok" {
			t.Errorf("result = %q", got)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		for failures := 0; failures < 3; failures++ {
			calls := 0
			_, err := Do(context.Background(), "op", fast, func(ctx context.Context) (string, error) {
				calls++
				if calls <= failures {
					return "", errTransient
				}
				return "ok", nil
			})

			wantCalls := failures + 1
			wantErr := failures >= int(fast.Attempts)
			if wantCalls > int(fast.Attempts) {
				wantCalls = int(fast.Attempts)
			}
			if (err != nil) != wantErr {
				t.Errorf("failures=%d: err = %v, wantErr = %v", failures, err, wantErr)
			}
			if calls != wantCalls {
				t.Errorf("failures=%d: calls = %d, want %d", failures, calls, wantCalls)
			}
		}
	})

	t.Run("exhausts budget and preserves last error", func(t *testing.T) {
		calls := 0
		lastErr := fmt.Errorf("%w: quota exceeded on attempt 3", errTransient)
		_, err := Do(context.Background(), "op", fast, func(ctx context.Context) (string, error) {
			calls++
			if calls == 3 {
				return "", lastErr
			}
			return "", errTransient
		})
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
		if !errors.Is(err, lastErr) {
			t.Errorf("err = %v, want the final attempt's error preserved", err)
		}
	})

	t.Run("non-retryable short-circuits", func(t *testing.T) {
		fatal := errors.New("invalid request")
		calls := 0
		_, err := Do(context.Background(), "op", Policy{Attempts: 10, Delay: time.Millisecond, RetryIf: transientOnly},
			func(ctx context.Context) (string, error) {
				calls++
				return "", fatal
			})
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
		if !errors.Is(err, fatal) {
			t.Errorf("err = %v, want %v", err, fatal)
		}
	})

	t.Run("context cancellation stops retries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		_, err := Do(ctx, "op", Policy{Attempts: 10, Delay: 50 * time.Millisecond, RetryIf: transientOnly},
			func(ctx context.Context) (string, error) {
				calls++
				cancel()
				return "", errTransient
			})
		if err == nil {
			t.Fatal("expected error after cancellation")
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("zero policy uses defaults", func(t *testing.T) {
		p := Policy{}.normalized()
		if p.Attempts != DefaultAttempts {
			t.Errorf("Attempts = %d, want %d", p.Attempts, DefaultAttempts)
		}
		if p.Delay != DefaultDelay {
			t.Errorf("Delay = %v, want %v", p.Delay, DefaultDelay)
		}
	})
}
