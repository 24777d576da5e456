// Package retrier wraps remote calls with bounded fixed-interval retry.
package retrier

import (
	"context"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	// DefaultAttempts is the total attempt budget, including the first call.
	DefaultAttempts = 3
	// DefaultDelay is the fixed suspension between attempts. Provider rate
	// limits recover on the order of ten seconds, so backoff buys nothing here.
	DefaultDelay = 10 * time.Second
)

// Policy configures retry behavior for a wrapped operation.
type Policy struct {
	// Attempts is the total attempt budget including the first call.
	// Zero means DefaultAttempts.
	Attempts uint

	// Delay is the fixed wait between attempts. Zero means DefaultDelay.
	Delay time.Duration

	// RetryIf classifies an error as transient (retry) or fatal (propagate).
	// Nil retries every error.
	RetryIf func(error) bool

	// Logger, if set, records each retry attempt.
	Logger *slog.Logger
}

func (p Policy) normalized() Policy {
	if p.Attempts == 0 {
		p.Attempts = DefaultAttempts
	}
	if p.Delay == 0 {
		p.Delay = DefaultDelay
	}
	return p
}

// Do executes op under the policy, returning its result.
// On a non-retryable error, or after the attempt budget is exhausted, the
// operation's own error is returned unchanged so callers keep the provider's
// diagnostic message.
func Do[T any](ctx context.Context, name string, p Policy, op func(context.Context) (T, error)) (T, error) {
	p = p.normalized()

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(p.Attempts),
		retry.Delay(p.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	}
	if p.RetryIf != nil {
		opts = append(opts, retry.RetryIf(p.RetryIf))
	}
	if p.Logger != nil {
		opts = append(opts, retry.OnRetry(func(attempt uint, err error) {
			p.Logger.Warn("retrying operation",
				"operation", name,
				"attempt", attempt+1,
				"max_attempts", p.Attempts,
				"delay", p.Delay,
				"error", err)
		}))
	}

	return retry.DoWithData(func() (T, error) {
		return op(ctx)
	}, opts...)
}
