// Package retry runs an operation again after a failure, waiting twice as
// long before each new attempt.
package retry

import (
	"context"
	"log/slog"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

const (
	// DefaultMaxRetries is the number of extra attempts after the first call.
	DefaultMaxRetries = 3
	// DefaultBaseDelay is the wait before the first retry.
	DefaultBaseDelay = 500 * time.Millisecond
)

// Policy controls how often and how patiently an operation is retried.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	// ShouldRetry reports whether an error is worth another attempt. A nil
	// ShouldRetry retries every error.
	ShouldRetry func(error) bool
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay}
}

func (p Policy) backoff() goretry.Backoff {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Nanosecond
	}
	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return goretry.WithMaxRetries(uint64(retries), goretry.NewExponential(base))
}

// Do calls fn until it succeeds, returns an error ShouldRetry rejects, the
// retries are used up, or ctx is done. fn is called at most MaxRetries+1
// times and the last error is returned.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempt := 0
	return goretry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if p.ShouldRetry != nil && !p.ShouldRetry(err) {
			return err
		}
		slog.DebugContext(ctx, "operation failed, will retry",
			"event", "retry_attempt_failed",
			"attempt", attempt,
			"error", err,
		)
		return goretry.RetryableError(err)
	})
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Delays lists the waits Do performs between attempts when every attempt
// fails: BaseDelay, 2*BaseDelay, 4*BaseDelay and so on, MaxRetries long.
func Delays(p Policy) []time.Duration {
	b := p.backoff()
	var out []time.Duration
	for {
		d, stop := b.Next()
		if stop {
			return out
		}
		out = append(out, d)
	}
}
