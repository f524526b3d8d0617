package resilience

import (
	"context"
	"time"
)

const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

type retryConfig struct {
	attempts int
	delay    time.Duration
	retryIf  func(error) bool
}

// RetryOption customises Retry.
type RetryOption func(*retryConfig)

// WithAttempts sets the total number of attempts, including the first.
func WithAttempts(n int) RetryOption {
	return func(c *retryConfig) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithDelay sets the base delay; attempt n waits delay*n before the next try.
func WithDelay(d time.Duration) RetryOption {
	return func(c *retryConfig) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithRetryIf limits retries to errors for which fn returns true.
func WithRetryIf(fn func(error) bool) RetryOption {
	return func(c *retryConfig) {
		c.retryIf = fn
	}
}

// Retry calls op until it succeeds, the attempt cap is reached, the error is
// not retryable, or ctx is done. The last error is returned.
func Retry(ctx context.Context, op func(ctx context.Context) error, opts ...RetryOption) error {
	cfg := retryConfig{attempts: DefaultAttempts, delay: DefaultDelay}
	for _, opt := range opts {
		opt(&cfg)
	}

	var err error
	for attempt := 1; attempt <= cfg.attempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == cfg.attempts {
			break
		}
		if cfg.retryIf != nil && !cfg.retryIf(err) {
			return err
		}

		timer := time.NewTimer(cfg.delay * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}
