package resilience

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryConfig configures Retry.
type RetryConfig struct {
	// MaxAttempts is the number of attempts including the first one.
	// Default: 3
	MaxAttempts int

	// InitialDelay is the wait before the second attempt.
	// Default: 50ms
	InitialDelay time.Duration

	// MaxDelay caps the wait between attempts.
	// Default: 2s
	MaxDelay time.Duration

	// Multiplier grows the delay after every attempt. 1 keeps it constant.
	// Default: 2
	Multiplier float64

	// Jitter adds up to 25% random delay to each wait.
	Jitter bool

	// RetryIf reports whether err is worth another attempt.
	// Default: every error except the caller's context cancellation or
	// deadline expiry. Attempts cut off by a Timeout are retried.
	RetryIf func(err error) bool

	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry re-runs failed attempts with backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a Retry, filling unset fields with defaults.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 50 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 2 * time.Second
	}
	if config.Multiplier < 1 {
		config.Multiplier = 2
	}
	if config.RetryIf == nil {
		config.RetryIf = retryable
	}
	return &Retry{config: config}
}

// retryable excludes only the caller's own cancellation or deadline. An
// attempt cut off by Timeout also wraps context.DeadlineExceeded, so
// ErrTimeout is checked first.
func retryable(err error) bool {
	if errors.Is(err, ErrTimeout) {
		return true
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Execute runs op until it succeeds, returns a non-retryable error, or the
// attempts run out. The error of the last attempt is returned as is, also
// when ctx is canceled while waiting.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	delay := r.config.InitialDelay

	var err error
	for attempt := 1; ; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt >= r.config.MaxAttempts || !r.config.RetryIf(err) {
			return err
		}

		wait := r.jittered(delay)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		delay = min(time.Duration(float64(delay)*r.config.Multiplier), r.config.MaxDelay)
	}
}

func (r *Retry) jittered(d time.Duration) time.Duration {
	d = min(d, r.config.MaxDelay)
	if !r.config.Jitter || d < 4 {
		return d
	}
	// #nosec G404 -- jitter is non-cryptographic timing variance.
	return d + time.Duration(rand.Int64N(int64(d/4)))
}

// Config returns the effective configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
