package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Timeout gives each attempt its own deadline. Factories must honor ctx; an
// attempt that ignores it runs to completion.
type Timeout struct {
	d time.Duration
}

// NewTimeout creates a Timeout of d. Non-positive durations default to 30s.
func NewTimeout(d time.Duration) *Timeout {
	if d <= 0 {
		d = 30 * time.Second
	}
	return &Timeout{d: d}
}

// Execute runs op with a deadline. When the deadline set here expires, the
// returned error matches both ErrTimeout and the error op returned.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	tctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	err := op(tctx)
	if err == nil || ctx.Err() != nil {
		return err
	}
	if errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %v: %w", ErrTimeout, t.d, err)
	}
	return err
}

// Duration returns the per-attempt deadline.
func (t *Timeout) Duration() time.Duration {
	return t.d
}
