package resilience

import (
	"context"
	"time"

	"github.com/jonwraymond/rescache/cache"
)

// Guard composes resilience patterns around factory attempts.
type Guard struct {
	bulkhead       *Bulkhead
	circuitBreaker *CircuitBreaker
	retry          *Retry
	timeout        *Timeout
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// NewGuard creates a Guard. With no options it runs attempts directly.
func NewGuard(opts ...GuardOption) *Guard {
	g := &Guard{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WithBulkhead bounds concurrent constructions.
func WithBulkhead(b *Bulkhead) GuardOption {
	return func(g *Guard) {
		g.bulkhead = b
	}
}

// WithCircuitBreaker stops constructions while the backing store fails.
func WithCircuitBreaker(cb *CircuitBreaker) GuardOption {
	return func(g *Guard) {
		g.circuitBreaker = cb
	}
}

// WithRetry retries failed attempts.
func WithRetry(r *Retry) GuardOption {
	return func(g *Guard) {
		g.retry = r
	}
}

// WithTimeout limits each attempt to d.
func WithTimeout(d time.Duration) GuardOption {
	return func(g *Guard) {
		g.timeout = NewTimeout(d)
	}
}

// Execute runs op through the configured patterns, outermost first:
// bulkhead, circuit breaker, retry, timeout. Each retry attempt passes
// through the timeout; the breaker sees the outcome of the whole retry loop.
func (g *Guard) Execute(ctx context.Context, op func(context.Context) error) error {
	run := op

	if g.timeout != nil {
		inner := run
		run = func(ctx context.Context) error { return g.timeout.Execute(ctx, inner) }
	}
	if g.retry != nil {
		inner := run
		run = func(ctx context.Context) error { return g.retry.Execute(ctx, inner) }
	}
	if g.circuitBreaker != nil {
		inner := run
		run = func(ctx context.Context) error { return g.circuitBreaker.Execute(ctx, inner) }
	}
	if g.bulkhead != nil {
		inner := run
		run = func(ctx context.Context) error { return g.bulkhead.Execute(ctx, inner) }
	}

	return run(ctx)
}

// Protect returns a factory that runs f through g. A nil g returns f.
func Protect[V any](g *Guard, f cache.Factory[V]) cache.Factory[V] {
	if g == nil || f == nil {
		return f
	}
	return func(ctx context.Context, key string) (*V, error) {
		var v *V
		err := g.Execute(ctx, func(ctx context.Context) error {
			res, err := f(ctx, key)
			if err != nil {
				return err
			}
			v = res
			return nil
		})
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
