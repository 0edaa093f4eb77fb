package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/rescache/cache"
)

type sprite struct {
	key   string
	frame *int
	pad   [24]byte
}

func TestGuard_NoPatterns(t *testing.T) {
	called := false
	err := NewGuard().Execute(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Errorf("Execute() = %v, called = %v", err, called)
	}
}

func TestGuard_RetryInsideBreaker(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Hour})
	g := NewGuard(
		WithCircuitBreaker(cb),
		WithRetry(NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})),
	)
	errDown := errors.New("store down")

	var attempts int
	err := g.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return errDown
	})
	if err != errDown {
		t.Errorf("Execute() = %v, want %v", err, errDown)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if cb.State() != StateOpen {
		t.Errorf("breaker = %v, want open after one failed retry loop", cb.State())
	}

	if err := g.Execute(context.Background(), func(ctx context.Context) error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() = %v, want ErrCircuitOpen", err)
	}
}

func TestGuard_TimeoutPerAttempt(t *testing.T) {
	g := NewGuard(
		WithRetry(NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})),
		WithTimeout(20*time.Millisecond),
	)

	var attempts int
	err := g.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	})
	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestProtect_NilArguments(t *testing.T) {
	if f := Protect[sprite](nil, nil); f != nil {
		t.Error("Protect(nil, nil) returned a factory")
	}

	base := cache.Factory[sprite](func(ctx context.Context, key string) (*sprite, error) {
		return &sprite{key: key}, nil
	})
	f := Protect(nil, base)
	s, err := f(context.Background(), "hero")
	if err != nil || s.key != "hero" {
		t.Errorf("Protect(nil, f)() = %+v, %v", s, err)
	}
}

func TestProtect_WithResourceCache(t *testing.T) {
	errDown := errors.New("store down")
	var calls atomic.Int32
	factory := func(ctx context.Context, key string) (*sprite, error) {
		if calls.Add(1) == 1 {
			return nil, errDown
		}
		return &sprite{key: key, frame: new(int)}, nil
	}

	g := NewGuard(WithRetry(NewRetry(RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond})))
	c, err := cache.New(Protect(g, factory))
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}

	s, err := c.Get(context.Background(), "hero")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if s.key != "hero" {
		t.Errorf("key = %q, want hero", s.key)
	}
	if calls.Load() != 2 {
		t.Errorf("factory calls = %d, want 2", calls.Load())
	}

	again, err := c.Get(context.Background(), "hero")
	if err != nil || again != s {
		t.Errorf("second Get() = %p, %v; want same instance %p", again, err, s)
	}
	if got := c.Stats().Constructions; got != 1 {
		t.Errorf("Constructions = %d, want 1", got)
	}
}

func TestProtect_ErrorReachesCacheCaller(t *testing.T) {
	errDown := errors.New("store down")
	factory := func(ctx context.Context, key string) (*sprite, error) {
		return nil, errDown
	}

	g := NewGuard(WithRetry(NewRetry(RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond})))
	c, err := cache.New(Protect(g, factory))
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}

	if _, err := c.Get(context.Background(), "hero"); err != errDown {
		t.Errorf("Get() error = %v, want %v unmodified", err, errDown)
	}
	if c.Contains("hero") {
		t.Error("failed construction was cached")
	}
}

func TestProtect_BulkheadRejection(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer b.Release()

	f := Protect(NewGuard(WithBulkhead(b)), func(ctx context.Context, key string) (*sprite, error) {
		t.Error("factory called while bulkhead is full")
		return nil, nil
	})
	if _, err := f(context.Background(), "hero"); !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("factory error = %v, want ErrBulkheadFull", err)
	}
}

func TestGuard_DefaultsRetryTimeoutsAndTripBreaker(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 2, ResetTimeout: time.Hour})
	g := NewGuard(
		WithCircuitBreaker(cb),
		WithRetry(NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})),
		WithTimeout(10*time.Millisecond),
	)

	var attempts atomic.Int32
	hang := func(ctx context.Context, key string) (*sprite, error) {
		attempts.Add(1)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f := Protect(g, hang)

	var errs []error
	for range 5 {
		_, err := f(context.Background(), "hero")
		errs = append(errs, err)
	}

	if got := attempts.Load(); got != 6 {
		t.Errorf("attempts = %d, want 6 (3 per call until the breaker opens)", got)
	}
	for i, err := range errs[:2] {
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("call %d error = %v, want ErrTimeout", i, err)
		}
	}
	for i, err := range errs[2:] {
		if !errors.Is(err, ErrCircuitOpen) {
			t.Errorf("call %d error = %v, want ErrCircuitOpen", i+2, err)
		}
	}
	if cb.State() != StateOpen {
		t.Errorf("breaker = %v, want open", cb.State())
	}
}

func TestGuard_CallerCancellationNotRetried(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1})
	g := NewGuard(
		WithCircuitBreaker(cb),
		WithRetry(NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})),
		WithTimeout(time.Second),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var attempts int
	err := g.Execute(ctx, func(ctx context.Context) error {
		attempts++
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) || errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() = %v, want context.Canceled only", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if cb.State() != StateClosed {
		t.Errorf("breaker = %v, want closed after caller cancellation", cb.State())
	}
}
