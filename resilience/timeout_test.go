package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewTimeout_Default(t *testing.T) {
	if d := NewTimeout(0).Duration(); d != 30*time.Second {
		t.Errorf("Duration() = %v, want 30s", d)
	}
}

func TestTimeout_Expires(t *testing.T) {
	to := NewTimeout(10 * time.Millisecond)

	err := to.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Execute() error = %v, want the attempt error kept", err)
	}
}

func TestTimeout_PassesThrough(t *testing.T) {
	to := NewTimeout(time.Second)
	errDown := errors.New("store down")

	if err := to.Execute(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if err := to.Execute(context.Background(), func(ctx context.Context) error { return errDown }); err != errDown {
		t.Errorf("Execute() error = %v, want %v unmodified", err, errDown)
	}
}

func TestTimeout_ParentCanceled(t *testing.T) {
	to := NewTimeout(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := to.Execute(ctx, func(ctx context.Context) error { return ctx.Err() })
	if !errors.Is(err, context.Canceled) || errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want context.Canceled only", err)
	}
}
