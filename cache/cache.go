package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for cache operations.
var (
	ErrNilFactory  = errors.New("cache: factory is nil")
	ErrNilResource = errors.New("cache: factory returned nil resource")
	ErrInvalidKey  = errors.New("cache: key is empty")
)

// Factory builds the resource identified by key.
//
// Contract:
// - Concurrency: may be called concurrently for different keys, never for the same key.
// - Errors: returned errors reach the caller of Get unmodified and are not cached.
type Factory[V any] func(ctx context.Context, key string) (*V, error)

// Hooks observes cache activity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: hooks must not panic and must return quickly.
// - Ownership: hooks never receive the resource itself.
type Hooks interface {
	// OnHit is called when Get returned a live resource without building it,
	// including one registered by a concurrent construction.
	OnHit(ctx context.Context, key string)

	// OnMiss is called when Get had to run the factory for key, after the
	// construction ended.
	OnMiss(ctx context.Context, key string)

	// OnStale is called when an entry for a collected resource was removed.
	OnStale(ctx context.Context, key string)

	// OnConstruct is called after every factory invocation.
	OnConstruct(ctx context.Context, key string, duration time.Duration, err error)
}

// ValidateKey reports whether key can identify a resource. Any non-empty
// string can; keys are opaque to the cache.
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}

type noopHooks struct{}

func (noopHooks) OnHit(context.Context, string)                             {}
func (noopHooks) OnMiss(context.Context, string)                            {}
func (noopHooks) OnStale(context.Context, string)                           {}
func (noopHooks) OnConstruct(context.Context, string, time.Duration, error) {}
