package cache

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"weak"

	"golang.org/x/sync/singleflight"
)

// ResourceCache maps keys to lazily built resources it does not own.
//
// Each entry holds a weak pointer. A lookup upgrades it to a strong pointer
// when the resource is still referenced elsewhere; otherwise the stale entry
// is dropped and the resource is built again.
//
// Contract:
// - Concurrency: safe for concurrent use. Constructions for the same key are
// serialized and shared; different keys construct in parallel. Forget
// detaches a running construction, so a new one may start beside it.
// - Context: ctx is passed to the factory; callers joining an in-flight
// construction share the context of the caller that started it.
// - Errors: factory errors are returned unmodified and never cached.
// - Ownership: the cache never keeps a resource alive.
type ResourceCache[V any] struct {
	mu       sync.Mutex
	entries  map[string]weak.Pointer[V]
	building map[string]*build

	factory   Factory[V]
	hooks     Hooks
	autoPrune bool
	flights   singleflight.Group

	hits            atomic.Int64
	misses          atomic.Int64
	constructions   atomic.Int64
	constructErrors atomic.Int64
	staleEvictions  atomic.Int64
}

// New creates a ResourceCache that builds missing resources with factory.
func New[V any](factory Factory[V], opts ...Option) (*ResourceCache[V], error) {
	if factory == nil {
		return nil, ErrNilFactory
	}

	o := options{hooks: noopHooks{}}
	for _, opt := range opts {
		opt(&o)
	}

	return &ResourceCache[V]{
		entries:   make(map[string]weak.Pointer[V]),
		building:  make(map[string]*build),
		factory:   factory,
		hooks:     o.hooks,
		autoPrune: o.autoPrune,
	}, nil
}

// Get returns the resource for key, building it if no live instance exists.
// The returned pointer keeps the resource alive for as long as the caller
// retains it.
func (c *ResourceCache[V]) Get(ctx context.Context, key string) (*V, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	v, stale := c.lookup(key)
	if stale {
		c.hooks.OnStale(ctx, key)
	}
	if v != nil {
		c.recordHit(ctx, key)
		return v, nil
	}
	return c.load(ctx, key)
}

// flightResult is shared by every caller joining one flight. found is set
// when the flight saw a live resource registered after the callers' own
// lookups, in which case they all count as hits.
type flightResult[V any] struct {
	v     *V
	found bool
}

// load resolves a missed lookup through the per-key flight.
func (c *ResourceCache[V]) load(ctx context.Context, key string) (*V, error) {
	res, err, _ := c.flights.Do(key, func() (any, error) {
		// A flight that finished after our lookup may have registered a
		// resource that is still held by its callers.
		live, stale := c.lookup(key)
		if stale {
			c.hooks.OnStale(ctx, key)
		}
		if live != nil {
			return flightResult[V]{v: live, found: true}, nil
		}
		v, err := c.construct(ctx, key)
		if err != nil {
			return nil, err
		}
		return flightResult[V]{v: v}, nil
	})
	if err != nil {
		c.recordMiss(ctx, key)
		return nil, err
	}

	r := res.(flightResult[V])
	if r.found {
		c.recordHit(ctx, key)
	} else {
		c.recordMiss(ctx, key)
	}
	return r.v, nil
}

func (c *ResourceCache[V]) recordHit(ctx context.Context, key string) {
	c.hits.Add(1)
	c.hooks.OnHit(ctx, key)
}

func (c *ResourceCache[V]) recordMiss(ctx context.Context, key string) {
	c.misses.Add(1)
	c.hooks.OnMiss(ctx, key)
}

// Peek returns the live resource for key without ever building one.
func (c *ResourceCache[V]) Peek(key string) (*V, bool) {
	v, stale := c.lookup(key)
	if stale {
		c.hooks.OnStale(context.Background(), key)
	}
	return v, v != nil
}

// Contains reports whether key currently maps to a live resource.
func (c *ResourceCache[V]) Contains(key string) bool {
	_, ok := c.Peek(key)
	return ok
}

// Forget drops the entry for key. Holders of the current instance keep it;
// the next Get builds a new one, even if a construction for key is still
// running. That construction returns its resource to the callers already
// waiting on it but does not register it. Idempotent.
func (c *ResourceCache[V]) Forget(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	if b := c.building[key]; b != nil {
		b.forgotten = true
	}
	c.mu.Unlock()

	c.flights.Forget(key)
}

// Prune removes every stale entry and returns how many were removed.
func (c *ResourceCache[V]) Prune() int {
	c.mu.Lock()
	var removed []string
	for key, wp := range c.entries {
		if wp.Value() == nil {
			delete(c.entries, key)
			removed = append(removed, key)
		}
	}
	c.mu.Unlock()

	ctx := context.Background()
	for _, key := range removed {
		c.staleEvictions.Add(1)
		c.hooks.OnStale(ctx, key)
	}
	return len(removed)
}

// Len returns the number of entries, live or not yet swept.
func (c *ResourceCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *ResourceCache[V]) Stats() Stats {
	return Stats{
		Hits:            c.hits.Load(),
		Misses:          c.misses.Load(),
		Constructions:   c.constructions.Load(),
		ConstructErrors: c.constructErrors.Load(),
		StaleEvictions:  c.staleEvictions.Load(),
		Entries:         c.Len(),
	}
}

// lookup upgrades the entry for key. A stale entry is removed and reported.
func (c *ResourceCache[V]) lookup(key string) (v *V, stale bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	wp, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if live := wp.Value(); live != nil {
		return live, false
	}

	delete(c.entries, key)
	c.staleEvictions.Add(1)
	return nil, true
}

// build tracks one running construction so Forget can invalidate it.
type build struct {
	forgotten bool
}

func (c *ResourceCache[V]) construct(ctx context.Context, key string) (*V, error) {
	b := &build{}
	c.mu.Lock()
	c.building[key] = b
	c.mu.Unlock()

	start := time.Now()
	v, err := c.factory(ctx, key)
	if err == nil && v == nil {
		err = ErrNilResource
	}
	c.hooks.OnConstruct(ctx, key, time.Since(start), err)

	var wp weak.Pointer[V]
	if err == nil {
		wp = weak.Make(v)
	}

	c.mu.Lock()
	if c.building[key] == b {
		delete(c.building, key)
	}
	register := err == nil && !b.forgotten
	if register {
		c.entries[key] = wp
	}
	c.mu.Unlock()

	if err != nil {
		c.constructErrors.Add(1)
		return nil, err
	}
	c.constructions.Add(1)

	if register && c.autoPrune {
		runtime.AddCleanup(v, c.evict, staleEntry[V]{key: key, ptr: wp})
	}
	return v, nil
}

type staleEntry[V any] struct {
	key string
	ptr weak.Pointer[V]
}

// evict runs after a resource has been collected. The entry is only removed
// if it still refers to that resource.
func (c *ResourceCache[V]) evict(e staleEntry[V]) {
	c.mu.Lock()
	current, ok := c.entries[e.key]
	if !ok || current != e.ptr {
		c.mu.Unlock()
		return
	}
	delete(c.entries, e.key)
	c.mu.Unlock()

	c.staleEvictions.Add(1)
	c.hooks.OnStale(context.Background(), e.key)
}
