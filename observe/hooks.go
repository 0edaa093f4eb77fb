package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/rescache/cache"
)

// CacheHooks records cache activity as metrics and debug logs.
// It implements cache.Hooks.
type CacheHooks struct {
	meta    CacheMeta
	metrics Metrics
	logger  Logger
}

// NewCacheHooks creates hooks labeled with meta. Nil components are
// replaced with no-ops.
func NewCacheHooks(meta CacheMeta, metrics Metrics, logger Logger) *CacheHooks {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	return &CacheHooks{
		meta:    meta,
		metrics: metrics,
		logger:  logger.WithCache(meta),
	}
}

func (h *CacheHooks) OnHit(ctx context.Context, key string) {
	h.metrics.RecordLookup(ctx, h.meta, true)
	h.logger.Debug(ctx, "cache hit", Field{Key: "cache.key", Value: key})
}

func (h *CacheHooks) OnMiss(ctx context.Context, key string) {
	h.metrics.RecordLookup(ctx, h.meta, false)
	h.logger.Debug(ctx, "cache miss", Field{Key: "cache.key", Value: key})
}

func (h *CacheHooks) OnStale(ctx context.Context, key string) {
	h.metrics.RecordStale(ctx, h.meta)
	h.logger.Debug(ctx, "stale entry evicted", Field{Key: "cache.key", Value: key})
}

func (h *CacheHooks) OnConstruct(ctx context.Context, _ string, duration time.Duration, err error) {
	h.metrics.RecordConstruct(ctx, h.meta, duration, err)
}

// Instrument wires obs into a cache. The returned factory is traced and
// logged by a Middleware; the returned option attaches CacheHooks that
// record lookup and construction metrics.
//
//	f, hooks, err := observe.Instrument(obs, observe.CacheMeta{Name: "textures"}, load)
//	c, err := cache.New(f, hooks)
func Instrument[V any](obs Observer, meta CacheMeta, f cache.Factory[V]) (cache.Factory[V], cache.Option, error) {
	if obs == nil {
		return nil, nil, ErrNilObserver
	}
	if err := meta.Validate(); err != nil {
		return nil, nil, err
	}

	mw, err := MiddlewareFromObserver(obs)
	if err != nil {
		return nil, nil, err
	}
	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, nil, err
	}

	hooks := NewCacheHooks(meta, metrics, obs.Logger())
	return WrapFactory(mw, meta, f), cache.WithHooks(hooks), nil
}

var _ cache.Hooks = (*CacheHooks)(nil)
