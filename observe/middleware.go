package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/rescache/cache"
)

// Middleware wraps resource factories with tracing and logging.
//
// Contract:
//   - Concurrency: wrapped factories are as safe as the factories they wrap.
//   - Context: the factory receives a context carrying the construction span.
//   - Errors: factory errors are recorded and returned unchanged.
//   - Ownership: resources pass through untouched and are never retained.
type Middleware struct {
	tracer Tracer
	logger Logger
}

// NewMiddleware creates a new Middleware with the given components.
// Nil components are replaced with no-ops.
func NewMiddleware(tracer Tracer, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	return &Middleware{
		tracer: tracer,
		logger: logger,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return NewMiddleware(newTracer(obs.Tracer()), obs.Logger()), nil
}

// WrapFactory returns a factory that runs f inside a construction span and
// logs the outcome. A nil f yields a nil factory.
func WrapFactory[V any](m *Middleware, meta CacheMeta, f cache.Factory[V]) cache.Factory[V] {
	if f == nil {
		return nil
	}
	logger := m.logger.WithCache(meta)

	return func(ctx context.Context, key string) (*V, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta, key)
		start := time.Now()

		v, err := f(ctx, key)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)

		fields := []Field{
			{Key: "cache.key", Value: key},
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			logger.Error(ctx, "resource construction failed", fields...)
		} else {
			logger.Info(ctx, "resource constructed", fields...)
		}

		return v, err
	}
}
