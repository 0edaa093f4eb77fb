package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Lookup outcomes recorded on cache.lookups.
const (
	OutcomeHit  = "hit"
	OutcomeMiss = "miss"
)

// Metrics records cache activity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordLookup records a Get that found (hit) or did not find a live resource.
	RecordLookup(ctx context.Context, meta CacheMeta, hit bool)

	// RecordStale records the removal of an entry whose resource was collected.
	RecordStale(ctx context.Context, meta CacheMeta)

	// RecordConstruct records one factory invocation.
	RecordConstruct(ctx context.Context, meta CacheMeta, duration time.Duration, err error)
}

type metricsImpl struct {
	lookups        metric.Int64Counter
	stale          metric.Int64Counter
	constructTotal metric.Int64Counter
	constructErrs  metric.Int64Counter
	constructHist  metric.Float64Histogram
}

// NewMetrics creates Metrics backed by meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m, err := newMetrics(meter)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	lookups, err := meter.Int64Counter(
		"cache.lookups",
		metric.WithDescription("Cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	stale, err := meter.Int64Counter(
		"cache.stale.evictions",
		metric.WithDescription("Entries removed after their resource was collected"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	constructTotal, err := meter.Int64Counter(
		"cache.construct.total",
		metric.WithDescription("Total number of resource constructions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	constructErrs, err := meter.Int64Counter(
		"cache.construct.errors",
		metric.WithDescription("Total number of failed resource constructions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	constructHist, err := meter.Float64Histogram(
		"cache.construct.duration_ms",
		metric.WithDescription("Resource construction duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		lookups:        lookups,
		stale:          stale,
		constructTotal: constructTotal,
		constructErrs:  constructErrs,
		constructHist:  constructHist,
	}, nil
}

func (m *metricsImpl) RecordLookup(ctx context.Context, meta CacheMeta, hit bool) {
	outcome := OutcomeMiss
	if hit {
		outcome = OutcomeHit
	}
	attrs := append(meta.attributes(), attribute.String("cache.outcome", outcome))
	m.lookups.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metricsImpl) RecordStale(ctx context.Context, meta CacheMeta) {
	m.stale.Add(ctx, 1, metric.WithAttributes(meta.attributes()...))
}

func (m *metricsImpl) RecordConstruct(ctx context.Context, meta CacheMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.constructTotal.Add(ctx, 1, opt)
	if err != nil {
		m.constructErrs.Add(ctx, 1, opt)
	}
	m.constructHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

type noopMetrics struct{}

func (noopMetrics) RecordLookup(context.Context, CacheMeta, bool)                    {}
func (noopMetrics) RecordStale(context.Context, CacheMeta)                           {}
func (noopMetrics) RecordConstruct(context.Context, CacheMeta, time.Duration, error) {}
