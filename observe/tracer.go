package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CacheMeta identifies a cache in telemetry.
type CacheMeta struct {
	Namespace string // Grouping such as "assets" (may be empty)
	Name      string // Cache name (required)
}

// Validate reports whether the metadata can label telemetry.
func (m CacheMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingCacheName
	}
	return nil
}

// CacheID returns namespace.name, or just name without a namespace.
func (m CacheMeta) CacheID() string {
	if m.Namespace != "" {
		return m.Namespace + "." + m.Name
	}
	return m.Name
}

// SpanName returns the span name used for constructions.
// Format: cache.construct.<namespace>.<name> or cache.construct.<name>
func (m CacheMeta) SpanName() string {
	return "cache.construct." + m.CacheID()
}

func (m CacheMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("cache.id", m.CacheID()),
		attribute.String("cache.name", m.Name),
	}
	if m.Namespace != "" {
		attrs = append(attrs, attribute.String("cache.namespace", m.Namespace))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing around resource construction.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span for building the resource behind key.
	StartSpan(ctx context.Context, meta CacheMeta, key string) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta CacheMeta, key string) (context.Context, trace.Span) {
	attrs := append(meta.attributes(),
		attribute.String("cache.key", key),
		attribute.Bool("cache.error", false), // updated in EndSpan
	)

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("cache.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CacheMeta, _ string) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ error) {
	span.End()
}
