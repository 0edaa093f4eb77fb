package observe

import (
	"context"
	"io"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// BenchmarkLogger_Info measures logging throughput.
func BenchmarkLogger_Info(b *testing.B) {
	logger := NewLoggerWithWriter("info", io.Discard)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info(ctx, "benchmark message", Field{Key: "iteration", Value: i})
	}
}

// BenchmarkLogger_LevelFiltering measures the cost of filtered entries.
func BenchmarkLogger_LevelFiltering(b *testing.B) {
	logger := NewLoggerWithWriter("error", io.Discard)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug(ctx, "filtered debug")
	}
}

// BenchmarkLogger_WithCache measures creating cache-scoped loggers.
func BenchmarkLogger_WithCache(b *testing.B) {
	logger := NewLoggerWithWriter("info", io.Discard)
	meta := CacheMeta{Namespace: "assets", Name: "textures"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = logger.WithCache(meta)
	}
}

// BenchmarkMetrics_RecordLookup measures the hit path instrumentation.
func BenchmarkMetrics_RecordLookup(b *testing.B) {
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	m, _ := newMetrics(mp.Meter("bench"))
	ctx := context.Background()
	meta := CacheMeta{Name: "textures"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.RecordLookup(ctx, meta, true)
	}
}

// BenchmarkWrapFactory measures the overhead of a traced construction.
func BenchmarkWrapFactory(b *testing.B) {
	tp := sdktrace.NewTracerProvider()
	mw := NewMiddleware(newTracer(tp.Tracer("bench")), NewLoggerWithWriter("error", io.Discard))
	f := WrapFactory(mw, CacheMeta{Name: "bench"}, func(context.Context, string) (*model, error) {
		return &model{}, nil
	})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = f(ctx, "key")
	}
}

// BenchmarkCacheHooks_OnConstruct measures the construction hook.
func BenchmarkCacheHooks_OnConstruct(b *testing.B) {
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	m, _ := newMetrics(mp.Meter("bench"))
	h := NewCacheHooks(CacheMeta{Name: "bench"}, m, nil)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.OnConstruct(ctx, "key", time.Millisecond, nil)
	}
}
