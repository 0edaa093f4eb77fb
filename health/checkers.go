package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/jonwraymond/rescache/cache"
	"github.com/jonwraymond/rescache/resilience"
)

// StatsSource is anything that reports cache counters, such as
// *cache.ResourceCache.
type StatsSource interface {
	Stats() cache.Stats
}

// CacheCheckerConfig configures a CacheChecker.
type CacheCheckerConfig struct {
	// WarnErrorRatio is the construction error ratio that reports degraded.
	// Default: 0.1
	WarnErrorRatio float64

	// FailErrorRatio is the construction error ratio that reports unhealthy.
	// Default: 0.5
	FailErrorRatio float64

	// MinAttempts is the number of constructions needed before ratios apply.
	// Default: 10
	MinAttempts int64
}

// CacheChecker reports how often a cache's factory fails.
type CacheChecker struct {
	src    StatsSource
	config CacheCheckerConfig
}

// NewCacheChecker creates a CacheChecker for src.
func NewCacheChecker(src StatsSource, config CacheCheckerConfig) *CacheChecker {
	if config.WarnErrorRatio <= 0 {
		config.WarnErrorRatio = 0.1
	}
	if config.FailErrorRatio <= 0 {
		config.FailErrorRatio = 0.5
	}
	config.FailErrorRatio = max(config.FailErrorRatio, config.WarnErrorRatio)
	if config.MinAttempts <= 0 {
		config.MinAttempts = 10
	}
	return &CacheChecker{src: src, config: config}
}

// Check compares the construction error ratio against the thresholds.
func (c *CacheChecker) Check(ctx context.Context) Result {
	s := c.src.Stats()
	attempts := s.Constructions + s.ConstructErrors

	details := map[string]any{
		"hits":             s.Hits,
		"misses":           s.Misses,
		"hit_ratio":        s.HitRatio(),
		"constructions":    s.Constructions,
		"construct_errors": s.ConstructErrors,
		"stale_evictions":  s.StaleEvictions,
		"entries":          s.Entries,
	}
	if attempts < c.config.MinAttempts {
		return Healthy("not enough constructions to judge").WithDetails(details)
	}

	ratio := float64(s.ConstructErrors) / float64(attempts)
	details["error_ratio"] = ratio
	msg := fmt.Sprintf("%.1f%% of constructions failed", ratio*100)

	switch {
	case ratio >= c.config.FailErrorRatio:
		return Unhealthy(msg, ErrCheckFailed).WithDetails(details)
	case ratio >= c.config.WarnErrorRatio:
		return Degraded(msg).WithDetails(details)
	default:
		return Healthy(msg).WithDetails(details)
	}
}

// BreakerChecker reports the state of a circuit breaker guarding a factory.
type BreakerChecker struct {
	cb *resilience.CircuitBreaker
}

// NewBreakerChecker creates a BreakerChecker for cb.
func NewBreakerChecker(cb *resilience.CircuitBreaker) *BreakerChecker {
	return &BreakerChecker{cb: cb}
}

// Check maps closed to healthy, half-open to degraded and open to unhealthy.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	m := c.cb.Metrics()
	details := map[string]any{
		"state":    m.State.String(),
		"failures": m.Failures,
		"rejected": m.Rejected,
	}

	switch m.State {
	case resilience.StateOpen:
		return Unhealthy("circuit open", resilience.ErrCircuitOpen).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit probing").WithDetails(details)
	default:
		return Healthy("circuit closed").WithDetails(details)
	}
}

// DirChecker reports whether a directory, such as a loader root, is readable.
type DirChecker struct {
	path string
}

// NewDirChecker creates a DirChecker for path.
func NewDirChecker(path string) *DirChecker {
	return &DirChecker{path: path}
}

// Check opens the directory and reads one entry.
func (c *DirChecker) Check(ctx context.Context) Result {
	details := map[string]any{"path": c.path}

	f, err := os.Open(c.path)
	if err != nil {
		return Unhealthy("directory not accessible", err).WithDetails(details)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Unhealthy("directory not accessible", err).WithDetails(details)
	}
	if !info.IsDir() {
		return Unhealthy("not a directory", ErrCheckFailed).WithDetails(details)
	}
	if _, err := f.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return Unhealthy("directory not readable", err).WithDetails(details)
	}
	return Healthy("directory readable").WithDetails(details)
}

// HeapChecker reports heap usage against a budget. Resources held through
// caches live on the heap until their last holder drops them.
type HeapChecker struct {
	// MaxHeap is the heap budget in bytes. Zero uses the heap obtained from
	// the OS.
	MaxHeap uint64

	// Warn and Fail are fractions of MaxHeap. Defaults: 0.8 and 0.95.
	Warn, Fail float64
}

// Check reads runtime.MemStats and compares HeapAlloc against the budget.
func (c *HeapChecker) Check(ctx context.Context) Result {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	budget := c.MaxHeap
	if budget == 0 {
		budget = ms.HeapSys
	}
	warn, fail := c.Warn, c.Fail
	if warn <= 0 || warn >= 1 {
		warn = 0.8
	}
	if fail <= 0 || fail > 1 {
		fail = 0.95
	}

	ratio := float64(ms.HeapAlloc) / float64(max(budget, 1))
	details := map[string]any{
		"heap_alloc":   ms.HeapAlloc,
		"heap_objects": ms.HeapObjects,
		"heap_budget":  budget,
		"num_gc":       ms.NumGC,
		"usage":        ratio,
	}
	msg := fmt.Sprintf("heap at %.1f%% of budget", ratio*100)

	switch {
	case ratio >= fail:
		return Unhealthy(msg, ErrCheckFailed).WithDetails(details)
	case ratio >= warn:
		return Degraded(msg).WithDetails(details)
	default:
		return Healthy(msg).WithDetails(details)
	}
}
