// Package resilience guards resource factories against a failing backing
// store.
//
// A Guard composes up to four patterns around every construction attempt:
//
//   - Bulkhead: bounds how many constructions run at once across all keys.
//   - Circuit breaker: stops calling the factory after repeated failures and
//     probes again once the reset timeout elapses.
//   - Retry: re-runs a failed attempt with backoff.
//   - Timeout: gives each attempt its own deadline.
//
// Errors produced by the factory itself reach the caller unmodified, so
// errors.Is and pointer comparisons keep working through a Guard. Only the
// guard's own refusals (ErrBulkheadFull, ErrCircuitOpen, ErrTimeout) are new.
//
// # Usage
//
//	g := resilience.NewGuard(
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 4})),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
//	        MaxAttempts: 3,
//	        RetryIf:     func(err error) bool { return !errors.Is(err, loader.ErrNotFound) },
//	    })),
//	    resilience.WithTimeout(2*time.Second),
//	)
//
//	files, _ := loader.FileFactory(cfg)
//	textures, _ := cache.New(resilience.Protect(g, files))
package resilience
