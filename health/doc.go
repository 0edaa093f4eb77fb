// Package health reports the health of resource caches and the stores
// behind them.
//
// A Checker returns a Result with a Status of Healthy, Degraded or
// Unhealthy. The package ships checkers for cache construction failures
// (CacheChecker), circuit breakers guarding factories (BreakerChecker),
// directories backing file loaders (DirChecker) and the Go heap
// (HeapChecker). An Aggregator runs a set of checkers in parallel, and the
// HTTP handlers expose the aggregate for probes.
//
// # Usage
//
//	agg := health.NewAggregator()
//	agg.Register("textures", health.NewCacheChecker(textures, health.CacheCheckerConfig{}))
//	agg.Register("assets", health.NewDirChecker(cfg.Root))
//	agg.Register("store", health.NewBreakerChecker(breaker))
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
package health
