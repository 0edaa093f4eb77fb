// Package observe provides observability primitives for resource caches.
//
// It is a pure instrumentation library: it never builds resources itself and
// does no I/O beyond exporter setup. Consumers attach CacheHooks to a
// cache.ResourceCache and wrap its factory with WrapFactory, or use
// Instrument to do both at once.
package observe
