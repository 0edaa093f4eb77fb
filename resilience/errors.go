package resilience

import "errors"

var (
	// ErrCircuitOpen is returned when the circuit breaker rejects an attempt.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrBulkheadFull is returned when no construction slot became free in time.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrTimeout is returned when an attempt exceeds its deadline.
	ErrTimeout = errors.New("resilience: construction timed out")
)
