package cache

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits            int64
	Misses          int64
	Constructions   int64
	ConstructErrors int64
	StaleEvictions  int64

	// Entries is the number of keys in the map, including stale entries
	// that have not been swept yet.
	Entries int
}

// HitRatio returns Hits / (Hits + Misses), or 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
