// pkg/mmapcache/stats.go
// Cheap running counters for the three lookup outcomes, evictions, and
// faults, plus a debug-level structured log dump of them.

package mmapcache

// Stats is a snapshot of a Cache's running counters.
type Stats struct {
	ContextHits uint64 // tryContext fast-path hits
	ListHits    uint64 // findMmap medium-path hits
	Misses      uint64 // addMmap slow-path calls
	Evictions   uint64 // unused windows freed to satisfy ENOMEM
	Faults      uint64 // windows invalidated due to SIGBUS
	Windows     int    // windows currently allocated
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache) Stats() Stats {
	return Stats{
		ContextHits: c.statHit,
		ListHits:    c.statList,
		Misses:      c.statMiss,
		Evictions:   c.statEvict,
		Faults:      c.statFaults,
		Windows:     c.nWindows,
	}
}

// StatsLogDebug emits the current Stats at debug level through the
// cache's configured logger.
func (c *Cache) StatsLogDebug() {
	s := c.Stats()
	c.logger.Debug("mmap cache statistics",
		"context_hits", s.ContextHits,
		"list_hits", s.ListHits,
		"misses", s.Misses,
		"evictions", s.Evictions,
		"faults", s.Faults,
		"windows", s.Windows,
	)
}
