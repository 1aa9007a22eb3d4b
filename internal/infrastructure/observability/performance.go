package observability

import (
	"sync"
	"time"
)

// PerformanceStats is a snapshot of the aggregate ranking performance
// counters since the last reset.
type PerformanceStats struct {
	Runs                uint64        `json:"runs"`
	BusinessesProcessed uint64        `json:"businesses_processed"`
	TotalTime           time.Duration `json:"total_time_ns"`
	AvgRunTime          time.Duration `json:"avg_run_time_ns"`
	CacheHits           uint64        `json:"cache_hits"`
	CacheMisses         uint64        `json:"cache_misses"`
	CacheHitRate        float64       `json:"cache_hit_rate"`
	RelaxedRuns         uint64        `json:"relaxed_runs"`
	FallbackRuns        uint64        `json:"fallback_runs"`
}

// PerformanceTracker aggregates ranking-run statistics. Mutex-guarded; runs
// record concurrently.
type PerformanceTracker struct {
	mu    sync.Mutex
	stats PerformanceStats
}

// NewPerformanceTracker creates an empty tracker.
func NewPerformanceTracker() *PerformanceTracker {
	return &PerformanceTracker{}
}

// RecordRun records one completed ranking run.
func (t *PerformanceTracker) RecordRun(businesses int, duration time.Duration, cacheHits, cacheMisses uint64, relaxed, fallback bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Runs++
	t.stats.BusinessesProcessed += uint64(businesses)
	t.stats.TotalTime += duration
	t.stats.CacheHits += cacheHits
	t.stats.CacheMisses += cacheMisses
	if relaxed {
		t.stats.RelaxedRuns++
	}
	if fallback {
		t.stats.FallbackRuns++
	}
}

// Stats returns a consistent snapshot with derived averages filled in.
func (t *PerformanceTracker) Stats() PerformanceStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stats
	if s.Runs > 0 {
		s.AvgRunTime = s.TotalTime / time.Duration(s.Runs)
	}
	if total := s.CacheHits + s.CacheMisses; total > 0 {
		s.CacheHitRate = float64(s.CacheHits) / float64(total)
	}
	return s
}

// Reset zeroes all counters.
func (t *PerformanceTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = PerformanceStats{}
}
