// Package cache provides the process-local, bounded TTL caches used by the
// ranking engine: attributes by business id, relevance scores by business id
// plus preference fingerprint, and whole batch results by candidate-set
// fingerprint.
package cache

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Stats is a point-in-time snapshot of one cache's counters.
type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Entries int     `json:"entries"`
	HitRate float64 `json:"hit_rate"`
}

// Memory is a bounded, TTL-expiring, LRU-evicting in-memory cache with
// hit/miss counters. Safe for concurrent use.
type Memory[V any] struct {
	lru    *expirable.LRU[string, V]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewMemory creates a cache holding at most maxEntries values, each expiring
// ttl after insertion.
func NewMemory[V any](maxEntries int, ttl time.Duration) *Memory[V] {
	return &Memory[V]{
		lru: expirable.NewLRU[string, V](maxEntries, nil, ttl),
	}
}

// Get returns the cached value for key, counting a hit or a miss.
func (c *Memory[V]) Get(key string) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set stores value under key, evicting the least recently used entry when the
// cache is full.
func (c *Memory[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

// Delete removes key from the cache.
func (c *Memory[V]) Delete(key string) {
	c.lru.Remove(key)
}

// Purge drops all entries. Counters are preserved.
func (c *Memory[V]) Purge() {
	c.lru.Purge()
}

// Len returns the current number of live entries.
func (c *Memory[V]) Len() int {
	return c.lru.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *Memory[V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	s := Stats{
		Hits:    hits,
		Misses:  misses,
		Entries: c.lru.Len(),
	}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s
}

// ResetCounters zeroes the hit/miss counters without touching entries.
func (c *Memory[V]) ResetCounters() {
	c.hits.Store(0)
	c.misses.Store(0)
}
