package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	c := NewMemory[string](10, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
	assert.Equal(t, 1, c.Len())
}

func TestMemory_TTLExpiry(t *testing.T) {
	c := NewMemory[int](10, 20*time.Millisecond)
	c.Set("k", 1)

	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestMemory_LRUEviction(t *testing.T) {
	c := NewMemory[int](3, time.Minute)
	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	assert.Equal(t, 3, c.Len())
	_, ok := c.Get("k0")
	assert.False(t, ok)
	_, ok = c.Get("k3")
	assert.True(t, ok)
}

func TestMemory_Stats(t *testing.T) {
	c := NewMemory[int](10, time.Minute)
	c.Set("k", 1)

	c.Get("k")
	c.Get("k")
	c.Get("nope")

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 1e-9)

	c.ResetCounters()
	stats = c.Stats()
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)
	// Entries survive a counter reset.
	assert.Equal(t, 1, stats.Entries)
}

func TestMemory_Purge(t *testing.T) {
	c := NewMemory[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestScoreKey(t *testing.T) {
	assert.Equal(t, "biz-1:abcd", ScoreKey("biz-1", "abcd"))
}

func TestRankingCaches_StatsAndClear(t *testing.T) {
	caches := NewRankingCaches(Config{})
	caches.Scores.Set("k", nil)

	stats := caches.StatsByCache()
	require.Contains(t, stats, "attributes")
	require.Contains(t, stats, "scores")
	require.Contains(t, stats, "batches")
	assert.Equal(t, 1, stats["scores"].Entries)

	caches.Clear()
	assert.Equal(t, 0, caches.Scores.Len())
}
