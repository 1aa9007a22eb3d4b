package cache

import (
	"time"

	"github.com/winkslabs/dining-discovery/backend/internal/domain/entities"
)

// Config bounds each ranking cache. Zero values fall back to the defaults.
type Config struct {
	AttributeTTL     time.Duration
	AttributeEntries int
	ScoreTTL         time.Duration
	ScoreEntries     int
	BatchTTL         time.Duration
	BatchEntries     int
}

// Default cache bounds.
const (
	DefaultAttributeTTL     = 30 * time.Minute
	DefaultAttributeEntries = 500
	DefaultScoreTTL         = 10 * time.Minute
	DefaultScoreEntries     = 2000
	DefaultBatchTTL         = 5 * time.Minute
	DefaultBatchEntries     = 100
)

func (c Config) withDefaults() Config {
	if c.AttributeTTL <= 0 {
		c.AttributeTTL = DefaultAttributeTTL
	}
	if c.AttributeEntries <= 0 {
		c.AttributeEntries = DefaultAttributeEntries
	}
	if c.ScoreTTL <= 0 {
		c.ScoreTTL = DefaultScoreTTL
	}
	if c.ScoreEntries <= 0 {
		c.ScoreEntries = DefaultScoreEntries
	}
	if c.BatchTTL <= 0 {
		c.BatchTTL = DefaultBatchTTL
	}
	if c.BatchEntries <= 0 {
		c.BatchEntries = DefaultBatchEntries
	}
	return c
}

// RankingCaches bundles the three ranking caches. Explicitly constructed and
// injected into the orchestrator; lifecycle belongs to the caller, so tests
// and sessions never share hidden state.
type RankingCaches struct {
	Attributes *Memory[*entities.BusinessAttributes]
	Scores     *Memory[*entities.RelevanceScore]
	Batches    *Memory[*entities.RankedPage]
}

// NewRankingCaches creates the three caches from cfg.
func NewRankingCaches(cfg Config) *RankingCaches {
	cfg = cfg.withDefaults()
	return &RankingCaches{
		Attributes: NewMemory[*entities.BusinessAttributes](cfg.AttributeEntries, cfg.AttributeTTL),
		Scores:     NewMemory[*entities.RelevanceScore](cfg.ScoreEntries, cfg.ScoreTTL),
		Batches:    NewMemory[*entities.RankedPage](cfg.BatchEntries, cfg.BatchTTL),
	}
}

// ScoreKey builds the relevance-score cache key from a business id and a
// preferences fingerprint. A stale fingerprint naturally misses, so preference
// changes need no active invalidation.
func ScoreKey(businessID, fingerprint string) string {
	return businessID + ":" + fingerprint
}

// StatsByCache returns per-cache stats keyed by cache name.
func (r *RankingCaches) StatsByCache() map[string]Stats {
	return map[string]Stats{
		"attributes": r.Attributes.Stats(),
		"scores":     r.Scores.Stats(),
		"batches":    r.Batches.Stats(),
	}
}

// Clear purges all three caches.
func (r *RankingCaches) Clear() {
	r.Attributes.Purge()
	r.Scores.Purge()
	r.Batches.Purge()
}
