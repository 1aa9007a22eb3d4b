package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"

	"github.com/winkslabs/dining-discovery/backend/internal/application/loaders"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/entities"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/providers"
	"github.com/winkslabs/dining-discovery/backend/internal/infrastructure/cache"
	"github.com/winkslabs/dining-discovery/backend/internal/infrastructure/observability"
)

// Orchestration defaults.
const (
	DefaultBatchSize            = 20
	DefaultMaxConcurrentBatches = 5
)

// RankingConfig bounds the batch orchestration.
type RankingConfig struct {
	BatchSize            int
	MaxConcurrentBatches int64
}

func (c RankingConfig) withDefaults() RankingConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MaxConcurrentBatches <= 0 {
		c.MaxConcurrentBatches = DefaultMaxConcurrentBatches
	}
	return c
}

// RankMetrics describes one ranking run.
type RankMetrics struct {
	TotalTime           time.Duration `json:"total_time_ns"`
	BusinessesProcessed int           `json:"businesses_processed"`
	CacheHits           uint64        `json:"cache_hits"`
	CacheMisses         uint64        `json:"cache_misses"`
	CacheHitRate        float64       `json:"cache_hit_rate"`
	AttributesInferred  int           `json:"attributes_inferred"`
	Batches             int           `json:"batches"`
	FromBatchCache      bool          `json:"from_batch_cache"`
}

// RankResult is the primary output of the ranking engine.
type RankResult struct {
	Ranked   []*entities.BusinessWithScore `json:"ranked"`
	Relaxed  bool                          `json:"relaxed"`
	Fallback bool                          `json:"fallback"`
	Metrics  RankMetrics                   `json:"metrics"`
}

// RankingService orchestrates attribute resolution, scoring, must-have
// filtering and sorting over a candidate set. Scoring itself is pure; all
// concurrency lives here, bounded by batch size and a batch semaphore.
type RankingService struct {
	scoring   *ScoringService
	inference *InferenceService
	store     providers.AttributeStore
	loader    *loaders.AttributeLoader
	caches    *cache.RankingCaches
	tracker   *observability.PerformanceTracker
	metrics   *observability.Metrics
	cfg       RankingConfig
}

// NewRankingService wires the orchestrator. store and metrics may be nil:
// without a store every attribute is inferred locally, and without metrics
// only the performance tracker records.
func NewRankingService(
	scoring *ScoringService,
	inference *InferenceService,
	attributeStore providers.AttributeStore,
	caches *cache.RankingCaches,
	tracker *observability.PerformanceTracker,
	metrics *observability.Metrics,
	cfg RankingConfig,
) *RankingService {
	var loader *loaders.AttributeLoader
	if attributeStore != nil {
		loader = loaders.NewAttributeLoader(attributeStore)
	}
	return &RankingService{
		scoring:   scoring,
		inference: inference,
		store:     attributeStore,
		loader:    loader,
		caches:    caches,
		tracker:   tracker,
		metrics:   metrics,
		cfg:       cfg.withDefaults(),
	}
}

// Rank scores and orders the candidate set against the user's preferences.
// Ranking never fails outright: missing data scores neutrally and store
// failures degrade to local inference.
func (s *RankingService) Rank(ctx context.Context, candidates []*entities.Business, prefs *entities.DiningPreferences, userLocation *entities.Location) (*RankResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := observability.LoggerFromContext(ctx)

	ctx, span := observability.StartSpan(ctx, "ranking.rank")
	defer span.End()
	span.SetAttributes(
		attribute.String("ranking.run_id", runID),
		attribute.Int("ranking.candidates", len(candidates)),
	)

	if prefs == nil {
		prefs = entities.DefaultPreferences()
	}

	if len(candidates) == 0 {
		return &RankResult{Ranked: []*entities.BusinessWithScore{}, Metrics: RankMetrics{TotalTime: time.Since(start)}}, nil
	}

	run := &rankRun{prefs: prefs, userLocation: userLocation}

	// Users with no stated preferences skip the relevance engine entirely.
	if !prefs.HasPreferencesSet() {
		scored := s.resolveAttributes(ctx, candidates, run)
		fallbackSort(scored)
		result := s.finish(ctx, scored, run, false, true, start)
		logger.Info().
			Str("run_id", runID).
			Int("businesses", len(candidates)).
			Dur("took", result.Metrics.TotalTime).
			Msg("ranked by rating fallback")
		return result, nil
	}

	fingerprint := prefs.Fingerprint()
	batchKey := batchCacheKey(candidates, fingerprint)
	if page, ok := s.caches.Batches.Get(batchKey); ok {
		run.cacheHits.Add(1)
		s.recordCache(ctx, "batches", true)
		result := s.finish(ctx, page.Ranked, run, page.Relaxed, false, start)
		result.Metrics.FromBatchCache = true
		return result, nil
	}
	run.cacheMisses.Add(1)
	s.recordCache(ctx, "batches", false)

	withAttrs := s.resolveAttributes(ctx, candidates, run)
	s.scoreAll(ctx, withAttrs, prefs, fingerprint, run)

	relaxed := false
	survivors := FilterByMustHaves(withAttrs, prefs)
	if len(survivors) == 0 && prefs.HasMustHaves() {
		// One relaxation pass only: must-haves downgrade to high importance
		// and every candidate is re-scored under the relaxed fingerprint.
		relaxed = true
		relaxedPrefs := prefs.Relaxed()
		relaxedFingerprint := relaxedPrefs.Fingerprint()
		s.scoreAll(ctx, withAttrs, relaxedPrefs, relaxedFingerprint, run)
		survivors = FilterByMustHaves(withAttrs, relaxedPrefs)
		logger.Info().
			Str("run_id", runID).
			Msg("must-have filter emptied candidate set, relaxed to high importance")
	}
	if len(survivors) == 0 {
		survivors = withAttrs
	}

	sortRanked(survivors)
	s.caches.Batches.Set(batchKey, &entities.RankedPage{Ranked: survivors, Relaxed: relaxed})

	result := s.finish(ctx, survivors, run, relaxed, false, start)
	logger.Info().
		Str("run_id", runID).
		Int("businesses", len(candidates)).
		Int("ranked", len(survivors)).
		Bool("relaxed", relaxed).
		Float64("cache_hit_rate", result.Metrics.CacheHitRate).
		Dur("took", result.Metrics.TotalTime).
		Msg("ranked businesses")
	return result, nil
}

// rankRun accumulates per-run counters across concurrent batch workers.
type rankRun struct {
	prefs        *entities.DiningPreferences
	userLocation *entities.Location
	cacheHits    atomic.Uint64
	cacheMisses  atomic.Uint64
	inferred     atomic.Int64
	batches      atomic.Int64
}

func (s *RankingService) finish(ctx context.Context, ranked []*entities.BusinessWithScore, run *rankRun, relaxed, fallback bool, start time.Time) *RankResult {
	took := time.Since(start)
	hits := run.cacheHits.Load()
	misses := run.cacheMisses.Load()

	metrics := RankMetrics{
		TotalTime:           took,
		BusinessesProcessed: len(ranked),
		CacheHits:           hits,
		CacheMisses:         misses,
		AttributesInferred:  int(run.inferred.Load()),
		Batches:             int(run.batches.Load()),
	}
	if total := hits + misses; total > 0 {
		metrics.CacheHitRate = float64(hits) / float64(total)
	}

	if s.tracker != nil {
		s.tracker.RecordRun(len(ranked), took, hits, misses, relaxed, fallback)
	}
	if s.metrics != nil {
		observability.RecordRankMetric(ctx, s.metrics, len(ranked), took)
	}

	return &RankResult{Ranked: ranked, Relaxed: relaxed, Fallback: fallback, Metrics: metrics}
}

func (s *RankingService) recordCache(ctx context.Context, name string, hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		observability.RecordCacheHit(ctx, s.metrics, name)
	} else {
		observability.RecordCacheMiss(ctx, s.metrics, name)
	}
}

// resolveAttributes produces attributes for every candidate: local cache
// first, then a batched store read, then parallel inference for the misses.
// Newly inferred attributes are cached immediately and persisted
// fire-and-forget.
func (s *RankingService) resolveAttributes(ctx context.Context, candidates []*entities.Business, run *rankRun) []*entities.BusinessWithScore {
	logger := observability.LoggerFromContext(ctx)
	out := make([]*entities.BusinessWithScore, len(candidates))

	var missing []int
	for i, b := range candidates {
		out[i] = &entities.BusinessWithScore{Business: b}
		if attrs, ok := s.caches.Attributes.Get(b.ID); ok {
			run.cacheHits.Add(1)
			out[i].Attributes = attrs
		} else {
			run.cacheMisses.Add(1)
			missing = append(missing, i)
		}
	}
	s.recordCacheBulk(ctx, "attributes", len(candidates)-len(missing), len(missing))

	// Bulk-check the store for everything the local cache did not have.
	if len(missing) > 0 && s.loader != nil {
		ids := make([]string, len(missing))
		for j, i := range missing {
			ids[j] = candidates[i].ID
		}
		storeStart := time.Now()
		found, errs := s.loader.LoadMany(ctx, ids)
		if s.metrics != nil {
			observability.RecordStoreReadMetric(ctx, s.metrics, "batch_get", time.Since(storeStart))
		}

		still := missing[:0]
		for j, i := range missing {
			var attrs *entities.BusinessAttributes
			if j < len(found) {
				attrs = found[j]
			}
			if attrs == nil {
				if j < len(errs) && errs[j] != nil && errs[j] != providers.ErrAttributesNotFound {
					logger.Warn().Err(errs[j]).Str("business_id", candidates[i].ID).Msg("attribute store read failed, falling back to inference")
				}
				still = append(still, i)
				continue
			}
			out[i].Attributes = attrs
			s.caches.Attributes.Set(candidates[i].ID, attrs)
		}
		missing = still
	}

	// Infer the rest, in parallel within each batch.
	if len(missing) > 0 {
		persistCh := make(chan persistRequest, len(missing))
		var persistWG sync.WaitGroup
		persistWG.Add(1)
		go func() {
			defer persistWG.Done()
			s.drainPersistQueue(persistCh)
		}()

		for batchStart := 0; batchStart < len(missing); batchStart += s.cfg.BatchSize {
			batchEnd := min(batchStart+s.cfg.BatchSize, len(missing))
			var wg sync.WaitGroup
			for _, i := range missing[batchStart:batchEnd] {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					b := candidates[i]
					attrs := s.inference.InferAttributes(b, run.userLocation)
					out[i].Attributes = attrs
					s.caches.Attributes.Set(b.ID, attrs)
					run.inferred.Add(1)
					persistCh <- persistRequest{businessID: b.ID, attrs: attrs}
				}(i)
			}
			wg.Wait()
		}
		close(persistCh)
		persistWG.Wait()
	}

	// Distance is user-relative, so recompute it for this caller regardless
	// of where the attributes came from.
	if run.userLocation != nil {
		for _, ws := range out {
			if ws.Business.Location != nil {
				d := entities.DistanceMilesBetween(*run.userLocation, *ws.Business.Location)
				ws.Attributes.DistanceMiles = &d
			}
		}
	}

	return out
}

type persistRequest struct {
	businessID string
	attrs      *entities.BusinessAttributes
}

// drainPersistQueue writes inferred attributes back to the store. Failures
// are logged and ignored: the attributes are already locally cached and
// usable.
func (s *RankingService) drainPersistQueue(ch <-chan persistRequest) {
	if s.store == nil {
		for range ch {
		}
		return
	}
	logger := observability.GetLogger()
	for req := range ch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.store.Put(ctx, req.businessID, req.attrs); err != nil {
			logger.Warn().Err(err).Str("business_id", req.businessID).Msg("failed to persist inferred attributes")
		}
		cancel()
	}
}

// scoreAll computes relevance scores for every candidate, batch by batch with
// bounded concurrency, consulting the score cache before computing.
func (s *RankingService) scoreAll(ctx context.Context, withAttrs []*entities.BusinessWithScore, prefs *entities.DiningPreferences, fingerprint string, run *rankRun) {
	sem := semaphore.NewWeighted(s.cfg.MaxConcurrentBatches)
	var wg sync.WaitGroup

	for batchStart := 0; batchStart < len(withAttrs); batchStart += s.cfg.BatchSize {
		batchEnd := min(batchStart+s.cfg.BatchSize, len(withAttrs))
		batch := withAttrs[batchStart:batchEnd]
		run.batches.Add(1)

		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled; score the remainder synchronously so the
			// result is still complete.
			s.scoreBatch(batch, prefs, fingerprint, run)
			continue
		}
		wg.Add(1)
		go func(batch []*entities.BusinessWithScore) {
			defer wg.Done()
			defer sem.Release(1)
			s.scoreBatch(batch, prefs, fingerprint, run)
		}(batch)
	}
	wg.Wait()
}

func (s *RankingService) scoreBatch(batch []*entities.BusinessWithScore, prefs *entities.DiningPreferences, fingerprint string, run *rankRun) {
	for _, ws := range batch {
		key := cache.ScoreKey(ws.Business.ID, fingerprint)
		if score, ok := s.caches.Scores.Get(key); ok {
			run.cacheHits.Add(1)
			ws.Score = score
			continue
		}
		run.cacheMisses.Add(1)
		score := s.scoring.CalculateRelevanceScore(ws.Business, ws.Attributes, prefs)
		score.PreferenceFingerprint = fingerprint
		s.caches.Scores.Set(key, score)
		ws.Score = score
	}
}

func (s *RankingService) recordCacheBulk(ctx context.Context, name string, hits, misses int) {
	if s.metrics == nil {
		return
	}
	for i := 0; i < hits; i++ {
		observability.RecordCacheHit(ctx, s.metrics, name)
	}
	for i := 0; i < misses; i++ {
		observability.RecordCacheMiss(ctx, s.metrics, name)
	}
}

// FilterByMustHaves removes businesses failing any must-have preference.
// Unknown price or dietary data passes by default; cuisine is strict.
func FilterByMustHaves(businesses []*entities.BusinessWithScore, prefs *entities.DiningPreferences) []*entities.BusinessWithScore {
	out := make([]*entities.BusinessWithScore, 0, len(businesses))
	for _, ws := range businesses {
		if PassesMustHaves(ws.Attributes, prefs) {
			out = append(out, ws)
		}
	}
	return out
}

// PassesMustHaves checks the three categories that support must-have
// importance: cuisine, price and dietary.
func PassesMustHaves(attrs *entities.BusinessAttributes, prefs *entities.DiningPreferences) bool {
	if prefs.Cuisines.Importance == entities.ImportanceMustHave {
		for _, c := range attrs.CuisineTypes {
			for _, d := range prefs.Cuisines.Disliked {
				if termsMatch(c, d) {
					return false
				}
			}
		}
		if len(prefs.Cuisines.Preferred) > 0 {
			matched := false
			for _, want := range prefs.Cuisines.Preferred {
				for _, c := range attrs.CuisineTypes {
					if termsMatch(c, want) {
						matched = true
						break
					}
				}
				if matched {
					break
				}
			}
			if !matched {
				return false
			}
		}
	}

	if prefs.PriceRange.Importance == entities.ImportanceMustHave && attrs.PriceLevel != nil {
		if *attrs.PriceLevel < prefs.PriceRange.Min || *attrs.PriceLevel > prefs.PriceRange.Max {
			return false
		}
	}

	if prefs.Dietary.Importance == entities.ImportanceMustHave && len(attrs.DietaryOptions) > 0 {
		for _, restriction := range prefs.Dietary.Restrictions {
			met := false
			for _, opt := range attrs.DietaryOptions {
				if termsMatch(opt, restriction) {
					met = true
					break
				}
			}
			if !met {
				return false
			}
		}
	}

	return true
}

// sortRanked applies the deterministic tie-break chain: total score desc,
// then rating desc, then distance asc.
func sortRanked(businesses []*entities.BusinessWithScore) {
	sort.SliceStable(businesses, func(i, j int) bool {
		si, sj := businesses[i], businesses[j]
		if si.Score != nil && sj.Score != nil && si.Score.TotalScore != sj.Score.TotalScore {
			return si.Score.TotalScore > sj.Score.TotalScore
		}
		ri, rj := ratingOrZero(si.Business), ratingOrZero(sj.Business)
		if ri != rj {
			return ri > rj
		}
		return distanceOrMax(si) < distanceOrMax(sj)
	})
}

// fallbackSort orders by rating desc then distance asc, for users with no
// stated preferences.
func fallbackSort(businesses []*entities.BusinessWithScore) {
	sort.SliceStable(businesses, func(i, j int) bool {
		ri, rj := ratingOrZero(businesses[i].Business), ratingOrZero(businesses[j].Business)
		if ri != rj {
			return ri > rj
		}
		return distanceOrMax(businesses[i]) < distanceOrMax(businesses[j])
	})
}

func ratingOrZero(b *entities.Business) float64 {
	if b.Rating == nil {
		return 0
	}
	return *b.Rating
}

func distanceOrMax(ws *entities.BusinessWithScore) float64 {
	if ws.Attributes == nil || ws.Attributes.DistanceMiles == nil {
		return 1e9
	}
	return *ws.Attributes.DistanceMiles
}

// batchCacheKey fingerprints the candidate id set plus the preference
// fingerprint, order-insensitively.
func batchCacheKey(candidates []*entities.Business, fingerprint string) string {
	ids := make([]string, len(candidates))
	for i, b := range candidates {
		ids[i] = b.ID
	}
	sort.Strings(ids)
	h := xxhash.New()
	for _, id := range ids {
		h.WriteString(id)
		h.WriteString("|")
	}
	h.WriteString(fingerprint)
	return fmt.Sprintf("%016x", h.Sum64())
}
