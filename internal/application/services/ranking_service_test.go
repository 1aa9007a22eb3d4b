package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/entities"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/providers"
	"github.com/winkslabs/dining-discovery/backend/internal/infrastructure/cache"
	"github.com/winkslabs/dining-discovery/backend/internal/infrastructure/observability"
)

// fakeAttributeStore is an in-memory AttributeStore safe for the concurrent
// Put calls made by the persistence drain.
type fakeAttributeStore struct {
	mu   sync.Mutex
	data map[string]*entities.BusinessAttributes
	puts []string
}

func newFakeAttributeStore() *fakeAttributeStore {
	return &fakeAttributeStore{data: map[string]*entities.BusinessAttributes{}}
}

func (f *fakeAttributeStore) Get(ctx context.Context, businessID string) (*entities.BusinessAttributes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	attrs, ok := f.data[businessID]
	if !ok {
		return nil, providers.ErrAttributesNotFound
	}
	return attrs, nil
}

func (f *fakeAttributeStore) BatchGet(ctx context.Context, businessIDs []string) (map[string]*entities.BusinessAttributes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]*entities.BusinessAttributes)
	for _, id := range businessIDs {
		if attrs, ok := f.data[id]; ok {
			out[id] = attrs
		}
	}
	return out, nil
}

func (f *fakeAttributeStore) Put(ctx context.Context, businessID string, attrs *entities.BusinessAttributes) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[businessID] = attrs
	f.puts = append(f.puts, businessID)
	return nil
}

func newTestRanking(store *fakeAttributeStore) *RankingService {
	scoring := NewScoringService(entities.DefaultCategoryWeights()).WithClock(fixedClock(19))
	var attributeStore providers.AttributeStore
	if store != nil {
		attributeStore = store
	}
	return NewRankingService(scoring, NewInferenceService(), attributeStore,
		cache.NewRankingCaches(cache.Config{}), observability.NewPerformanceTracker(), nil,
		RankingConfig{BatchSize: 2, MaxConcurrentBatches: 2})
}

func testBusinesses() []*entities.Business {
	return []*entities.Business{
		{ID: "b-italian", Name: "Nonna's Trattoria", Types: []string{"italian_restaurant"}, Rating: floatPtr(4.2), WinksScore: floatPtr(78)},
		{ID: "b-american", Name: "Hilltop Grill", Types: []string{"american_restaurant"}, Rating: floatPtr(4.6), WinksScore: floatPtr(71)},
	}
}

func seedStore(store *fakeAttributeStore) {
	store.data["b-italian"] = &entities.BusinessAttributes{
		BusinessID: "b-italian", CuisineTypes: []string{"italian"},
		PriceLevel: intPtr(2), RatingCount: intPtr(200), RawTypes: []string{"italian_restaurant"},
	}
	store.data["b-american"] = &entities.BusinessAttributes{
		BusinessID: "b-american", CuisineTypes: []string{"american"},
		PriceLevel: intPtr(3), RatingCount: intPtr(300), RawTypes: []string{"american_restaurant"},
	}
}

func TestRank_EmptyCandidates(t *testing.T) {
	svc := newTestRanking(nil)

	result, err := svc.Rank(context.Background(), nil, entities.DefaultPreferences(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Ranked)
	assert.False(t, result.Relaxed)
	assert.False(t, result.Fallback)
}

func TestRank_FallbackWithoutPreferences(t *testing.T) {
	svc := newTestRanking(nil)

	result, err := svc.Rank(context.Background(), testBusinesses(), entities.DefaultPreferences(), nil)
	require.NoError(t, err)
	require.Len(t, result.Ranked, 2)

	assert.True(t, result.Fallback)
	assert.False(t, result.Relaxed)
	// Rating descending: the 4.6 grill outranks the 4.2 trattoria.
	assert.Equal(t, "b-american", result.Ranked[0].Business.ID)
	assert.Equal(t, "b-italian", result.Ranked[1].Business.ID)
	// Fallback still resolves attributes but never scores.
	assert.Nil(t, result.Ranked[0].Score)
}

func TestRank_OrdersByRelevance(t *testing.T) {
	store := newFakeAttributeStore()
	seedStore(store)
	svc := newTestRanking(store)

	prefs := entities.DefaultPreferences()
	prefs.Cuisines = entities.CuisinePreference{Preferred: []string{"italian"}, Importance: entities.ImportanceHigh}

	result, err := svc.Rank(context.Background(), testBusinesses(), prefs, nil)
	require.NoError(t, err)
	require.Len(t, result.Ranked, 2)

	// The cuisine match beats the higher provider rating.
	assert.Equal(t, "b-italian", result.Ranked[0].Business.ID)
	assert.False(t, result.Fallback)
	require.NotNil(t, result.Ranked[0].Score)
	assert.Greater(t, result.Ranked[0].Score.TotalScore, result.Ranked[1].Score.TotalScore)
}

func TestRank_MustHaveFiltersNonMatches(t *testing.T) {
	store := newFakeAttributeStore()
	seedStore(store)
	svc := newTestRanking(store)

	prefs := entities.DefaultPreferences()
	prefs.Cuisines = entities.CuisinePreference{Preferred: []string{"italian"}, Importance: entities.ImportanceMustHave}

	result, err := svc.Rank(context.Background(), testBusinesses(), prefs, nil)
	require.NoError(t, err)
	require.Len(t, result.Ranked, 1)
	assert.Equal(t, "b-italian", result.Ranked[0].Business.ID)
	assert.False(t, result.Relaxed)
}

func TestRank_RelaxesWhenMustHaveEmptiesSet(t *testing.T) {
	store := newFakeAttributeStore()
	seedStore(store)
	svc := newTestRanking(store)

	prefs := entities.DefaultPreferences()
	prefs.Cuisines = entities.CuisinePreference{Preferred: []string{"ethiopian"}, Importance: entities.ImportanceMustHave}

	result, err := svc.Rank(context.Background(), testBusinesses(), prefs, nil)
	require.NoError(t, err)

	// Nothing satisfies the must-have, so it relaxes to high importance and
	// every candidate comes back scored.
	assert.True(t, result.Relaxed)
	assert.Len(t, result.Ranked, 2)
	for _, ws := range result.Ranked {
		assert.NotNil(t, ws.Score)
	}
}

func TestRank_BatchCacheHitOnRepeat(t *testing.T) {
	store := newFakeAttributeStore()
	seedStore(store)
	svc := newTestRanking(store)

	prefs := entities.DefaultPreferences()
	prefs.Cuisines = entities.CuisinePreference{Preferred: []string{"italian"}, Importance: entities.ImportanceHigh}

	first, err := svc.Rank(context.Background(), testBusinesses(), prefs, nil)
	require.NoError(t, err)
	assert.False(t, first.Metrics.FromBatchCache)

	second, err := svc.Rank(context.Background(), testBusinesses(), prefs, nil)
	require.NoError(t, err)
	assert.True(t, second.Metrics.FromBatchCache)

	require.Len(t, second.Ranked, len(first.Ranked))
	for i := range first.Ranked {
		assert.Equal(t, first.Ranked[i].Business.ID, second.Ranked[i].Business.ID)
		assert.Equal(t, first.Ranked[i].Score.TotalScore, second.Ranked[i].Score.TotalScore)
	}
}

func TestRank_PreferenceChangeMissesBatchCache(t *testing.T) {
	store := newFakeAttributeStore()
	seedStore(store)
	svc := newTestRanking(store)

	prefs := entities.DefaultPreferences()
	prefs.Cuisines = entities.CuisinePreference{Preferred: []string{"italian"}, Importance: entities.ImportanceHigh}
	_, err := svc.Rank(context.Background(), testBusinesses(), prefs, nil)
	require.NoError(t, err)

	changed := entities.DefaultPreferences()
	changed.Cuisines = entities.CuisinePreference{Preferred: []string{"american"}, Importance: entities.ImportanceHigh}
	result, err := svc.Rank(context.Background(), testBusinesses(), changed, nil)
	require.NoError(t, err)
	assert.False(t, result.Metrics.FromBatchCache)
	assert.Equal(t, "b-american", result.Ranked[0].Business.ID)
}

func TestRank_ScoreCacheReusedAcrossCandidateSets(t *testing.T) {
	store := newFakeAttributeStore()
	seedStore(store)
	svc := newTestRanking(store)

	prefs := entities.DefaultPreferences()
	prefs.Cuisines = entities.CuisinePreference{Preferred: []string{"italian"}, Importance: entities.ImportanceHigh}

	first, err := svc.Rank(context.Background(), testBusinesses(), prefs, nil)
	require.NoError(t, err)
	scoreMisses := svc.caches.Scores.Stats().Misses

	// A subset of the candidates misses the batch cache, but the shared
	// business was already scored under the same fingerprint.
	second, err := svc.Rank(context.Background(), testBusinesses()[:1], prefs, nil)
	require.NoError(t, err)
	assert.False(t, second.Metrics.FromBatchCache)
	require.Len(t, second.Ranked, 1)

	var cached *entities.RelevanceScore
	for _, ws := range first.Ranked {
		if ws.Business.ID == "b-italian" {
			cached = ws.Score
		}
	}
	require.NotNil(t, cached)

	// Same score object, no recomputation: the score-cache miss counter did
	// not move on the second run.
	assert.Same(t, cached, second.Ranked[0].Score)
	assert.Equal(t, scoreMisses, svc.caches.Scores.Stats().Misses)
	assert.Equal(t, 0, second.Metrics.AttributesInferred)
}

func TestRank_InfersAndPersistsMissingAttributes(t *testing.T) {
	store := newFakeAttributeStore()
	store.data["b-italian"] = &entities.BusinessAttributes{
		BusinessID: "b-italian", CuisineTypes: []string{"italian"},
		PriceLevel: intPtr(2), RatingCount: intPtr(200), RawTypes: []string{"italian_restaurant"},
	}
	svc := newTestRanking(store)

	prefs := entities.DefaultPreferences()
	prefs.Cuisines = entities.CuisinePreference{Preferred: []string{"italian"}, Importance: entities.ImportanceHigh}

	result, err := svc.Rank(context.Background(), testBusinesses(), prefs, nil)
	require.NoError(t, err)

	// Only the business absent from the store needed inference, and the
	// inferred attributes were written back before Rank returned.
	assert.Equal(t, 1, result.Metrics.AttributesInferred)
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, []string{"b-american"}, store.puts)
}

func TestFilterByMustHaves_Idempotent(t *testing.T) {
	prefs := entities.DefaultPreferences()
	prefs.Cuisines = entities.CuisinePreference{Preferred: []string{"italian"}, Importance: entities.ImportanceMustHave}

	businesses := []*entities.BusinessWithScore{
		{Business: &entities.Business{ID: "a"}, Attributes: &entities.BusinessAttributes{CuisineTypes: []string{"italian"}}},
		{Business: &entities.Business{ID: "b"}, Attributes: &entities.BusinessAttributes{CuisineTypes: []string{"mexican"}}},
	}

	once := FilterByMustHaves(businesses, prefs)
	twice := FilterByMustHaves(once, prefs)
	require.Len(t, once, 1)
	assert.Equal(t, once, twice)
}

func TestPassesMustHaves_UnknownData(t *testing.T) {
	prefs := entities.DefaultPreferences()
	prefs.Cuisines = entities.CuisinePreference{Preferred: []string{"italian"}, Importance: entities.ImportanceMustHave}
	prefs.PriceRange = entities.PricePreference{Min: 1, Max: 2, Importance: entities.ImportanceMustHave}
	prefs.Dietary = entities.DietaryPreference{Restrictions: []string{"vegan"}, Importance: entities.ImportanceMustHave}

	// Cuisine is strict: no data cannot prove the match.
	empty := &entities.BusinessAttributes{}
	assert.False(t, PassesMustHaves(empty, prefs))

	// Price and dietary pass when the data is unknown.
	withCuisine := &entities.BusinessAttributes{CuisineTypes: []string{"italian"}}
	assert.True(t, PassesMustHaves(withCuisine, prefs))

	// But known data outside bounds fails.
	tooExpensive := &entities.BusinessAttributes{CuisineTypes: []string{"italian"}, PriceLevel: intPtr(4)}
	assert.False(t, PassesMustHaves(tooExpensive, prefs))

	noVegan := &entities.BusinessAttributes{CuisineTypes: []string{"italian"}, DietaryOptions: []string{"halal"}}
	assert.False(t, PassesMustHaves(noVegan, prefs))
}

func TestSortRanked_TieBreakChain(t *testing.T) {
	score := func(total float64) *entities.RelevanceScore {
		return &entities.RelevanceScore{TotalScore: total}
	}
	businesses := []*entities.BusinessWithScore{
		{Business: &entities.Business{ID: "low-score", Rating: floatPtr(5)}, Score: score(40)},
		{Business: &entities.Business{ID: "far", Rating: floatPtr(4)}, Score: score(80),
			Attributes: &entities.BusinessAttributes{DistanceMiles: floatPtr(3)}},
		{Business: &entities.Business{ID: "near", Rating: floatPtr(4)}, Score: score(80),
			Attributes: &entities.BusinessAttributes{DistanceMiles: floatPtr(1)}},
		{Business: &entities.Business{ID: "high-rating", Rating: floatPtr(4.8)}, Score: score(80)},
	}

	sortRanked(businesses)

	// Score desc, then rating desc, then distance asc with unknown distance
	// sorting last.
	ids := make([]string, len(businesses))
	for i, ws := range businesses {
		ids[i] = ws.Business.ID
	}
	assert.Equal(t, []string{"high-rating", "near", "far", "low-score"}, ids)
}
