package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/entities"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func fixedClock(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 15, hour, 30, 0, 0, time.UTC)
	}
}

func newTestScoring(hour int) *ScoringService {
	return NewScoringService(entities.DefaultCategoryWeights()).WithClock(fixedClock(hour))
}

func TestCuisineScore_DislikedAlwaysZero(t *testing.T) {
	svc := newTestScoring(19)
	pref := entities.CuisinePreference{
		Preferred: []string{"italian"},
		Disliked:  []string{"italian"},
	}
	// Disliked wins even when the same cuisine is also preferred.
	assert.Equal(t, 0.0, svc.CuisineScore([]string{"italian"}, pref))
}

func TestCuisineScore_NoPreference(t *testing.T) {
	svc := newTestScoring(19)
	score := svc.CuisineScore([]string{"thai"}, entities.CuisinePreference{})
	assert.Equal(t, 75.0, score)
}

func TestCuisineScore_NoBusinessData(t *testing.T) {
	svc := newTestScoring(19)
	pref := entities.CuisinePreference{Preferred: []string{"italian"}}
	assert.Equal(t, 50.0, svc.CuisineScore(nil, pref))
}

func TestCuisineScore_ExactMatches(t *testing.T) {
	svc := newTestScoring(19)

	pref := entities.CuisinePreference{Preferred: []string{"italian"}}
	assert.Equal(t, 100.0, svc.CuisineScore([]string{"italian"}, pref))

	pref = entities.CuisinePreference{Preferred: []string{"italian", "mexican"}}
	assert.Equal(t, 87.5, svc.CuisineScore([]string{"italian"}, pref))
}

func TestCuisineScore_RelatedCuisine(t *testing.T) {
	svc := newTestScoring(19)
	pref := entities.CuisinePreference{Preferred: []string{"thai"}}
	// Japanese is in the same asian cluster as thai.
	assert.Equal(t, 50.0, svc.CuisineScore([]string{"japanese"}, pref))
}

func TestCuisineScore_Unrelated(t *testing.T) {
	svc := newTestScoring(19)
	pref := entities.CuisinePreference{Preferred: []string{"mexican", "chinese"}}
	assert.Equal(t, 25.0, svc.CuisineScore([]string{"italian"}, pref))
}

func TestPriceScore_Bands(t *testing.T) {
	svc := newTestScoring(19)
	pref := entities.PricePreference{Min: 2, Max: 3}

	assert.Equal(t, 50.0, svc.PriceScore(nil, pref))
	assert.Equal(t, 100.0, svc.PriceScore(intPtr(2), pref))
	assert.Equal(t, 100.0, svc.PriceScore(intPtr(3), pref))
	assert.Equal(t, 50.0, svc.PriceScore(intPtr(1), pref))
	assert.Equal(t, 50.0, svc.PriceScore(intPtr(4), pref))

	tight := entities.PricePreference{Min: 3, Max: 4}
	assert.Equal(t, 0.0, svc.PriceScore(intPtr(1), tight))
}

func TestDietaryScore_Proportional(t *testing.T) {
	svc := newTestScoring(19)
	pref := entities.DietaryPreference{Restrictions: []string{"vegan", "gluten-free"}}

	assert.Equal(t, 100.0, svc.DietaryScore([]string{"anything"}, entities.DietaryPreference{}))
	assert.Equal(t, 50.0, svc.DietaryScore(nil, pref))
	assert.Equal(t, 50.0, svc.DietaryScore([]string{"vegan"}, pref))
	assert.Equal(t, 100.0, svc.DietaryScore([]string{"vegan", "gluten-free"}, pref))

	// Monotonic in the fraction of restrictions satisfied.
	none := svc.DietaryScore([]string{"halal"}, pref)
	one := svc.DietaryScore([]string{"vegan"}, pref)
	both := svc.DietaryScore([]string{"vegan", "gluten-free"}, pref)
	assert.LessOrEqual(t, none, one)
	assert.LessOrEqual(t, one, both)
}

func TestAmbianceScore_Binary(t *testing.T) {
	svc := newTestScoring(19)
	pref := entities.AmbiancePreference{Preferred: []string{"romantic"}}

	assert.Equal(t, 100.0, svc.AmbianceScore(nil, entities.AmbiancePreference{}))
	assert.Equal(t, 50.0, svc.AmbianceScore(nil, pref))
	assert.Equal(t, 100.0, svc.AmbianceScore([]string{"romantic", "upscale"}, pref))
	assert.Equal(t, 0.0, svc.AmbianceScore([]string{"lively"}, pref))
}

func TestDistanceScore_Bands(t *testing.T) {
	svc := newTestScoring(19)
	pref := entities.DistancePreference{MaxDistance: 5}

	assert.Equal(t, 50.0, svc.DistanceScore(nil, pref))
	assert.Equal(t, 100.0, svc.DistanceScore(floatPtr(0.4), pref))
	assert.Equal(t, 75.0, svc.DistanceScore(floatPtr(0.9), pref))
	assert.Equal(t, 50.0, svc.DistanceScore(floatPtr(1.8), pref))
	assert.Equal(t, 25.0, svc.DistanceScore(floatPtr(4.0), pref))
	assert.Equal(t, 0.0, svc.DistanceScore(floatPtr(6.0), pref))
}

func TestRatingScore_Blending(t *testing.T) {
	svc := newTestScoring(19)
	pref := entities.RatingPreference{}

	// Neither present: neutral.
	assert.Equal(t, 50.0, svc.RatingScore(nil, nil, pref, entities.PoliticalViewNone))

	// Only provider rating.
	assert.Equal(t, 80.0, svc.RatingScore(floatPtr(4.0), nil, pref, entities.PoliticalViewNone))

	// Only community score.
	assert.Equal(t, 90.0, svc.RatingScore(nil, floatPtr(90), pref, entities.PoliticalViewNone))

	// Both: 70% community, 30% provider.
	got := svc.RatingScore(floatPtr(4.0), floatPtr(90), pref, entities.PoliticalViewNone)
	assert.InDelta(t, 0.7*90+0.3*80, got, 1e-9)
}

func TestRatingScore_FloorPenaltyHalves(t *testing.T) {
	svc := newTestScoring(19)
	pref := entities.RatingPreference{MinRating: 4.5}

	full := svc.RatingScore(floatPtr(4.0), floatPtr(90), entities.RatingPreference{}, entities.PoliticalViewNone)
	penalized := svc.RatingScore(floatPtr(4.0), floatPtr(90), pref, entities.PoliticalViewNone)
	assert.InDelta(t, full*0.5, penalized, 1e-9)
}

func TestRatingScore_PoliticalViewOverridesFloor(t *testing.T) {
	svc := newTestScoring(19)
	pref := entities.RatingPreference{MinWinksScore: floatPtr(10)}

	// Liberal view raises the community floor to 70; a 60 community score
	// now fails it even though the stated floor is 10.
	unpenalized := svc.RatingScore(nil, floatPtr(60), pref, entities.PoliticalViewNone)
	penalized := svc.RatingScore(nil, floatPtr(60), pref, entities.PoliticalViewLiberal)
	assert.Equal(t, 60.0, unpenalized)
	assert.Equal(t, 30.0, penalized)

	// Conservative view lowers the floor; 60 passes.
	conservative := svc.RatingScore(nil, floatPtr(60), pref, entities.PoliticalViewConservative)
	assert.Equal(t, 60.0, conservative)
}

func TestFeaturesScore_Proportional(t *testing.T) {
	svc := newTestScoring(19)
	pref := entities.FeaturePreference{Preferred: []string{"delivery", "outdoor seating"}}

	assert.Equal(t, 100.0, svc.FeaturesScore(nil, entities.FeaturePreference{}))
	assert.Equal(t, 50.0, svc.FeaturesScore(nil, pref))
	assert.Equal(t, 50.0, svc.FeaturesScore([]string{"delivery"}, pref))
	assert.Equal(t, 100.0, svc.FeaturesScore([]string{"delivery", "outdoor seating"}, pref))
}

func TestTimeScore_Dayparts(t *testing.T) {
	svc := newTestScoring(8)

	// Bakeries score full marks in the morning.
	assert.Equal(t, 100.0, svc.TimeScore([]string{"bakery"}, 8))
	// And zero late at night.
	assert.Equal(t, 0.0, svc.TimeScore([]string{"bakery"}, 23))
	// Non-daypart-specific categories get the daypart's neutral default.
	assert.Equal(t, 60.0, svc.TimeScore([]string{"restaurant"}, 8))
	assert.Equal(t, 80.0, svc.TimeScore([]string{"restaurant"}, 12))
	assert.Equal(t, 80.0, svc.TimeScore([]string{"restaurant"}, 19))
	assert.Equal(t, 50.0, svc.TimeScore([]string{"restaurant"}, 2))
}

func TestNicheScore_Heuristics(t *testing.T) {
	svc := newTestScoring(19)

	assert.Equal(t, 10.0, svc.NicheScore("McDonald's Downtown", intPtr(120), nil))
	assert.Equal(t, 30.0, svc.NicheScore("Quick Bites", intPtr(1500), []string{"fast_food_restaurant"}))
	assert.Equal(t, 100.0, svc.NicheScore("Hidden Gem Bistro", intPtr(120), []string{"restaurant"}))
	assert.Equal(t, 50.0, svc.NicheScore("Tourist Trap Grill", intPtr(5000), []string{"restaurant"}))
	assert.Equal(t, 80.0, svc.NicheScore("New Spot", nil, []string{"restaurant"}))
}

func TestCalculateRelevanceScore_StrongMatch(t *testing.T) {
	svc := newTestScoring(19)

	business := &entities.Business{
		ID: "b1", Name: "Nonna's Trattoria",
		Rating: floatPtr(4.5), WinksScore: floatPtr(85),
	}
	attrs := &entities.BusinessAttributes{
		BusinessID:   "b1",
		CuisineTypes: []string{"italian"},
		PriceLevel:   intPtr(2),
		RatingCount:  intPtr(200),
		RawTypes:     []string{"italian_restaurant"},
	}
	prefs := entities.DefaultPreferences()
	prefs.Cuisines = entities.CuisinePreference{Preferred: []string{"italian"}, Importance: entities.ImportanceHigh}
	prefs.PriceRange = entities.PricePreference{Min: 1, Max: 3, Importance: entities.ImportanceMedium}

	score := svc.CalculateRelevanceScore(business, attrs, prefs)

	assert.GreaterOrEqual(t, score.Breakdown.Cuisine, 90.0)
	assert.Equal(t, 100.0, score.Breakdown.Price)
	assert.Greater(t, score.TotalScore, 80.0)
	assert.Contains(t, score.MatchedPreferences, entities.CategoryCuisine)
}

func TestCalculateRelevanceScore_PoorMatch(t *testing.T) {
	svc := newTestScoring(19)

	// Same italian business, scored against mismatched cuisine wishes. No
	// rating or review-count data, so the multipliers sit at their no-data
	// defaults and the cuisine mismatch alone drags the total under 60.
	business := &entities.Business{ID: "b1", Name: "Nonna's Trattoria"}
	attrs := &entities.BusinessAttributes{
		BusinessID:   "b1",
		CuisineTypes: []string{"italian"},
		PriceLevel:   intPtr(2),
	}
	prefs := entities.DefaultPreferences()
	prefs.Cuisines = entities.CuisinePreference{Preferred: []string{"mexican", "chinese"}, Importance: entities.ImportanceHigh}

	score := svc.CalculateRelevanceScore(business, attrs, prefs)

	assert.LessOrEqual(t, score.Breakdown.Cuisine, 25.0)
	assert.Less(t, score.TotalScore, 60.0)
	assert.Contains(t, score.UnmatchedPreferences, entities.CategoryCuisine)
}

func TestCalculateRelevanceScore_ClampInvariant(t *testing.T) {
	svc := newTestScoring(19)

	// All-max inputs: perfect match on every category plus top multipliers.
	business := &entities.Business{
		ID: "b1", Name: "Hidden Gem Bistro",
		Rating: floatPtr(5), WinksScore: floatPtr(100),
	}
	attrs := &entities.BusinessAttributes{
		BusinessID:     "b1",
		CuisineTypes:   []string{"italian"},
		PriceLevel:     intPtr(2),
		DietaryOptions: []string{"vegan"},
		AmbianceTags:   []string{"romantic"},
		Features:       []string{"delivery"},
		DistanceMiles:  floatPtr(0.2),
		RatingCount:    intPtr(200),
		RawTypes:       []string{"steak_house"},
	}
	prefs := entities.DefaultPreferences()
	prefs.Cuisines = entities.CuisinePreference{Preferred: []string{"italian"}, Importance: entities.ImportanceHigh}
	prefs.PriceRange = entities.PricePreference{Min: 1, Max: 3, Importance: entities.ImportanceHigh}
	prefs.Dietary = entities.DietaryPreference{Restrictions: []string{"vegan"}, Importance: entities.ImportanceHigh}
	prefs.Ambiance = entities.AmbiancePreference{Preferred: []string{"romantic"}, Importance: entities.ImportanceHigh}
	prefs.Distance = entities.DistancePreference{MaxDistance: 2, Importance: entities.ImportanceHigh}
	prefs.Features = entities.FeaturePreference{Preferred: []string{"delivery"}, Importance: entities.ImportanceHigh}

	score := svc.CalculateRelevanceScore(business, attrs, prefs)
	assert.LessOrEqual(t, score.TotalScore, 100.0)
	assert.GreaterOrEqual(t, score.TotalScore, 0.0)

	// All-zero inputs stay clamped too.
	badBusiness := &entities.Business{ID: "b2", Name: "McDonald's", Rating: floatPtr(0.5), WinksScore: floatPtr(0)}
	badAttrs := &entities.BusinessAttributes{
		BusinessID:   "b2",
		CuisineTypes: []string{"american"},
		PriceLevel:   intPtr(4),
		RawTypes:     []string{"bakery"},
	}
	badPrefs := entities.DefaultPreferences()
	badPrefs.Cuisines = entities.CuisinePreference{Preferred: []string{"thai"}, Disliked: []string{"american"}, Importance: entities.ImportanceHigh}
	badScore := svc.WithClock(fixedClock(23)).CalculateRelevanceScore(badBusiness, badAttrs, badPrefs)
	assert.GreaterOrEqual(t, badScore.TotalScore, 0.0)
	assert.LessOrEqual(t, badScore.TotalScore, 100.0)
}

func TestClassifyCategories_OmitsUnexpressed(t *testing.T) {
	svc := newTestScoring(19)

	business := &entities.Business{ID: "b1", Name: "Somewhere"}
	attrs := &entities.BusinessAttributes{BusinessID: "b1"}
	prefs := entities.DefaultPreferences()

	score := svc.CalculateRelevanceScore(business, attrs, prefs)
	assert.Empty(t, score.MatchedPreferences)
	assert.Empty(t, score.UnmatchedPreferences)
}
