package services

import (
	"math"
	"strings"
	"time"

	"github.com/winkslabs/dining-discovery/backend/internal/domain/entities"
)

// Named score constants. These encode product-significant tie-breaking
// behavior; tests pin them deliberately.
const (
	scoreFull    = 100.0
	scoreNeutral = 50.0
	scoreZero    = 0.0

	cuisineNoPreferenceScore = 75.0
	cuisineRelatedScore      = 50.0
	cuisineUnrelatedScore    = 25.0
	cuisineExactBase         = 75.0
	cuisineExactBonus        = 25.0

	priceNearMissScore = 50.0

	distanceVeryCloseScore = 100.0
	distanceCloseScore     = 75.0
	distanceModerateScore  = 50.0
	distanceFarScore       = 25.0

	ratingWinksWeight      = 0.7
	ratingGoogleWeight     = 0.3
	ratingFloorPenalty     = 0.5
	conservativeWinksFloor = 30.0
	liberalWinksFloor      = 70.0

	nicheChainScore       = 10.0
	nicheFastFoodScore    = 30.0
	nicheLocalGemScore    = 100.0
	nicheEstablishedScore = 50.0
	nicheDefaultScore     = 80.0

	matchedThreshold = 60.0
)

// Multiplier ranges for the non-additive factors. Bounded so no single factor
// can zero out or double a well-matched business's score.
const (
	ratingMultiplierBase = 0.7
	ratingMultiplierSpan = 0.6
	timeMultiplierBase   = 0.2
	timeMultiplierSpan   = 0.8
	nicheMultiplierBase  = 0.5
	nicheMultiplierSpan  = 0.5
)

// ScoringService computes per-category sub-scores and composes them into a
// relevance score. All scorers are pure; missing business data resolves to a
// neutral score rather than an error.
type ScoringService struct {
	weights entities.CategoryWeights
	now     func() time.Time
}

// NewScoringService creates a scoring service with the given category weights.
func NewScoringService(weights entities.CategoryWeights) *ScoringService {
	return &ScoringService{
		weights: weights,
		now:     time.Now,
	}
}

// WithClock overrides the clock used by the time-of-day scorer. Intended for
// tests and replayable scoring.
func (s *ScoringService) WithClock(now func() time.Time) *ScoringService {
	s.now = now
	return s
}

// CuisineScore scores a business's cuisines against the user's preferred and
// disliked lists. A disliked match is disqualifying regardless of any
// preferred overlap.
func (s *ScoringService) CuisineScore(cuisines []string, pref entities.CuisinePreference) float64 {
	for _, c := range cuisines {
		for _, d := range pref.Disliked {
			if termsMatch(c, d) {
				return scoreZero
			}
		}
	}

	if len(pref.Preferred) == 0 {
		return cuisineNoPreferenceScore
	}
	if len(cuisines) == 0 {
		return scoreNeutral
	}

	matches := 0
	for _, want := range pref.Preferred {
		for _, c := range cuisines {
			if termsMatch(c, want) {
				matches++
				break
			}
		}
	}
	if matches > 0 {
		ratio := math.Min(float64(matches)/float64(len(pref.Preferred)), 1)
		return cuisineExactBase + cuisineExactBonus*ratio
	}

	if hasRelatedCuisine(pref.Preferred, cuisines) {
		return cuisineRelatedScore
	}
	return cuisineUnrelatedScore
}

// PriceScore scores a price level against the acceptable range. One level
// outside either bound is a near miss, further out scores zero.
func (s *ScoringService) PriceScore(priceLevel *int, pref entities.PricePreference) float64 {
	if priceLevel == nil {
		return scoreNeutral
	}
	level := *priceLevel
	if level >= pref.Min && level <= pref.Max {
		return scoreFull
	}
	if level == pref.Min-1 || level == pref.Max+1 {
		return priceNearMissScore
	}
	return scoreZero
}

// DietaryScore scores proportionally to the fraction of restrictions the
// business satisfies.
func (s *ScoringService) DietaryScore(options []string, pref entities.DietaryPreference) float64 {
	if len(pref.Restrictions) == 0 {
		return scoreFull
	}
	if len(options) == 0 {
		return scoreNeutral
	}
	met := 0
	for _, restriction := range pref.Restrictions {
		for _, opt := range options {
			if termsMatch(opt, restriction) {
				met++
				break
			}
		}
	}
	return float64(met) / float64(len(pref.Restrictions)) * scoreFull
}

// AmbianceScore is binary: any tag overlap satisfies the preference.
func (s *ScoringService) AmbianceScore(tags []string, pref entities.AmbiancePreference) float64 {
	if len(pref.Preferred) == 0 {
		return scoreFull
	}
	if len(tags) == 0 {
		return scoreNeutral
	}
	for _, want := range pref.Preferred {
		for _, tag := range tags {
			if termsMatch(tag, want) {
				return scoreFull
			}
		}
	}
	return scoreZero
}

// DistanceScore maps distance in miles onto fixed proximity bands. Beyond the
// user's maximum it scores zero.
func (s *ScoringService) DistanceScore(distanceMiles *float64, pref entities.DistancePreference) float64 {
	if distanceMiles == nil {
		return scoreNeutral
	}
	d := *distanceMiles
	if d > pref.MaxDistance {
		return scoreZero
	}
	switch {
	case d <= 0.5:
		return distanceVeryCloseScore
	case d <= 1:
		return distanceCloseScore
	case d <= 2:
		return distanceModerateScore
	default:
		return distanceFarScore
	}
}

// RatingScore blends the provider rating (0-5) with the community winks score
// (0-100), weighted toward the community. Failing either floor halves the
// blended score rather than zeroing it.
func (s *ScoringService) RatingScore(rating *float64, winksScore *float64, pref entities.RatingPreference, view entities.PoliticalView) float64 {
	var blended float64
	switch {
	case rating != nil && winksScore != nil:
		blended = ratingWinksWeight*(*winksScore) + ratingGoogleWeight*(*rating/5*scoreFull)
	case winksScore != nil:
		blended = *winksScore
	case rating != nil:
		blended = *rating / 5 * scoreFull
	default:
		return scoreNeutral
	}

	winksFloor := 0.0
	switch view {
	case entities.PoliticalViewConservative:
		winksFloor = conservativeWinksFloor
	case entities.PoliticalViewLiberal:
		winksFloor = liberalWinksFloor
	default:
		if pref.MinWinksScore != nil {
			winksFloor = *pref.MinWinksScore
		}
	}

	failsRatingFloor := rating != nil && *rating < pref.MinRating
	failsWinksFloor := winksScore != nil && *winksScore < winksFloor
	if failsRatingFloor || failsWinksFloor {
		blended *= ratingFloorPenalty
	}
	return clampScore(blended)
}

// FeaturesScore scores proportionally to the fraction of desired features the
// business offers.
func (s *ScoringService) FeaturesScore(features []string, pref entities.FeaturePreference) float64 {
	if len(pref.Preferred) == 0 {
		return scoreFull
	}
	if len(features) == 0 {
		return scoreNeutral
	}
	matched := 0
	for _, want := range pref.Preferred {
		for _, f := range features {
			if termsMatch(f, want) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(pref.Preferred)) * scoreFull
}

// TimeScore scores a business's category tags for the current daypart.
// Categories with no daypart affinity receive the daypart's neutral default.
func (s *ScoringService) TimeScore(rawTypes []string, hour int) float64 {
	dp := daypartForHour(hour)
	for _, t := range rawTypes {
		for _, boost := range dp.boosted {
			if termsMatch(t, boost) {
				return scoreFull
			}
		}
	}
	for _, t := range rawTypes {
		for _, pen := range dp.penalized {
			if termsMatch(t, pen) {
				return dp.penaltyScore
			}
		}
	}
	return dp.neutralScore
}

// NicheScore penalizes national chains and very touristy spots and rewards
// likely local gems, based on name matching and rating-count heuristics.
func (s *ScoringService) NicheScore(name string, ratingCount *int, rawTypes []string) float64 {
	lower := strings.ToLower(name)
	for _, chain := range chainNames {
		if strings.Contains(lower, chain) {
			return nicheChainScore
		}
	}
	count := 0
	if ratingCount != nil {
		count = *ratingCount
	}
	if count > 1000 && isFastFood(rawTypes) {
		return nicheFastFoodScore
	}
	if count > 10 && count < 500 {
		return nicheLocalGemScore
	}
	if count > 2000 {
		return nicheEstablishedScore
	}
	return nicheDefaultScore
}

// CalculateRelevanceScore composes the nine sub-scores into a single total.
// Six categories contribute to a weighted sum; rating, time-of-day and
// niche-ness act as bounded multipliers so a generically well-reviewed chain
// cannot out-rank a strong preference match.
func (s *ScoringService) CalculateRelevanceScore(business *entities.Business, attrs *entities.BusinessAttributes, prefs *entities.DiningPreferences) *entities.RelevanceScore {
	breakdown := entities.ScoreBreakdown{
		Cuisine:  s.CuisineScore(attrs.CuisineTypes, prefs.Cuisines),
		Price:    s.PriceScore(attrs.PriceLevel, prefs.PriceRange),
		Dietary:  s.DietaryScore(attrs.DietaryOptions, prefs.Dietary),
		Ambiance: s.AmbianceScore(attrs.AmbianceTags, prefs.Ambiance),
		Distance: s.DistanceScore(attrs.DistanceMiles, prefs.Distance),
		Rating:   s.RatingScore(business.Rating, business.WinksScore, prefs.Rating, prefs.PoliticalView),
		Features: s.FeaturesScore(attrs.Features, prefs.Features),
		Time:     s.TimeScore(attrs.RawTypes, s.now().Hour()),
		Niche:    s.NicheScore(business.Name, attrs.RatingCount, attrs.RawTypes),
	}

	matchScore := breakdown.Cuisine*s.weights.Cuisine*prefs.Cuisines.Importance.Multiplier()/100 +
		breakdown.Price*s.weights.Price*prefs.PriceRange.Importance.Multiplier()/100 +
		breakdown.Dietary*s.weights.Dietary*prefs.Dietary.Importance.Multiplier()/100 +
		breakdown.Ambiance*s.weights.Ambiance*prefs.Ambiance.Importance.Multiplier()/100 +
		breakdown.Distance*s.weights.Distance*prefs.Distance.Importance.Multiplier()/100 +
		breakdown.Features*s.weights.Features*prefs.Features.Importance.Multiplier()/100

	ratingMultiplier := ratingMultiplierBase + breakdown.Rating/scoreFull*ratingMultiplierSpan
	timeMultiplier := timeMultiplierBase + breakdown.Time/scoreFull*timeMultiplierSpan
	nicheMultiplier := nicheMultiplierBase + breakdown.Niche/scoreFull*nicheMultiplierSpan

	total := clampScore(matchScore * ratingMultiplier * timeMultiplier * nicheMultiplier)

	matched, unmatched := classifyCategories(breakdown, prefs)

	return &entities.RelevanceScore{
		TotalScore:           total,
		Breakdown:            breakdown,
		MatchedPreferences:   matched,
		UnmatchedPreferences: unmatched,
		PreferenceMatchScore: matchScore,
	}
}

// classifyCategories splits the seven primary categories into matched and
// unmatched lists. Categories the user expressed no preference in are omitted
// from both.
func classifyCategories(b entities.ScoreBreakdown, prefs *entities.DiningPreferences) (matched, unmatched []string) {
	type category struct {
		name      string
		score     float64
		expressed bool
	}
	categories := []category{
		{entities.CategoryCuisine, b.Cuisine, len(prefs.Cuisines.Preferred) > 0},
		{entities.CategoryPrice, b.Price, prefs.PriceRange.Min != entities.DefaultPriceMin || prefs.PriceRange.Max != entities.DefaultPriceMax},
		{entities.CategoryDietary, b.Dietary, len(prefs.Dietary.Restrictions) > 0},
		{entities.CategoryAmbiance, b.Ambiance, len(prefs.Ambiance.Preferred) > 0},
		{entities.CategoryDistance, b.Distance, prefs.Distance.MaxDistance != entities.DefaultMaxDistance},
		{entities.CategoryRating, b.Rating, prefs.Rating.MinRating > 0 || prefs.Rating.MinWinksScore != nil},
		{entities.CategoryFeatures, b.Features, len(prefs.Features.Preferred) > 0},
	}
	for _, c := range categories {
		if !c.expressed {
			continue
		}
		if c.score >= matchedThreshold {
			matched = append(matched, c.name)
		} else {
			unmatched = append(unmatched, c.name)
		}
	}
	return matched, unmatched
}

// termsMatch reports a case-insensitive substring match in either direction.
func termsMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > scoreFull {
		return scoreFull
	}
	return v
}
