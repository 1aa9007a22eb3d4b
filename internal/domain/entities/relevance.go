package entities

// Preference category names used in score breakdowns and matched/unmatched
// classification.
const (
	CategoryCuisine  = "cuisine"
	CategoryPrice    = "price"
	CategoryDietary  = "dietary"
	CategoryAmbiance = "ambiance"
	CategoryDistance = "distance"
	CategoryRating   = "rating"
	CategoryFeatures = "features"
)

// ScoreBreakdown holds the per-category sub-scores, each in [0,100].
type ScoreBreakdown struct {
	Cuisine  float64 `json:"cuisine"`
	Price    float64 `json:"price"`
	Dietary  float64 `json:"dietary"`
	Ambiance float64 `json:"ambiance"`
	Distance float64 `json:"distance"`
	Rating   float64 `json:"rating"`
	Features float64 `json:"features"`
	Time     float64 `json:"time"`
	Niche    float64 `json:"niche"`
}

// RelevanceScore is the computed ranking output for one business against one
// preference fingerprint. Never mutated after creation; a preference change
// produces a new score under a new fingerprint.
type RelevanceScore struct {
	TotalScore            float64        `json:"total_score"`
	Breakdown             ScoreBreakdown `json:"breakdown"`
	MatchedPreferences    []string       `json:"matched_preferences"`
	UnmatchedPreferences  []string       `json:"unmatched_preferences"`
	PreferenceMatchScore  float64        `json:"preference_match_score"`
	PreferenceFingerprint string         `json:"preference_fingerprint,omitempty"`
}

// CategoryWeights are the fixed per-category weights of the weighted sum.
// Rating is deliberately absent: it acts as a multiplier, not an additive
// term.
type CategoryWeights struct {
	Cuisine  float64 `json:"cuisine"`
	Price    float64 `json:"price"`
	Dietary  float64 `json:"dietary"`
	Ambiance float64 `json:"ambiance"`
	Distance float64 `json:"distance"`
	Features float64 `json:"features"`
}

// DefaultCategoryWeights returns the product-tuned weights (sum 100). Treat
// these as configuration to preserve, not values to derive.
func DefaultCategoryWeights() CategoryWeights {
	return CategoryWeights{
		Cuisine:  30,
		Price:    15,
		Dietary:  25,
		Ambiance: 15,
		Distance: 10,
		Features: 5,
	}
}

// BusinessWithScore bundles a candidate with its resolved attributes and
// computed relevance score, ready for presentation.
type BusinessWithScore struct {
	Business   *Business           `json:"business"`
	Attributes *BusinessAttributes `json:"attributes"`
	Score      *RelevanceScore     `json:"score,omitempty"`
}

// RankedPage is a fully ranked candidate set, cacheable as a unit to
// short-circuit repeat full-page computations.
type RankedPage struct {
	Ranked  []*BusinessWithScore `json:"ranked"`
	Relaxed bool                 `json:"relaxed"`
}
