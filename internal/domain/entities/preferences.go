package entities

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Importance is the weight class a user assigns to a preference category.
type Importance string

const (
	ImportanceMustHave Importance = "must-have"
	ImportanceHigh     Importance = "high"
	ImportanceMedium   Importance = "medium"
	ImportanceLow      Importance = "low"
)

// Multiplier returns the scoring multiplier for an importance level.
// Must-have contributes nothing to the weighted sum; it is enforced by
// filtering instead.
func (i Importance) Multiplier() float64 {
	switch i {
	case ImportanceMustHave:
		return 0
	case ImportanceHigh:
		return 1.5
	case ImportanceLow:
		return 0.5
	default:
		return 1.0
	}
}

// Valid reports whether the importance is one of the known levels.
func (i Importance) Valid() bool {
	switch i {
	case ImportanceMustHave, ImportanceHigh, ImportanceMedium, ImportanceLow:
		return true
	}
	return false
}

// PoliticalView overrides the effective community-score floor used by the
// rating scorer.
type PoliticalView string

const (
	PoliticalViewLiberal      PoliticalView = "liberal"
	PoliticalViewConservative PoliticalView = "conservative"
	PoliticalViewNone         PoliticalView = "none"
)

// CuisinePreference holds preferred and disliked cuisines.
type CuisinePreference struct {
	Preferred  []string   `json:"preferred"`
	Disliked   []string   `json:"disliked"`
	Importance Importance `json:"importance"`
}

// PricePreference holds the acceptable price-level range (1-4 inclusive).
type PricePreference struct {
	Min        int        `json:"min"`
	Max        int        `json:"max"`
	Importance Importance `json:"importance"`
}

// DietaryPreference holds hard dietary restrictions.
type DietaryPreference struct {
	Restrictions []string   `json:"restrictions"`
	Importance   Importance `json:"importance"`
}

// AmbiancePreference holds preferred ambiance tags. Must-have is not allowed
// for this category.
type AmbiancePreference struct {
	Preferred  []string   `json:"preferred"`
	Importance Importance `json:"importance"`
}

// DistancePreference holds the maximum acceptable distance in miles.
type DistancePreference struct {
	MaxDistance float64    `json:"max_distance"`
	Importance  Importance `json:"importance"`
}

// RatingPreference holds rating floors. MinWinksScore nil means no community
// floor beyond any political-view override.
type RatingPreference struct {
	MinRating     float64    `json:"min_rating"`
	MinWinksScore *float64   `json:"min_winks_score"`
	Importance    Importance `json:"importance"`
}

// FeaturePreference holds desired business features (outdoor seating,
// delivery, ...).
type FeaturePreference struct {
	Preferred  []string   `json:"preferred"`
	Importance Importance `json:"importance"`
}

// DiningPreferences is the full, user-owned preference profile. The scoring
// engine assumes a sanitized instance; Sanitize runs once at the boundary.
type DiningPreferences struct {
	Cuisines      CuisinePreference  `json:"cuisines"`
	PriceRange    PricePreference    `json:"price_range"`
	Dietary       DietaryPreference  `json:"dietary"`
	Ambiance      AmbiancePreference `json:"ambiance"`
	Distance      DistancePreference `json:"distance"`
	Rating        RatingPreference   `json:"rating"`
	Features      FeaturePreference  `json:"features"`
	PoliticalView PoliticalView      `json:"political_view"`

	// LearningData is carried through for future personalization work and is
	// never read by the scoring engine.
	LearningData json.RawMessage `json:"learning_data,omitempty"`
}

// Default preference bounds.
const (
	DefaultPriceMin    = 1
	DefaultPriceMax    = 4
	DefaultMaxDistance = 5.0
	DefaultMinRating   = 0.0
)

// DefaultPreferences returns the profile of a user who has expressed no
// constraints.
func DefaultPreferences() *DiningPreferences {
	return &DiningPreferences{
		Cuisines:      CuisinePreference{Importance: ImportanceMedium},
		PriceRange:    PricePreference{Min: DefaultPriceMin, Max: DefaultPriceMax, Importance: ImportanceMedium},
		Dietary:       DietaryPreference{Importance: ImportanceMedium},
		Ambiance:      AmbiancePreference{Importance: ImportanceMedium},
		Distance:      DistancePreference{MaxDistance: DefaultMaxDistance, Importance: ImportanceMedium},
		Rating:        RatingPreference{MinRating: DefaultMinRating, Importance: ImportanceMedium},
		Features:      FeaturePreference{Importance: ImportanceMedium},
		PoliticalView: PoliticalViewNone,
	}
}

// HasPreferencesSet reports whether any field deviates from the defaults.
// When false, ranking falls back to a plain rating/distance sort.
func (p *DiningPreferences) HasPreferencesSet() bool {
	if len(p.Cuisines.Preferred) > 0 || len(p.Cuisines.Disliked) > 0 {
		return true
	}
	if p.PriceRange.Min != DefaultPriceMin || p.PriceRange.Max != DefaultPriceMax {
		return true
	}
	if len(p.Dietary.Restrictions) > 0 {
		return true
	}
	if len(p.Ambiance.Preferred) > 0 {
		return true
	}
	if p.Distance.MaxDistance != DefaultMaxDistance {
		return true
	}
	if p.Rating.MinRating != DefaultMinRating || p.Rating.MinWinksScore != nil {
		return true
	}
	if len(p.Features.Preferred) > 0 {
		return true
	}
	if p.PoliticalView != PoliticalViewNone && p.PoliticalView != "" {
		return true
	}
	for _, imp := range []Importance{
		p.Cuisines.Importance, p.PriceRange.Importance, p.Dietary.Importance,
		p.Ambiance.Importance, p.Distance.Importance, p.Rating.Importance,
		p.Features.Importance,
	} {
		if imp != ImportanceMedium && imp != "" {
			return true
		}
	}
	return false
}

// Sanitize normalizes a preference profile in place so the scoring engine can
// assume valid input. Unknown importance levels demote to medium; must-have is
// stripped from categories that do not support it; numeric bounds are clamped.
func (p *DiningPreferences) Sanitize() {
	p.Cuisines.Preferred = normalizeTerms(p.Cuisines.Preferred)
	p.Cuisines.Disliked = normalizeTerms(p.Cuisines.Disliked)
	p.Dietary.Restrictions = normalizeTerms(p.Dietary.Restrictions)
	p.Ambiance.Preferred = normalizeTerms(p.Ambiance.Preferred)
	p.Features.Preferred = normalizeTerms(p.Features.Preferred)

	p.Cuisines.Importance = sanitizeImportance(p.Cuisines.Importance, true)
	p.PriceRange.Importance = sanitizeImportance(p.PriceRange.Importance, true)
	p.Dietary.Importance = sanitizeImportance(p.Dietary.Importance, true)
	p.Ambiance.Importance = sanitizeImportance(p.Ambiance.Importance, false)
	p.Distance.Importance = sanitizeImportance(p.Distance.Importance, false)
	p.Rating.Importance = sanitizeImportance(p.Rating.Importance, false)
	p.Features.Importance = sanitizeImportance(p.Features.Importance, false)

	if p.PriceRange.Min < DefaultPriceMin || p.PriceRange.Min > DefaultPriceMax {
		p.PriceRange.Min = DefaultPriceMin
	}
	if p.PriceRange.Max < DefaultPriceMin || p.PriceRange.Max > DefaultPriceMax {
		p.PriceRange.Max = DefaultPriceMax
	}
	if p.PriceRange.Min > p.PriceRange.Max {
		p.PriceRange.Min, p.PriceRange.Max = p.PriceRange.Max, p.PriceRange.Min
	}

	if p.Distance.MaxDistance <= 0 {
		p.Distance.MaxDistance = DefaultMaxDistance
	}
	if p.Rating.MinRating < 0 {
		p.Rating.MinRating = 0
	}
	if p.Rating.MinRating > 5 {
		p.Rating.MinRating = 5
	}
	if p.Rating.MinWinksScore != nil && *p.Rating.MinWinksScore < 0 {
		p.Rating.MinWinksScore = nil
	}

	switch p.PoliticalView {
	case PoliticalViewLiberal, PoliticalViewConservative, PoliticalViewNone:
	default:
		p.PoliticalView = PoliticalViewNone
	}
}

func sanitizeImportance(imp Importance, allowMustHave bool) Importance {
	if !imp.Valid() {
		return ImportanceMedium
	}
	if imp == ImportanceMustHave && !allowMustHave {
		return ImportanceHigh
	}
	return imp
}

func normalizeTerms(terms []string) []string {
	if len(terms) == 0 {
		return terms
	}
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Fingerprint returns a stable hash of the full preference profile. Any change
// to any sub-field yields a different fingerprint, which is how the score
// cache is invalidated when preferences change.
func (p *DiningPreferences) Fingerprint() string {
	data, err := json.Marshal(p)
	if err != nil {
		// Marshal of a plain struct cannot fail; keep a defined value anyway.
		return "invalid"
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// Relaxed returns a copy with every must-have category downgraded to high
// importance. Used for the single relaxation pass when strict filtering
// empties the candidate set.
func (p *DiningPreferences) Relaxed() *DiningPreferences {
	out := *p
	if out.Cuisines.Importance == ImportanceMustHave {
		out.Cuisines.Importance = ImportanceHigh
	}
	if out.PriceRange.Importance == ImportanceMustHave {
		out.PriceRange.Importance = ImportanceHigh
	}
	if out.Dietary.Importance == ImportanceMustHave {
		out.Dietary.Importance = ImportanceHigh
	}
	return &out
}

// HasMustHaves reports whether any category is marked must-have.
func (p *DiningPreferences) HasMustHaves() bool {
	return p.Cuisines.Importance == ImportanceMustHave ||
		p.PriceRange.Importance == ImportanceMustHave ||
		p.Dietary.Importance == ImportanceMustHave
}
