package entities

import (
	"math"
	"time"
)

// Business represents a candidate local business as returned by the place
// provider, plus the community score maintained by the platform.
type Business struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Types       []string  `json:"types,omitempty"`
	PriceLevel  *int      `json:"price_level,omitempty"`
	Rating      *float64  `json:"rating,omitempty"`
	RatingCount *int      `json:"rating_count,omitempty"`
	WinksScore  *float64  `json:"winks_score,omitempty"`
	Location    *Location `json:"location,omitempty"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BusinessAttributes holds the normalized, semi-structured facts about a
// business used by the scoring engine. Computed once (inferred or loaded from
// the attribute store) and treated as immutable for the duration of a ranking
// pass.
type BusinessAttributes struct {
	BusinessID     string    `json:"business_id"`
	CuisineTypes   []string  `json:"cuisine_types,omitempty"`
	PriceLevel     *int      `json:"price_level,omitempty"`
	DietaryOptions []string  `json:"dietary_options,omitempty"`
	AmbianceTags   []string  `json:"ambiance_tags,omitempty"`
	Features       []string  `json:"features,omitempty"`
	DistanceMiles  *float64  `json:"distance_miles,omitempty"`
	RatingCount    *int      `json:"rating_count,omitempty"`
	RawTypes       []string  `json:"raw_types,omitempty"`
	InferredAt     time.Time `json:"inferred_at,omitzero"`
}

// DistanceMilesBetween returns the haversine distance between two points in
// miles.
func DistanceMilesBetween(from, to Location) float64 {
	const earthRadiusMiles = 3958.8
	lat1 := from.Latitude * math.Pi / 180
	lat2 := to.Latitude * math.Pi / 180
	dLat := (to.Latitude - from.Latitude) * math.Pi / 180
	dLon := (to.Longitude - from.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
