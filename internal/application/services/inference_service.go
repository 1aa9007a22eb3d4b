package services

import (
	"sort"
	"strings"
	"time"

	"github.com/winkslabs/dining-discovery/backend/internal/domain/entities"
)

// cuisineKeywords maps provider type tags and name fragments to normalized
// cuisine labels.
var cuisineKeywords = map[string]string{
	"italian":       "italian",
	"pizza":         "italian",
	"pasta":         "italian",
	"mexican":       "mexican",
	"taco":          "mexican",
	"burrito":       "mexican",
	"chinese":       "chinese",
	"dim_sum":       "chinese",
	"japanese":      "japanese",
	"sushi":         "japanese",
	"ramen":         "japanese",
	"thai":          "thai",
	"vietnamese":    "vietnamese",
	"pho":           "vietnamese",
	"korean":        "korean",
	"indian":        "indian",
	"curry":         "indian",
	"french":        "french",
	"greek":         "greek",
	"mediterranean": "mediterranean",
	"lebanese":      "lebanese",
	"turkish":       "turkish",
	"spanish":       "spanish",
	"tapas":         "spanish",
	"american":      "american",
	"burger":        "american",
	"bbq":           "american",
	"barbecue":      "american",
	"steak":         "american",
	"seafood":       "seafood",
	"peruvian":      "peruvian",
	"brazilian":     "brazilian",
	"cuban":         "cuban",
	"ethiopian":     "ethiopian",
	"deli":          "deli",
	"bakery":        "bakery",
	"cafe":          "cafe",
	"coffee":        "cafe",
}

var dietaryKeywords = map[string]string{
	"vegan":       "vegan",
	"vegetarian":  "vegetarian",
	"gluten_free": "gluten-free",
	"gluten-free": "gluten-free",
	"halal":       "halal",
	"kosher":      "kosher",
}

var featureKeywords = map[string]string{
	"meal_delivery":   "delivery",
	"delivery":        "delivery",
	"meal_takeaway":   "takeout",
	"takeout":         "takeout",
	"outdoor_seating": "outdoor seating",
	"patio":           "outdoor seating",
	"reservable":      "reservations",
	"wheelchair":      "wheelchair accessible",
	"live_music":      "live music",
	"rooftop":         "rooftop",
	"wifi":            "wifi",
	"parking":         "parking",
}

// InferenceService derives normalized BusinessAttributes from a raw place
// record when no stored attributes exist.
type InferenceService struct{}

// NewInferenceService creates an inference service.
func NewInferenceService() *InferenceService {
	return &InferenceService{}
}

// InferAttributes derives attributes from a business's provider tags, name
// and price level. It never fails: missing inputs just produce sparser
// attributes, which the scorers resolve to neutral scores.
func (s *InferenceService) InferAttributes(business *entities.Business, userLocation *entities.Location) *entities.BusinessAttributes {
	attrs := &entities.BusinessAttributes{
		BusinessID:  business.ID,
		PriceLevel:  business.PriceLevel,
		RatingCount: business.RatingCount,
		RawTypes:    business.Types,
		InferredAt:  time.Now().UTC(),
	}

	haystack := make([]string, 0, len(business.Types)+1)
	for _, t := range business.Types {
		haystack = append(haystack, strings.ToLower(t))
	}
	haystack = append(haystack, strings.ToLower(business.Name))

	attrs.CuisineTypes = collectKeywords(haystack, cuisineKeywords)
	attrs.DietaryOptions = collectKeywords(haystack, dietaryKeywords)
	attrs.Features = collectKeywords(haystack, featureKeywords)
	attrs.AmbianceTags = inferAmbiance(haystack, business.PriceLevel)

	if userLocation != nil && business.Location != nil {
		d := entities.DistanceMilesBetween(*userLocation, *business.Location)
		attrs.DistanceMiles = &d
	}

	return attrs
}

func collectKeywords(haystack []string, table map[string]string) []string {
	var out []string
	seen := make(map[string]struct{})
	for keyword, label := range table {
		if _, ok := seen[label]; ok {
			continue
		}
		for _, h := range haystack {
			if strings.Contains(h, keyword) {
				seen[label] = struct{}{}
				out = append(out, label)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

func inferAmbiance(haystack []string, priceLevel *int) []string {
	var tags []string
	add := func(tag string) {
		for _, t := range tags {
			if t == tag {
				return
			}
		}
		tags = append(tags, tag)
	}

	for _, h := range haystack {
		switch {
		case strings.Contains(h, "night_club") || strings.Contains(h, "bar"):
			add("lively")
		case strings.Contains(h, "cafe") || strings.Contains(h, "coffee") || strings.Contains(h, "bakery"):
			add("cozy")
			add("casual")
		case strings.Contains(h, "fast_food") || strings.Contains(h, "meal_takeaway"):
			add("casual")
		case strings.Contains(h, "wine_bar") || strings.Contains(h, "fine_dining"):
			add("upscale")
			add("romantic")
		case strings.Contains(h, "family"):
			add("family-friendly")
		}
	}
	if priceLevel != nil {
		switch {
		case *priceLevel >= 4:
			add("upscale")
		case *priceLevel <= 1:
			add("casual")
		}
	}
	return tags
}
