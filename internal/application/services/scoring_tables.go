package services

import "strings"

// relatedCuisineGroups clusters cuisines that partially satisfy each other.
// A preferred cuisine in the same cluster as a business cuisine earns partial
// credit when no exact match exists.
var relatedCuisineGroups = [][]string{
	{"chinese", "japanese", "thai", "vietnamese", "korean", "asian"},
	{"italian", "french", "spanish", "greek", "european"},
	{"mexican", "brazilian", "peruvian", "cuban", "latin"},
	{"greek", "turkish", "lebanese", "israeli", "mediterranean"},
}

func hasRelatedCuisine(preferred, cuisines []string) bool {
	for _, group := range relatedCuisineGroups {
		prefInGroup := false
		for _, want := range preferred {
			if groupContains(group, want) {
				prefInGroup = true
				break
			}
		}
		if !prefInGroup {
			continue
		}
		for _, c := range cuisines {
			if groupContains(group, c) {
				return true
			}
		}
	}
	return false
}

func groupContains(group []string, term string) bool {
	for _, member := range group {
		if termsMatch(member, term) {
			return true
		}
	}
	return false
}

// daypart describes one of the four fixed time-of-day buckets.
type daypart struct {
	name         string
	boosted      []string
	penalized    []string
	penaltyScore float64
	neutralScore float64
}

var (
	daypartMorning = daypart{
		name:         "morning",
		boosted:      []string{"bakery", "cafe", "coffee", "breakfast", "brunch", "donut", "juice"},
		penalized:    []string{"night_club", "bar", "cocktail"},
		penaltyScore: 0,
		neutralScore: 60,
	}
	daypartLunch = daypart{
		name:         "lunch",
		boosted:      []string{"sandwich", "deli", "salad", "food_court", "taco", "ramen", "cafe"},
		penalized:    []string{"night_club"},
		penaltyScore: 20,
		neutralScore: 80,
	}
	daypartDinner = daypart{
		name:         "dinner",
		boosted:      []string{"steak", "sushi", "wine_bar", "seafood", "fine_dining", "bar_and_grill"},
		penalized:    []string{"breakfast", "donut"},
		penaltyScore: 30,
		neutralScore: 80,
	}
	daypartLateNight = daypart{
		name:         "late-night",
		boosted:      []string{"night_club", "bar", "diner", "taco", "pizza", "fast_food"},
		penalized:    []string{"bakery", "cafe", "breakfast", "brunch"},
		penaltyScore: 0,
		neutralScore: 50,
	}
)

// daypartForHour buckets an hour of day: morning 5-11, lunch 11-16,
// dinner 16-22, late-night otherwise.
func daypartForHour(hour int) daypart {
	switch {
	case hour >= 5 && hour < 11:
		return daypartMorning
	case hour >= 11 && hour < 16:
		return daypartLunch
	case hour >= 16 && hour < 22:
		return daypartDinner
	default:
		return daypartLateNight
	}
}

// chainNames is the fixed list of national chains penalized by the niche
// scorer. Matched case-insensitively as substrings of the business name.
var chainNames = []string{
	"mcdonald", "burger king", "wendy's", "taco bell", "kfc", "subway",
	"chipotle", "starbucks", "dunkin", "domino", "pizza hut", "papa john",
	"chick-fil-a", "panda express", "olive garden", "applebee", "chili's",
	"ihop", "denny's", "five guys", "panera", "popeyes", "little caesars",
	"arby's", "sonic drive", "jack in the box",
}

func isFastFood(rawTypes []string) bool {
	for _, t := range rawTypes {
		lower := strings.ToLower(t)
		if strings.Contains(lower, "fast_food") || strings.Contains(lower, "meal_takeaway") {
			return true
		}
	}
	return false
}
