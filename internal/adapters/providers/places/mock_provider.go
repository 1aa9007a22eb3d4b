// Package places contains place-provider adapters. The mock provider serves
// a fixed candidate set for development and tests; production deployments
// plug in a real place-search client behind the same interface.
package places

import (
	"context"
	"strings"

	"github.com/winkslabs/dining-discovery/backend/internal/domain/entities"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/providers"
	apperrors "github.com/winkslabs/dining-discovery/backend/pkg/errors"
)

// MockProvider implements providers.PlaceProvider with an in-memory data set.
type MockProvider struct {
	businesses []*entities.Business
}

var _ providers.PlaceProvider = (*MockProvider)(nil)

// NewMockProvider creates a mock provider with a small seeded data set.
func NewMockProvider() *MockProvider {
	return &MockProvider{businesses: seedBusinesses()}
}

// NewMockProviderWithData creates a mock provider serving the given set.
func NewMockProviderWithData(businesses []*entities.Business) *MockProvider {
	return &MockProvider{businesses: businesses}
}

// NearbySearch returns seeded businesses within radiusMiles of center,
// optionally filtered by a keyword match on name or type tags.
func (p *MockProvider) NearbySearch(ctx context.Context, center entities.Location, radiusMiles float64, keyword string) ([]*entities.Business, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	var out []*entities.Business
	for _, b := range p.businesses {
		if b.Location != nil && entities.DistanceMilesBetween(center, *b.Location) > radiusMiles {
			continue
		}
		if keyword != "" && !matchesKeyword(b, keyword) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// Details returns a business by id.
func (p *MockProvider) Details(ctx context.Context, placeID string) (*entities.Business, error) {
	for _, b := range p.businesses {
		if b.ID == placeID {
			return b, nil
		}
	}
	return nil, apperrors.NewNotFoundError("place " + placeID + " not found")
}

func matchesKeyword(b *entities.Business, keyword string) bool {
	if strings.Contains(strings.ToLower(b.Name), keyword) {
		return true
	}
	for _, t := range b.Types {
		if strings.Contains(strings.ToLower(t), keyword) {
			return true
		}
	}
	return false
}

func ptrInt(v int) *int { return &v }

func ptrFloat(v float64) *float64 { return &v }

func seedBusinesses() []*entities.Business {
	return []*entities.Business{
		{
			ID: "mock-trattoria", Name: "Nonna's Trattoria",
			Types:      []string{"italian_restaurant", "restaurant"},
			PriceLevel: ptrInt(2), Rating: ptrFloat(4.6), RatingCount: ptrInt(240),
			WinksScore: ptrFloat(82),
			Location:   &entities.Location{Latitude: 37.7749, Longitude: -122.4194},
		},
		{
			ID: "mock-taqueria", Name: "El Camino Taqueria",
			Types:      []string{"mexican_restaurant", "meal_takeaway"},
			PriceLevel: ptrInt(1), Rating: ptrFloat(4.4), RatingCount: ptrInt(410),
			WinksScore: ptrFloat(74),
			Location:   &entities.Location{Latitude: 37.7689, Longitude: -122.4210},
		},
		{
			ID: "mock-sushi", Name: "Kaiyo Sushi Bar",
			Types:      []string{"sushi_restaurant", "japanese_restaurant"},
			PriceLevel: ptrInt(3), Rating: ptrFloat(4.7), RatingCount: ptrInt(180),
			WinksScore: ptrFloat(88),
			Location:   &entities.Location{Latitude: 37.7810, Longitude: -122.4110},
		},
		{
			ID: "mock-vegan-cafe", Name: "Green Fork Cafe",
			Types:      []string{"cafe", "vegan_restaurant", "breakfast_restaurant"},
			PriceLevel: ptrInt(2), Rating: ptrFloat(4.3), RatingCount: ptrInt(95),
			WinksScore: ptrFloat(69),
			Location:   &entities.Location{Latitude: 37.7720, Longitude: -122.4300},
		},
		{
			ID: "mock-burger-chain", Name: "McDonald's",
			Types:      []string{"fast_food_restaurant", "meal_takeaway"},
			PriceLevel: ptrInt(1), Rating: ptrFloat(3.8), RatingCount: ptrInt(3200),
			Location:   &entities.Location{Latitude: 37.7760, Longitude: -122.4170},
		},
	}
}
