package providers

import (
	"context"

	"github.com/winkslabs/dining-discovery/backend/internal/domain/entities"
)

// PlaceProvider defines the interface for the external place-search service
// that supplies raw candidate businesses (category tags, price level, rating,
// rating count, coordinates).
type PlaceProvider interface {
	// NearbySearch returns candidate businesses around a center point.
	NearbySearch(ctx context.Context, center entities.Location, radiusMiles float64, keyword string) ([]*entities.Business, error)

	// Details returns a single business by provider id.
	Details(ctx context.Context, placeID string) (*entities.Business, error)
}
