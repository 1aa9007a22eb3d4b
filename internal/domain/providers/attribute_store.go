package providers

import (
	"context"
	"errors"

	"github.com/winkslabs/dining-discovery/backend/internal/domain/entities"
)

// ErrAttributesNotFound is returned when no stored attributes exist for a
// business.
var ErrAttributesNotFound = errors.New("business attributes not found")

// AttributeStore defines the interface for the persistent business-attribute
// store. Put failures are non-fatal to ranking: inferred attributes stay
// locally cached and usable even if persistence fails.
type AttributeStore interface {
	// Get retrieves stored attributes for a business, or
	// ErrAttributesNotFound.
	Get(ctx context.Context, businessID string) (*entities.BusinessAttributes, error)

	// BatchGet retrieves stored attributes for many businesses at once.
	// Missing ids are simply absent from the returned map.
	BatchGet(ctx context.Context, businessIDs []string) (map[string]*entities.BusinessAttributes, error)

	// Put persists attributes for a business.
	Put(ctx context.Context, businessID string, attrs *entities.BusinessAttributes) error
}
