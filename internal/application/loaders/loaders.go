// Package loaders batches and deduplicates attribute-store reads issued by
// concurrent ranking runs.
package loaders

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/entities"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/providers"
)

// AttributeLoader wraps an AttributeStore with a batched dataloader so that
// per-business attribute reads collapse into BatchGet calls. Caching is left
// to the ranking caches; the loader itself does not memoize.
type AttributeLoader struct {
	loader *dataloader.Loader[string, *entities.BusinessAttributes]
}

// NewAttributeLoader creates a loader over the given store.
func NewAttributeLoader(store providers.AttributeStore) *AttributeLoader {
	batchFn := func(ctx context.Context, keys []string) []*dataloader.Result[*entities.BusinessAttributes] {
		results := make([]*dataloader.Result[*entities.BusinessAttributes], len(keys))
		found, err := store.BatchGet(ctx, keys)
		for i, key := range keys {
			switch {
			case err != nil:
				results[i] = &dataloader.Result[*entities.BusinessAttributes]{Error: err}
			case found[key] != nil:
				results[i] = &dataloader.Result[*entities.BusinessAttributes]{Data: found[key]}
			default:
				results[i] = &dataloader.Result[*entities.BusinessAttributes]{Error: providers.ErrAttributesNotFound}
			}
		}
		return results
	}

	return &AttributeLoader{
		loader: dataloader.NewBatchedLoader(
			batchFn,
			dataloader.WithCache[string, *entities.BusinessAttributes](&dataloader.NoCache[string, *entities.BusinessAttributes]{}),
		),
	}
}

// LoadMany fetches attributes for many ids in one batched round trip.
// The returned slice is positional; a nil entry means the store had no
// attributes for that id (or the read failed and inference should take over).
func (l *AttributeLoader) LoadMany(ctx context.Context, ids []string) ([]*entities.BusinessAttributes, []error) {
	thunk := l.loader.LoadMany(ctx, ids)
	return thunk()
}
