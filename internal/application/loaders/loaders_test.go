package loaders

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/entities"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/providers"
)

type stubStore struct {
	mu        sync.Mutex
	data      map[string]*entities.BusinessAttributes
	batchGets int
}

func (s *stubStore) Get(ctx context.Context, businessID string) (*entities.BusinessAttributes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attrs, ok := s.data[businessID]; ok {
		return attrs, nil
	}
	return nil, providers.ErrAttributesNotFound
}

func (s *stubStore) BatchGet(ctx context.Context, businessIDs []string) (map[string]*entities.BusinessAttributes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchGets++
	out := make(map[string]*entities.BusinessAttributes)
	for _, id := range businessIDs {
		if attrs, ok := s.data[id]; ok {
			out[id] = attrs
		}
	}
	return out, nil
}

func (s *stubStore) Put(ctx context.Context, businessID string, attrs *entities.BusinessAttributes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[businessID] = attrs
	return nil
}

func TestLoadMany_Positional(t *testing.T) {
	store := &stubStore{data: map[string]*entities.BusinessAttributes{
		"a": {BusinessID: "a", CuisineTypes: []string{"thai"}},
		"c": {BusinessID: "c", CuisineTypes: []string{"italian"}},
	}}
	loader := NewAttributeLoader(store)

	attrs, errs := loader.LoadMany(context.Background(), []string{"a", "b", "c"})
	require.Len(t, attrs, 3)

	assert.Equal(t, "a", attrs[0].BusinessID)
	assert.Nil(t, attrs[1])
	assert.Equal(t, "c", attrs[2].BusinessID)

	foundMissing := false
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, providers.ErrAttributesNotFound)
			foundMissing = true
		}
	}
	assert.True(t, foundMissing)
}

func TestLoadMany_BatchesIntoOneStoreRead(t *testing.T) {
	store := &stubStore{data: map[string]*entities.BusinessAttributes{
		"a": {BusinessID: "a"},
		"b": {BusinessID: "b"},
	}}
	loader := NewAttributeLoader(store)

	_, _ = loader.LoadMany(context.Background(), []string{"a", "b"})

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 1, store.batchGets)
}
