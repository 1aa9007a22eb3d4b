// Package store contains attribute-store adapters backing the ranking
// engine's persistence contract.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/winkslabs/dining-discovery/backend/internal/domain/entities"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/providers"
	redisclient "github.com/winkslabs/dining-discovery/backend/internal/infrastructure/clients/redis"
	"github.com/winkslabs/dining-discovery/backend/pkg/retry"
)

const attributeKeyPrefix = "business:attrs:"

// RedisAttributeStore implements providers.AttributeStore on Redis. Reads go
// through a circuit breaker so a failing Redis degrades ranking to pure
// inference quickly instead of stalling every batch.
type RedisAttributeStore struct {
	client  *redisclient.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker
}

// NewRedisAttributeStore creates a store persisting attributes with the given
// TTL.
func NewRedisAttributeStore(client *redisclient.Client, ttl time.Duration) *RedisAttributeStore {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "attribute-store",
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &RedisAttributeStore{
		client:  client,
		ttl:     ttl,
		breaker: breaker,
	}
}

func attributeKey(businessID string) string {
	return attributeKeyPrefix + businessID
}

// Get retrieves stored attributes for one business.
func (s *RedisAttributeStore) Get(ctx context.Context, businessID string) (*entities.BusinessAttributes, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		data, err := s.client.Client().Get(ctx, attributeKey(businessID)).Bytes()
		if err == redis.Nil {
			return nil, providers.ErrAttributesNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read attributes: %w", err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	var attrs entities.BusinessAttributes
	if err := json.Unmarshal(result.([]byte), &attrs); err != nil {
		return nil, fmt.Errorf("failed to decode attributes for %s: %w", businessID, err)
	}
	return &attrs, nil
}

// BatchGet retrieves attributes for many businesses with one MGET. Ids with
// no stored attributes are absent from the returned map.
func (s *RedisAttributeStore) BatchGet(ctx context.Context, businessIDs []string) (map[string]*entities.BusinessAttributes, error) {
	if len(businessIDs) == 0 {
		return map[string]*entities.BusinessAttributes{}, nil
	}

	keys := make([]string, len(businessIDs))
	for i, id := range businessIDs {
		keys[i] = attributeKey(id)
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		values, err := s.client.Client().MGet(ctx, keys...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to batch-read attributes: %w", err)
		}
		return values, nil
	})
	if err != nil {
		return nil, err
	}

	values := result.([]interface{})
	out := make(map[string]*entities.BusinessAttributes, len(businessIDs))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var attrs entities.BusinessAttributes
		if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
			continue
		}
		out[businessIDs[i]] = &attrs
	}
	return out, nil
}

// Put persists attributes for a business, retrying transient write failures
// briefly.
func (s *RedisAttributeStore) Put(ctx context.Context, businessID string, attrs *entities.BusinessAttributes) error {
	data, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("failed to encode attributes for %s: %w", businessID, err)
	}
	err = retry.Do(ctx, retry.DefaultConfig(), func() error {
		return s.client.Client().Set(ctx, attributeKey(businessID), data, s.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to persist attributes for %s: %w", businessID, err)
	}
	return nil
}
