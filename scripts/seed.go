package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/winkslabs/dining-discovery/backend/internal/adapters/providers/places"
	"github.com/winkslabs/dining-discovery/backend/internal/adapters/store"
	"github.com/winkslabs/dining-discovery/backend/internal/application/services"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/entities"
	redisclient "github.com/winkslabs/dining-discovery/backend/internal/infrastructure/clients/redis"
	"github.com/winkslabs/dining-discovery/backend/internal/infrastructure/observability"
	"github.com/winkslabs/dining-discovery/backend/pkg/config"
)

// Seeds the Redis attribute store from the mock place provider so a fresh
// environment serves stored attributes instead of inferring everything on the
// first request. Run with: go run ./scripts
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-seed", cfg.Server.Env, cfg.Server.LogLevel)
	logger := observability.GetLogger()

	redisClient, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis unavailable, nothing to seed")
	}
	defer redisClient.Close()

	attributeStore := store.NewRedisAttributeStore(redisClient, cfg.Ranking.StoreTTL)
	inference := services.NewInferenceService()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// A generous radius from the mock data's center picks up every seeded
	// business.
	center := entities.Location{Latitude: 37.7749, Longitude: -122.4194}
	businesses, err := places.NewMockProvider().NearbySearch(ctx, center, 50, "")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to list seed businesses")
	}

	seeded := 0
	for _, b := range businesses {
		attrs := inference.InferAttributes(b, nil)
		if err := attributeStore.Put(ctx, b.ID, attrs); err != nil {
			logger.Error().Err(err).Str("business_id", b.ID).Msg("failed to seed attributes")
			continue
		}
		seeded++
	}

	logger.Info().Int("seeded", seeded).Int("total", len(businesses)).Msg("attribute store seeded")
}
