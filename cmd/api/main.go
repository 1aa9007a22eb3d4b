package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/winkslabs/dining-discovery/backend/internal/adapters/providers/places"
	"github.com/winkslabs/dining-discovery/backend/internal/adapters/store"
	"github.com/winkslabs/dining-discovery/backend/internal/api/handlers"
	"github.com/winkslabs/dining-discovery/backend/internal/api/routes"
	"github.com/winkslabs/dining-discovery/backend/internal/application/services"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/entities"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/providers"
	"github.com/winkslabs/dining-discovery/backend/internal/infrastructure/cache"
	redisclient "github.com/winkslabs/dining-discovery/backend/internal/infrastructure/clients/redis"
	"github.com/winkslabs/dining-discovery/backend/internal/infrastructure/observability"
	"github.com/winkslabs/dining-discovery/backend/pkg/config"
)

func main() {
	// Load .env if present; real deployments set environment variables
	// directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env, cfg.Server.LogLevel)
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// The attribute store is optional: without Redis every attribute is
	// inferred locally and nothing is persisted.
	var attributeStore providers.AttributeStore
	if cfg.Redis.Enabled {
		redisClient, err := redisclient.NewClient(&cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, running with inference only")
		} else {
			defer redisClient.Close()
			attributeStore = store.NewRedisAttributeStore(redisClient, cfg.Ranking.StoreTTL)
			logger.Info().Msg("redis attribute store initialized")
		}
	}

	caches := cache.NewRankingCaches(cache.Config{
		AttributeTTL:     cfg.Cache.AttributeTTL,
		AttributeEntries: cfg.Cache.AttributeEntries,
		ScoreTTL:         cfg.Cache.ScoreTTL,
		ScoreEntries:     cfg.Cache.ScoreEntries,
		BatchTTL:         cfg.Cache.BatchTTL,
		BatchEntries:     cfg.Cache.BatchEntries,
	})
	tracker := observability.NewPerformanceTracker()

	scoringService := services.NewScoringService(entities.DefaultCategoryWeights())
	inferenceService := services.NewInferenceService()
	rankingService := services.NewRankingService(
		scoringService,
		inferenceService,
		attributeStore,
		caches,
		tracker,
		metrics,
		services.RankingConfig{
			BatchSize:            cfg.Ranking.BatchSize,
			MaxConcurrentBatches: int64(cfg.Ranking.MaxConcurrentBatches),
		},
	)

	placeProvider := places.NewMockProvider()

	exploreHandler := handlers.NewExploreHandler(rankingService, placeProvider, caches, tracker)
	router := routes.NewRouter(exploreHandler, metrics)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
}
