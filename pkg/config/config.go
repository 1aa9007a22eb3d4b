package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Ranking RankingConfig
	OTEL    OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host     string
	Port     int
	Env      string
	LogLevel string
}

// RedisConfig holds Redis configuration for the attribute store
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

// CacheConfig bounds the in-memory ranking caches
type CacheConfig struct {
	AttributeTTL     time.Duration
	AttributeEntries int
	ScoreTTL         time.Duration
	ScoreEntries     int
	BatchTTL         time.Duration
	BatchEntries     int
}

// RankingConfig holds batch orchestration settings
type RankingConfig struct {
	BatchSize            int
	MaxConcurrentBatches int
	StoreTTL             time.Duration
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			Port:     getEnvAsInt("SERVER_PORT", 8080),
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},
		Cache: CacheConfig{
			AttributeTTL:     getEnvAsDuration("CACHE_ATTRIBUTE_TTL", 30*time.Minute),
			AttributeEntries: getEnvAsInt("CACHE_ATTRIBUTE_ENTRIES", 500),
			ScoreTTL:         getEnvAsDuration("CACHE_SCORE_TTL", 10*time.Minute),
			ScoreEntries:     getEnvAsInt("CACHE_SCORE_ENTRIES", 2000),
			BatchTTL:         getEnvAsDuration("CACHE_BATCH_TTL", 5*time.Minute),
			BatchEntries:     getEnvAsInt("CACHE_BATCH_ENTRIES", 100),
		},
		Ranking: RankingConfig{
			BatchSize:            getEnvAsInt("RANKING_BATCH_SIZE", 20),
			MaxConcurrentBatches: getEnvAsInt("RANKING_MAX_CONCURRENT_BATCHES", 5),
			StoreTTL:             getEnvAsDuration("ATTRIBUTE_STORE_TTL", 24*time.Hour),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "dining-discovery"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
