package routes

import (
	"net/http"

	"github.com/winkslabs/dining-discovery/backend/internal/api/handlers"
	"github.com/winkslabs/dining-discovery/backend/internal/api/middleware"
	"github.com/winkslabs/dining-discovery/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	exploreHandler *handlers.ExploreHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(exploreHandler *handlers.ExploreHandler, metrics *observability.Metrics) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		exploreHandler: exploreHandler,
		metrics:        metrics,
	}
}

// Setup registers all routes and returns the wrapped handler
func (rt *Router) Setup() http.Handler {
	rt.mux.HandleFunc("POST /api/v1/explore/rank", rt.exploreHandler.RankBusinesses)
	rt.mux.HandleFunc("POST /api/v1/explore/search", rt.exploreHandler.SearchAndRank)
	rt.mux.HandleFunc("GET /api/v1/explore/cache-stats", rt.exploreHandler.CacheStats)
	rt.mux.HandleFunc("GET /api/v1/explore/performance", rt.exploreHandler.PerformanceStats)
	rt.mux.HandleFunc("POST /api/v1/explore/cache/clear", rt.exploreHandler.ClearCaches)
	rt.mux.HandleFunc("POST /api/v1/explore/metrics/clear", rt.exploreHandler.ClearMetrics)

	rt.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	var handler http.Handler = rt.mux
	handler = middleware.CacheControl(handler)
	handler = middleware.Compression(handler)
	handler = middleware.CORSMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	if rt.metrics != nil {
		handler = middleware.ObservabilityMiddleware(rt.metrics)(handler)
	}
	return handler
}
