package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/winkslabs/dining-discovery/backend/internal/application/services"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/entities"
	"github.com/winkslabs/dining-discovery/backend/internal/domain/providers"
	"github.com/winkslabs/dining-discovery/backend/internal/infrastructure/cache"
	"github.com/winkslabs/dining-discovery/backend/internal/infrastructure/observability"
	apperrors "github.com/winkslabs/dining-discovery/backend/pkg/errors"
)

// ExploreHandler exposes the ranking engine and its cache/performance
// introspection endpoints.
type ExploreHandler struct {
	ranking *services.RankingService
	places  providers.PlaceProvider
	caches  *cache.RankingCaches
	tracker *observability.PerformanceTracker
}

// NewExploreHandler creates a new explore handler
func NewExploreHandler(ranking *services.RankingService, places providers.PlaceProvider, caches *cache.RankingCaches, tracker *observability.PerformanceTracker) *ExploreHandler {
	return &ExploreHandler{
		ranking: ranking,
		places:  places,
		caches:  caches,
		tracker: tracker,
	}
}

// RankRequest is the payload for POST /api/v1/explore/rank
type RankRequest struct {
	Businesses  []*entities.Business        `json:"businesses"`
	Preferences *entities.DiningPreferences `json:"preferences"`
	Location    *entities.Location          `json:"location,omitempty"`
}

// RankBusinesses handles POST /api/v1/explore/rank
func (h *ExploreHandler) RankBusinesses(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Businesses) == 0 {
		respondWithError(w, http.StatusBadRequest, "businesses is required")
		return
	}
	for _, b := range req.Businesses {
		if b == nil || b.ID == "" {
			respondWithError(w, http.StatusBadRequest, "every business needs an id")
			return
		}
	}

	// The scoring engine assumes validated preferences; sanitize once here at
	// the boundary.
	prefs := req.Preferences
	if prefs == nil {
		prefs = entities.DefaultPreferences()
	}
	prefs.Sanitize()

	result, err := h.ranking.Rank(r.Context(), req.Businesses, prefs, req.Location)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "ranking failed")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// SearchRequest is the payload for POST /api/v1/explore/search
type SearchRequest struct {
	Location    entities.Location           `json:"location"`
	RadiusMiles float64                     `json:"radius_miles"`
	Keyword     string                      `json:"keyword,omitempty"`
	Preferences *entities.DiningPreferences `json:"preferences"`
}

// SearchAndRank handles POST /api/v1/explore/search: fetch candidates from
// the place provider, then rank them against the caller's preferences.
func (h *ExploreHandler) SearchAndRank(w http.ResponseWriter, r *http.Request) {
	if h.places == nil {
		respondWithError(w, http.StatusServiceUnavailable, "place provider not configured")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RadiusMiles <= 0 {
		req.RadiusMiles = 5
	}

	candidates, err := h.places.NearbySearch(r.Context(), req.Location, req.RadiusMiles, req.Keyword)
	if err != nil {
		respondWithError(w, statusForError(err), "place search failed")
		return
	}
	if len(candidates) == 0 {
		respondWithJSON(w, http.StatusOK, &services.RankResult{Ranked: []*entities.BusinessWithScore{}})
		return
	}

	prefs := req.Preferences
	if prefs == nil {
		prefs = entities.DefaultPreferences()
	}
	prefs.Sanitize()

	result, err := h.ranking.Rank(r.Context(), candidates, prefs, &req.Location)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "ranking failed")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// CacheStats handles GET /api/v1/explore/cache-stats
func (h *ExploreHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.caches.StatsByCache())
}

// PerformanceStats handles GET /api/v1/explore/performance
func (h *ExploreHandler) PerformanceStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.tracker.Stats())
}

// ClearCaches handles POST /api/v1/explore/cache/clear
func (h *ExploreHandler) ClearCaches(w http.ResponseWriter, r *http.Request) {
	h.caches.Clear()
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// ClearMetrics handles POST /api/v1/explore/metrics/clear
func (h *ExploreHandler) ClearMetrics(w http.ResponseWriter, r *http.Request) {
	h.tracker.Reset()
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Helper functions
func statusForError(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
