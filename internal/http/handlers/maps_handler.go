package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/maps"
)

type RouteEstimator interface {
	Estimate(ctx context.Context, origin, destination, mode string) (maps.RouteEstimate, error)
}

type PlaceSearcher interface {
	Search(ctx context.Context, city, query string) ([]maps.Place, error)
}

// MapsHandler serves the Google Maps helpers. Nil services answer 503.
type MapsHandler struct {
	routes RouteEstimator
	places PlaceSearcher
}

func NewMapsHandler(routes RouteEstimator, places PlaceSearcher) *MapsHandler {
	return &MapsHandler{routes: routes, places: places}
}

// RouteEstimate handles GET /travel/route-estimate.
func (h *MapsHandler) RouteEstimate(c *gin.Context) {
	if h.routes == nil {
		writeServiceError(c, errFeatureDisabled)
		return
	}
	origin := strings.TrimSpace(c.Query("origin"))
	dest := strings.TrimSpace(c.Query("destination"))
	if origin == "" || dest == "" {
		writeError(c, http.StatusBadRequest, "origin and destination are required")
		return
	}
	est, err := h.routes.Estimate(c.Request.Context(), origin, dest, c.Query("mode"))
	if errors.Is(err, maps.ErrNoRoute) {
		writeError(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, est)
}

// Places handles GET /travel/places.
func (h *MapsHandler) Places(c *gin.Context) {
	if h.places == nil {
		writeServiceError(c, errFeatureDisabled)
		return
	}
	city := strings.TrimSpace(c.Query("city"))
	query := strings.TrimSpace(c.Query("query"))
	if city == "" || query == "" {
		writeError(c, http.StatusBadRequest, "city and query are required")
		return
	}
	places, err := h.places.Search(c.Request.Context(), city, query)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"places": places})
}
