// README: Travel generation handlers (itinerary and transport options).
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/types"
)

// Planner is the orchestration surface the travel handlers depend on.
type Planner interface {
	PlanItinerary(ctx context.Context, req types.ItineraryRequest) (types.ItineraryResponse, error)
	PlanOptions(ctx context.Context, req types.TravelOptionsRequest) (types.TravelOptionsResponse, error)
}

type TravelHandler struct {
	planner Planner
}

func NewTravelHandler(planner Planner) *TravelHandler {
	return &TravelHandler{planner: planner}
}

// Itinerary handles POST /travel/itinerary.
func (h *TravelHandler) Itinerary(c *gin.Context) {
	var req types.ItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	resp, err := h.planner.PlanItinerary(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

// Options handles POST /travel/options.
func (h *TravelHandler) Options(c *gin.Context) {
	var req types.TravelOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	resp, err := h.planner.PlanOptions(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}
