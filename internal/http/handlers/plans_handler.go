package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/modules/destinations"
	"wayfarer/internal/modules/plans"
)

type PlansHandler struct {
	plans *plans.Service
}

func NewPlansHandler(svc *plans.Service) *PlansHandler {
	return &PlansHandler{plans: svc}
}

// List handles GET /travel/plans.
func (h *PlansHandler) List(c *gin.Context) {
	all, err := h.plans.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"plans": all})
}

// Create handles POST /travel/plans.
func (h *PlansHandler) Create(c *gin.Context) {
	var d plans.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.plans.Create(c.Request.Context(), d)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"message": "Travel plan created successfully", "plan": p})
}

// Get handles GET /travel/plans/:id.
func (h *PlansHandler) Get(c *gin.Context) {
	p, err := h.plans.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

type DestinationsHandler struct {
	destinations *destinations.Service
}

func NewDestinationsHandler(svc *destinations.Service) *DestinationsHandler {
	return &DestinationsHandler{destinations: svc}
}

// List handles GET /travel/destinations.
func (h *DestinationsHandler) List(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"destinations": h.destinations.Popular()})
}

// Create handles POST /travel/destinations.
func (h *DestinationsHandler) Create(c *gin.Context) {
	var d destinations.Destination
	if err := c.ShouldBindJSON(&d); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	d, err := h.destinations.Add(d)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"message": "Destination added successfully", "destination": d})
}
