// README: Info, health and audit endpoints.
package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/modules/audit"
)

const serviceName = "Travel Planner API"

// Pinger checks one backing dependency.
type Pinger func(ctx context.Context) error

type AuditSummarizer interface {
	Summary(ctx context.Context, window time.Duration) ([]audit.SummaryRow, error)
}

type SystemHandler struct {
	version string
	pingers map[string]Pinger
	audit   AuditSummarizer
}

func NewSystemHandler(version string, pingers map[string]Pinger, auditSvc AuditSummarizer) *SystemHandler {
	return &SystemHandler{version: version, pingers: pingers, audit: auditSvc}
}

var endpoints = gin.H{
	"itinerary":      "POST /travel/itinerary",
	"options":        "POST /travel/options",
	"plans":          "GET|POST /travel/plans",
	"plan":           "GET /travel/plans/:id",
	"destinations":   "GET|POST /travel/destinations",
	"route_estimate": "GET /travel/route-estimate",
	"places":         "GET /travel/places",
	"audit_summary":  "GET /travel/audit/summary",
	"users":          "GET|POST /user/users",
	"profile":        "GET|PUT /user/profile",
}

// Info handles GET /travel/.
func (h *SystemHandler) Info(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"message": "Travel API endpoints", "endpoints": endpoints})
}

// Health handles GET /health.
func (h *SystemHandler) Health(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
}

// DetailedHealth handles GET /health/detailed. A failing dependency marks
// the service degraded but still answers 200.
func (h *SystemHandler) DetailedHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	deps := gin.H{}
	names := make([]string, 0, len(h.pingers))
	for name := range h.pingers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.pingers[name](ctx); err != nil {
			deps[name] = gin.H{"status": "down", "error": err.Error()}
			status = "degraded"
			continue
		}
		deps[name] = gin.H{"status": "up"}
	}

	writeJSON(c, http.StatusOK, gin.H{
		"status":       status,
		"service":      serviceName,
		"version":      h.version,
		"dependencies": deps,
		"endpoints":    endpoints,
	})
}

// AuditSummary handles GET /travel/audit/summary?window=24h.
func (h *SystemHandler) AuditSummary(c *gin.Context) {
	if h.audit == nil {
		writeServiceError(c, audit.ErrDisabled)
		return
	}
	window := 24 * time.Hour
	if raw := c.Query("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			writeError(c, http.StatusBadRequest, "window must be a positive duration such as 24h")
			return
		}
		window = d
	}
	rows, err := h.audit.Summary(c.Request.Context(), window)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"window": window.String(), "summary": rows})
}
