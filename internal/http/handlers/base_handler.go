// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/maps"
	"wayfarer/internal/modules/audit"
	"wayfarer/internal/modules/destinations"
	"wayfarer/internal/modules/plans"
	"wayfarer/internal/modules/users"
	"wayfarer/internal/search"
	"wayfarer/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps known sentinel errors to a status; everything else
// is a generic 500 carrying the error text.
func writeServiceError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, plans.ErrInvalid),
		errors.Is(err, destinations.ErrInvalid),
		errors.Is(err, users.ErrInvalid),
		errors.Is(err, maps.ErrBadMode):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, plans.ErrNotFound),
		errors.Is(err, users.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, search.ErrNotConfigured),
		errors.Is(err, audit.ErrDisabled),
		errors.Is(err, errFeatureDisabled):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, err.Error())
	}
}

var errFeatureDisabled = errors.New("feature is not configured")
