// README: Panic recovery and Sentry reporting middleware.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"wayfarer/internal/logger"
)

const sentryFlushTimeout = 2 * time.Second

// Sentry attaches a hub to every request. Panics are re-raised for Recovery.
func Sentry() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         sentryFlushTimeout,
	})
}

// Recovery turns panics into a 500 with the usual error body. It must run
// outside Sentry, which reports the panic and re-raises it.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", logger.Fields{
					"request_id": c.GetString(RequestIDKey),
					"panic":      fmt.Sprint(r),
					"path":       c.Request.URL.Path,
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

// ReportServerErrors sends errors attached to 5xx responses to Sentry.
func ReportServerErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() < http.StatusInternalServerError || len(c.Errors) == 0 {
			return
		}
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag(RequestIDKey, c.GetString(RequestIDKey))
				hub.CaptureException(c.Errors.Last().Err)
			})
		}
	}
}
