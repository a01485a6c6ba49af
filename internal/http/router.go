// README: HTTP router registration.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wayfarer/internal/http/handlers"
	"wayfarer/internal/http/middleware"
	"wayfarer/internal/logger"
	"wayfarer/internal/modules/destinations"
	"wayfarer/internal/modules/plans"
	"wayfarer/internal/modules/users"
)

// RouterDeps are the services behind the HTTP surface. Routes, Places and
// Audit may be nil; their endpoints then answer 503.
type RouterDeps struct {
	Planner      handlers.Planner
	Plans        *plans.Service
	Destinations *destinations.Service
	Users        *users.Service
	Routes       handlers.RouteEstimator
	Places       handlers.PlaceSearcher
	Audit        handlers.AuditSummarizer
	Pingers      map[string]handlers.Pinger
	Log          logger.Logger
	Version      string
	StaticRoot   string
	StaticPrefix string
	CORSOrigins  []string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	r := gin.New()
	r.Use(
		middleware.RequestTracking(deps.Log),
		middleware.Recovery(deps.Log),
		middleware.Sentry(),
		middleware.ReportServerErrors(),
		middleware.CORS(deps.CORSOrigins),
	)

	if deps.StaticRoot != "" {
		prefix := deps.StaticPrefix
		if prefix == "" {
			prefix = "/static"
		}
		r.Static(prefix, deps.StaticRoot)
	}

	system := handlers.NewSystemHandler(deps.Version, deps.Pingers, deps.Audit)
	r.GET("/health", system.Health)
	r.GET("/health/detailed", system.DetailedHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	travel := r.Group("/travel")
	travel.GET("/", system.Info)
	travel.GET("/audit/summary", system.AuditSummary)

	gen := handlers.NewTravelHandler(deps.Planner)
	travel.POST("/itinerary", gen.Itinerary)
	travel.POST("/options", gen.Options)

	plansHandler := handlers.NewPlansHandler(deps.Plans)
	travel.GET("/plans", plansHandler.List)
	travel.POST("/plans", plansHandler.Create)
	travel.GET("/plans/:id", plansHandler.Get)

	destHandler := handlers.NewDestinationsHandler(deps.Destinations)
	travel.GET("/destinations", destHandler.List)
	travel.POST("/destinations", destHandler.Create)

	mapsHandler := handlers.NewMapsHandler(deps.Routes, deps.Places)
	travel.GET("/route-estimate", mapsHandler.RouteEstimate)
	travel.GET("/places", mapsHandler.Places)

	usersHandler := handlers.NewUsersHandler(deps.Users)
	user := r.Group("/user")
	user.GET("/", usersHandler.Info)
	user.GET("/users", usersHandler.List)
	user.POST("/users", usersHandler.Create)
	user.GET("/profile", usersHandler.Profile)
	user.PUT("/profile", usersHandler.UpdateProfile)

	return r
}
