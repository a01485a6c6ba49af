// README: Entry point; loads config, wires providers and services, serves HTTP until SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"wayfarer/internal/ai"
	"wayfarer/internal/config"
	httptransport "wayfarer/internal/http"
	"wayfarer/internal/http/handlers"
	"wayfarer/internal/imagegen"
	"wayfarer/internal/infra"
	"wayfarer/internal/logger"
	"wayfarer/internal/maps"
	"wayfarer/internal/modules/audit"
	"wayfarer/internal/modules/destinations"
	"wayfarer/internal/modules/plans"
	"wayfarer/internal/modules/users"
	"wayfarer/internal/normalize"
	"wayfarer/internal/search"
	"wayfarer/internal/service"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     "wayfarer@" + version,
		}); err != nil {
			log.WithError(err).Warn("sentry init failed", nil)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pingers := map[string]handlers.Pinger{}

	var dbPool *pgxpool.Pool
	if cfg.DB.DSN != "" {
		dbPool, err = infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer dbPool.Close()
		pingers["postgres"] = dbPool.Ping
	}
	var auditStore *audit.Store
	if dbPool != nil {
		auditStore = audit.NewStore(dbPool)
	}
	auditSvc := audit.NewService(auditStore)

	var (
		planRepo plans.Repository
		userRepo users.Repository
	)
	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		log.WithError(err).Warn("redis unavailable; plans and users kept in memory", nil)
		planRepo = plans.NewMemoryStore()
		userRepo = users.NewMemoryStore()
	} else {
		defer func(c *redis.Client) { _ = c.Close() }(redisClient)
		planRepo = plans.NewRedisStore(redisClient)
		userRepo = users.NewRedisStore(redisClient)
		pingers["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	textProvider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
	if err != nil {
		return fmt.Errorf("init gemini: %w", err)
	}
	defer func() { _ = textProvider.Close() }()
	gateway := ai.NewGateway(textProvider, log.With(logger.Fields{"component": "gateway"}), auditSvc)

	imageProvider, err := imagegen.NewGeminiImageProvider(ctx, cfg.AI.GeminiKey, cfg.AI.ImageModel)
	if err != nil {
		return fmt.Errorf("init gemini images: %w", err)
	}
	images := imagegen.NewGenerator(imageProvider, cfg.AI.ImageConcurrency, log.With(logger.Fields{"component": "imagegen"}))

	searchClient := search.NewClient(cfg.AI.PerplexityKey, cfg.AI.PerplexityBaseURL, log.With(logger.Fields{"component": "search"}), auditSvc).
		WithTimeout(cfg.AI.SearchTimeout)
	if cfg.AI.PerplexityKey == "" {
		log.Warn("PERPLEXITY_API_KEY not set; /travel/options will answer 503", nil)
	}

	normalizer, err := normalize.New(log.With(logger.Fields{"component": "normalize"}))
	if err != nil {
		return err
	}

	planner := service.NewTravelPlanner(gateway, images, searchClient, normalizer, service.Options{
		ItineraryModel:     cfg.AI.ItineraryModel,
		SearchModel:        cfg.AI.SearchModel,
		ItineraryTimeout:   cfg.AI.ItineraryTimeout,
		StaticRoot:         cfg.Static.Root,
		StaticURLPrefix:    cfg.Static.URLPrefix,
		MaxImagesPerEntity: cfg.AI.MaxImagesPerEntity,
		EntityConcurrency:  cfg.AI.EntityConcurrency,
	}, log.With(logger.Fields{"component": "planner"}))

	if err := imagegen.EnsureDir(cfg.Static.Root); err != nil {
		return err
	}

	deps := httptransport.RouterDeps{
		Planner:      planner,
		Plans:        plans.NewService(planRepo),
		Destinations: destinations.NewService(),
		Users:        users.NewService(userRepo),
		Pingers:      pingers,
		Log:          log,
		Version:      version,
		StaticRoot:   cfg.Static.Root,
		StaticPrefix: cfg.Static.URLPrefix,
		CORSOrigins:  cfg.HTTP.CORSOrigins,
	}
	if auditSvc.Enabled() {
		deps.Audit = auditSvc
	}
	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			return err
		}
		places, err := maps.NewPlacesService(cfg.Maps.APIKey)
		if err != nil {
			return err
		}
		deps.Routes, deps.Places = routes, places
	}

	gin.SetMode(gin.ReleaseMode)
	server := httptransport.NewServer(httptransport.ServerConfig{
		Addr:         cfg.HTTP.Addr,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}, httptransport.NewRouter(deps), log)

	return server.Run(ctx)
}
