// README: Orchestration layer; sequences the gateway, image fan-out and normalizer for each travel flow.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"wayfarer/internal/ai"
	"wayfarer/internal/imagegen"
	"wayfarer/internal/logger"
	"wayfarer/internal/search"
	"wayfarer/internal/types"
)

// ErrInvalidRequest wraps every input validation failure.
var ErrInvalidRequest = errors.New("invalid request")

const (
	defaultNumDays = 4
	maxNumDays     = 14
)

var recencyFilters = map[string]bool{"hour": true, "day": true, "week": true, "month": true, "year": true}

// ImageGenerator fans photo prompts out to an image provider.
type ImageGenerator interface {
	Generate(ctx context.Context, prompts []string, destDir, namePrefix string) []imagegen.GeneratedImageFile
}

// SearchClient performs one web-grounded chat completion.
type SearchClient interface {
	ChatCompletion(ctx context.Context, req search.Request) (string, error)
}

// OptionsNormalizer turns raw search output into a TravelOptionsResponse.
type OptionsNormalizer interface {
	Normalize(raw, origin, destination string) (types.TravelOptionsResponse, error)
}

// Options tunes a TravelPlanner. Zero values fall back to the defaults below.
type Options struct {
	ItineraryModel     string
	SearchModel        string
	ItineraryTimeout   time.Duration
	StaticRoot         string
	StaticURLPrefix    string
	MaxImagesPerEntity int
	EntityConcurrency  int
}

func (o Options) withDefaults() Options {
	if o.ItineraryModel == "" {
		o.ItineraryModel = "gemini-2.5-pro"
	}
	if o.SearchModel == "" {
		o.SearchModel = "sonar"
	}
	if o.ItineraryTimeout <= 0 {
		o.ItineraryTimeout = 120 * time.Second
	}
	if o.StaticRoot == "" {
		o.StaticRoot = "static"
	}
	if o.StaticURLPrefix == "" {
		o.StaticURLPrefix = "/static"
	}
	o.StaticURLPrefix = "/" + strings.Trim(o.StaticURLPrefix, "/")
	if o.MaxImagesPerEntity <= 0 {
		o.MaxImagesPerEntity = 2
	}
	if o.EntityConcurrency <= 0 {
		o.EntityConcurrency = 4
	}
	return o
}

// TravelPlanner orchestrates itinerary and travel-options generation.
type TravelPlanner struct {
	gateway    *ai.Gateway
	images     ImageGenerator
	search     SearchClient
	normalizer OptionsNormalizer
	opts       Options
	log        logger.Logger
}

// NewTravelPlanner wires the collaborators. search may be nil, in which case
// PlanOptions fails with search.ErrNotConfigured.
func NewTravelPlanner(gateway *ai.Gateway, images ImageGenerator, searchClient SearchClient, normalizer OptionsNormalizer, opts Options, log logger.Logger) *TravelPlanner {
	if log == nil {
		log = logger.NewNop()
	}
	return &TravelPlanner{
		gateway:    gateway,
		images:     images,
		search:     searchClient,
		normalizer: normalizer,
		opts:       opts.withDefaults(),
		log:        log,
	}
}

// PlanItinerary generates a day-by-day itinerary and attaches generated photos
// to every entity that carries photo prompts.
func (p *TravelPlanner) PlanItinerary(ctx context.Context, req types.ItineraryRequest) (types.ItineraryResponse, error) {
	req, err := validateItinerary(req)
	if err != nil {
		return types.ItineraryResponse{}, err
	}

	fallback := types.ItineraryResponse{
		HomeCity:        req.HomeCity,
		DestinationCity: req.DestinationCity,
		NumDays:         req.Days(),
		Days:            []types.ItineraryDay{},
		OverallTips:     []string{},
	}
	res := ai.Generate(ctx, p.gateway, ai.GenerationRequest{
		Model:             p.opts.ItineraryModel,
		Parts:             []string{itineraryUserPrompt(req)},
		SystemInstruction: itinerarySystemPrompt,
		Schema:            itinerarySchema,
		Temperature:       ai.Float32(0.35),
		TopP:              ai.Float32(0.9),
		TopK:              ai.Int32(40),
		MaxOutputTokens:   4096,
		Timeout:           p.opts.ItineraryTimeout,
	}, fallback)

	itin := res.Value
	itin.HomeCity = req.HomeCity
	itin.DestinationCity = req.DestinationCity
	itin.NumDays = req.Days()
	itin.EnsureSlices()

	if err := p.attachImages(ctx, &itin); err != nil {
		return types.ItineraryResponse{}, err
	}

	p.log.Info("itinerary planned", logger.Fields{
		"destination": req.DestinationCity,
		"days":        len(itin.Days),
		"outcome":     string(res.Outcome),
	})
	return itin, nil
}

// attachImages runs one fan-out per entity. Entities are processed
// concurrently and each writes only to its own slot, so the response keeps
// provider order.
func (p *TravelPlanner) attachImages(ctx context.Context, itin *types.ItineraryResponse) error {
	if p.images == nil {
		return nil
	}
	outDir := filepath.Join(p.opts.StaticRoot, "itineraries", Slugify(itin.DestinationCity, "destination"))
	if err := imagegen.EnsureDir(outDir); err != nil {
		return fmt.Errorf("prepare itinerary images: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.EntityConcurrency)
	for di := range itin.Days {
		for ei := range itin.Days[di].Entities {
			entity := &itin.Days[di].Entities[ei]
			prompts := entity.PhotoPrompts
			if len(prompts) > p.opts.MaxImagesPerEntity {
				prompts = prompts[:p.opts.MaxImagesPerEntity]
			}
			if len(prompts) == 0 {
				entity.ImageURLs = []string{}
				continue
			}
			g.Go(func() error {
				files := p.images.Generate(gctx, prompts, outDir, Slugify(entity.Name, "entity"))
				urls := make([]string, 0, len(files))
				for _, f := range files {
					u, err := p.publicURL(f.Path)
					if err != nil {
						return err
					}
					urls = append(urls, u)
				}
				entity.ImageURLs = urls
				return nil
			})
		}
	}
	return g.Wait()
}

// publicURL maps a file under the static root to its served URL.
func (p *TravelPlanner) publicURL(path string) (string, error) {
	root, err := filepath.Abs(p.opts.StaticRoot)
	if err != nil {
		return "", fmt.Errorf("resolve static root: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve image path: %w", err)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("image %s is outside static root %s", abs, root)
	}
	return p.opts.StaticURLPrefix + "/" + filepath.ToSlash(rel), nil
}

// PlanOptions researches transport options between two cities.
func (p *TravelPlanner) PlanOptions(ctx context.Context, req types.TravelOptionsRequest) (types.TravelOptionsResponse, error) {
	req, err := validateOptions(req)
	if err != nil {
		return types.TravelOptionsResponse{}, err
	}
	if p.search == nil {
		return types.TravelOptionsResponse{}, search.ErrNotConfigured
	}

	raw, err := p.search.ChatCompletion(ctx, search.Request{
		Model:             p.opts.SearchModel,
		SystemPrompt:      travelOptionsSystemPrompt,
		UserPrompt:        travelOptionsUserPrompt(req),
		Temperature:       0.2,
		TopP:              0.9,
		MaxTokens:         1400,
		SearchContextSize: "high",
		RecencyFilter:     req.RecencyFilter,
	})
	if err != nil {
		return types.TravelOptionsResponse{}, fmt.Errorf("search travel options: %w", err)
	}

	out, err := p.normalizer.Normalize(raw, req.OriginCity, req.DestinationCity)
	if err != nil {
		return types.TravelOptionsResponse{}, fmt.Errorf("normalize travel options: %w", err)
	}
	p.log.Info("travel options planned", logger.Fields{
		"origin":      req.OriginCity,
		"destination": req.DestinationCity,
		"modes":       len(out.Modes),
	})
	return out, nil
}

func validateItinerary(req types.ItineraryRequest) (types.ItineraryRequest, error) {
	req.HomeCity = strings.TrimSpace(req.HomeCity)
	req.DestinationCity = strings.TrimSpace(req.DestinationCity)
	if req.HomeCity == "" {
		return req, fmt.Errorf("%w: home_city is required", ErrInvalidRequest)
	}
	if req.DestinationCity == "" {
		return req, fmt.Errorf("%w: destination_city is required", ErrInvalidRequest)
	}
	if req.NumDays == nil {
		req.NumDays = types.DaysOf(defaultNumDays)
	}
	if days := req.Days(); days < 1 || days > maxNumDays {
		return req, fmt.Errorf("%w: num_days must be between 1 and %d", ErrInvalidRequest, maxNumDays)
	}
	interests := make([]string, 0, len(req.Interests))
	for _, s := range req.Interests {
		if s = strings.TrimSpace(s); s != "" {
			interests = append(interests, s)
		}
	}
	req.Interests = interests
	return req, nil
}

func validateOptions(req types.TravelOptionsRequest) (types.TravelOptionsRequest, error) {
	req.OriginCity = strings.TrimSpace(req.OriginCity)
	req.DestinationCity = strings.TrimSpace(req.DestinationCity)
	req.RecencyFilter = strings.ToLower(strings.TrimSpace(req.RecencyFilter))
	if req.OriginCity == "" {
		return req, fmt.Errorf("%w: origin_city is required", ErrInvalidRequest)
	}
	if req.DestinationCity == "" {
		return req, fmt.Errorf("%w: destination_city is required", ErrInvalidRequest)
	}
	if req.RecencyFilter != "" && !recencyFilters[req.RecencyFilter] {
		return req, fmt.Errorf("%w: recency_filter must be one of hour, day, week, month, year", ErrInvalidRequest)
	}
	return req, nil
}

// Slugify lowercases name and replaces spaces and path separators with
// hyphens. An empty result becomes fallback.
func Slugify(name, fallback string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer(" ", "-", "/", "-", "\\", "-").Replace(s)
	s = strings.Trim(s, ".")
	if s == "" {
		return fallback
	}
	return s
}
