// README: Runs the itinerary flow once against the live providers and prints the JSON result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"wayfarer/internal/ai"
	"wayfarer/internal/config"
	"wayfarer/internal/imagegen"
	"wayfarer/internal/logger"
	"wayfarer/internal/normalize"
	"wayfarer/internal/search"
	"wayfarer/internal/service"
	"wayfarer/internal/types"
)

func main() {
	home := flag.String("home", "Boston", "home city")
	dest := flag.String("dest", "Kyoto", "destination city")
	days := flag.Int("days", 3, "number of days (1-14)")
	interests := flag.String("interests", "", "comma-separated interests")
	options := flag.Bool("options", false, "research transport options instead of an itinerary")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New("info", "console")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init gemini: %v\n", err)
		os.Exit(1)
	}
	defer provider.Close()

	imageProvider, err := imagegen.NewGeminiImageProvider(ctx, cfg.AI.GeminiKey, cfg.AI.ImageModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init gemini images: %v\n", err)
		os.Exit(1)
	}
	normalizer, err := normalize.New(log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	planner := service.NewTravelPlanner(
		ai.NewGateway(provider, log, nil),
		imagegen.NewGenerator(imageProvider, cfg.AI.ImageConcurrency, log),
		search.NewClient(cfg.AI.PerplexityKey, cfg.AI.PerplexityBaseURL, log, nil).WithTimeout(cfg.AI.SearchTimeout),
		normalizer,
		service.Options{
			ItineraryModel:     cfg.AI.ItineraryModel,
			SearchModel:        cfg.AI.SearchModel,
			ItineraryTimeout:   cfg.AI.ItineraryTimeout,
			StaticRoot:         cfg.Static.Root,
			StaticURLPrefix:    cfg.Static.URLPrefix,
			MaxImagesPerEntity: cfg.AI.MaxImagesPerEntity,
			EntityConcurrency:  cfg.AI.EntityConcurrency,
		},
		log,
	)

	var result any
	if *options {
		result, err = planner.PlanOptions(ctx, types.TravelOptionsRequest{OriginCity: *home, DestinationCity: *dest})
	} else {
		var list []string
		if *interests != "" {
			list = strings.Split(*interests, ",")
		}
		result, err = planner.PlanItinerary(ctx, types.ItineraryRequest{
			HomeCity:        *home,
			DestinationCity: *dest,
			NumDays:         types.DaysOf(*days),
			Interests:       list,
		})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}
