package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

// ErrNoRoute is returned when Directions finds nothing between two places.
var ErrNoRoute = errors.New("no route found")

// ErrBadMode is returned for travel modes Directions does not support.
var ErrBadMode = errors.New("unsupported travel mode")

// RouteEstimate is the first leg of the best route.
type RouteEstimate struct {
	Origin         string        `json:"origin"`
	Destination    string        `json:"destination"`
	Mode           string        `json:"mode"`
	Duration       time.Duration `json:"-"`
	DurationText   string        `json:"duration"`
	DurationSecond int64         `json:"duration_seconds"`
	Distance       string        `json:"distance"`
	DistanceMeters int           `json:"distance_meters"`
}

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string, opts ...maps.ClientOption) (*RouteService, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// Estimate returns the travel time and distance from origin to destination.
// mode is driving, walking, bicycling or transit; empty means driving.
func (s *RouteService) Estimate(ctx context.Context, origin, destination, mode string) (RouteEstimate, error) {
	travelMode, err := parseMode(mode)
	if err != nil {
		return RouteEstimate{}, err
	}
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        travelMode,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return RouteEstimate{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return RouteEstimate{}, ErrNoRoute
	}

	leg := routes[0].Legs[0]
	return RouteEstimate{
		Origin:         origin,
		Destination:    destination,
		Mode:           string(travelMode),
		Duration:       leg.Duration,
		DurationText:   leg.Duration.Round(time.Minute).String(),
		DurationSecond: int64(leg.Duration / time.Second),
		Distance:       leg.Distance.HumanReadable,
		DistanceMeters: leg.Distance.Meters,
	}, nil
}

func parseMode(mode string) (maps.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "driving", "car":
		return maps.TravelModeDriving, nil
	case "walking":
		return maps.TravelModeWalking, nil
	case "bicycling":
		return maps.TravelModeBicycling, nil
	case "transit":
		return maps.TravelModeTransit, nil
	}
	return "", fmt.Errorf("%w %q", ErrBadMode, mode)
}
