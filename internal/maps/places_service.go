package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

const (
	minRating  = 4.0
	maxResults = 3
)

// Place represents a simplified location result.
type Place struct {
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	Rating           float32 `json:"rating"`
	PlaceID          string  `json:"place_id"`
	UserRatingsTotal int     `json:"user_ratings_total"`
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client *maps.Client
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string, opts ...maps.ClientOption) (*PlacesService, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// Search runs a text search for query in city and keeps the first three
// results rated 4.0 or higher, in API order.
func (s *PlacesService) Search(ctx context.Context, city, query string) ([]Place, error) {
	fullQuery := strings.TrimSpace(query)
	if city = strings.TrimSpace(city); city != "" {
		fullQuery = fmt.Sprintf("%s in %s", fullQuery, city)
	}

	resp, err := s.client.TextSearch(ctx, &maps.TextSearchRequest{Query: fullQuery})
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	results := []Place{}
	for _, result := range resp.Results {
		if result.Rating < minRating {
			continue
		}
		results = append(results, Place{
			Name:             result.Name,
			Address:          result.FormattedAddress,
			Rating:           result.Rating,
			PlaceID:          result.PlaceID,
			UserRatingsTotal: result.UserRatingsTotal,
		})
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}
