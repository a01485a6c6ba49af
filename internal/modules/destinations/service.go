// README: Popular destination catalogue.
package destinations

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalid = errors.New("invalid destination")

type Destination struct {
	Name        string `json:"name"`
	Country     string `json:"country"`
	Description string `json:"description,omitempty"`
}

var popular = []Destination{
	{Name: "Paris", Country: "France", Description: "City of Light"},
	{Name: "Tokyo", Country: "Japan", Description: "Modern metropolis"},
	{Name: "Bali", Country: "Indonesia", Description: "Tropical paradise"},
	{Name: "New York", Country: "USA", Description: "The Big Apple"},
}

type Service struct{}

func NewService() *Service { return &Service{} }

// Popular returns a copy of the built-in list.
func (s *Service) Popular() []Destination {
	out := make([]Destination, len(popular))
	copy(out, popular)
	return out
}

// Add validates d and returns it trimmed. Nothing is persisted.
func (s *Service) Add(d Destination) (Destination, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Country = strings.TrimSpace(d.Country)
	d.Description = strings.TrimSpace(d.Description)
	if d.Name == "" {
		return d, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if d.Country == "" {
		return d, fmt.Errorf("%w: country is required", ErrInvalid)
	}
	return d, nil
}
