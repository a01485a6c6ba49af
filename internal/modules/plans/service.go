package plans

import (
	"context"
	"fmt"
	"time"
)

// Service creates and reads travel plans.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create validates d and stores it as a draft plan with id plan_{n}.
func (s *Service) Create(ctx context.Context, d Draft) (Plan, error) {
	d, err := d.validate()
	if err != nil {
		return Plan{}, err
	}
	n, err := s.repo.NextID(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("allocate plan id: %w", err)
	}
	p := Plan{
		ID:          fmt.Sprintf("plan_%d", n),
		Destination: d.Destination,
		Duration:    d.Duration,
		Budget:      d.Budget,
		Interests:   d.Interests,
		Status:      StatusDraft,
		CreatedAt:   s.now().UTC().Truncate(time.Second),
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return Plan{}, fmt.Errorf("save plan: %w", err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (Plan, error) {
	return s.repo.Get(ctx, id)
}

// List returns plans in creation order.
func (s *Service) List(ctx context.Context) ([]Plan, error) {
	return s.repo.List(ctx)
}
