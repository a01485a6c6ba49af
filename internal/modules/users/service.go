package users

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Service creates users and serves the current profile.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create validates d and stores it with id user_{n}.
func (s *Service) Create(ctx context.Context, d Draft) (User, error) {
	d, err := d.validate()
	if err != nil {
		return User{}, err
	}
	n, err := s.repo.NextID(ctx)
	if err != nil {
		return User{}, fmt.Errorf("allocate user id: %w", err)
	}
	u := User{
		ID:          fmt.Sprintf("user_%d", n),
		Name:        d.Name,
		Email:       d.Email,
		Preferences: d.Preferences,
		CreatedAt:   s.now().UTC().Truncate(time.Second),
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return User{}, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

// List returns users in creation order.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Profile returns the stored profile, or the default one before any update.
func (s *Service) Profile(ctx context.Context) (Profile, error) {
	p, err := s.repo.GetProfile(ctx)
	if errors.Is(err, ErrNotFound) {
		return defaultProfile(), nil
	}
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

// UpdateProfile merges update into the current profile and persists it.
func (s *Service) UpdateProfile(ctx context.Context, update map[string]any) (Profile, error) {
	current, err := s.Profile(ctx)
	if err != nil {
		return Profile{}, err
	}
	next, err := current.apply(update)
	if err != nil {
		return Profile{}, err
	}
	if err := s.repo.SaveProfile(ctx, next); err != nil {
		return Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return next, nil
}
