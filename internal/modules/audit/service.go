// README: Generation audit; records provider calls to Postgres and summarizes them.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wayfarer/internal/ai"
)

// ErrDisabled is returned by Summary when no database is configured.
var ErrDisabled = errors.New("generation audit is disabled")

// Service implements ai.Recorder on top of a Store. A Service with a nil
// store records nothing.
type Service struct {
	store *Store
	now   func() time.Time
}

// NewService creates a Service. store may be nil.
func NewService(store *Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Enabled reports whether calls are persisted.
func (s *Service) Enabled() bool { return s != nil && s.store != nil }

// Record stores one provider call.
func (s *Service) Record(ctx context.Context, rec ai.CallRecord) error {
	if !s.Enabled() {
		return nil
	}
	err := s.store.Insert(ctx, Entry{
		Provider:   rec.Provider,
		Model:      rec.Model,
		Outcome:    rec.Outcome,
		Reason:     rec.Reason,
		DurationMS: rec.Duration.Milliseconds(),
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Summary returns per-provider outcome counts for the trailing window.
func (s *Service) Summary(ctx context.Context, window time.Duration) ([]SummaryRow, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	rows, err := s.store.Summary(ctx, s.now().UTC().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("summarize audit: %w", err)
	}
	return rows, nil
}

var _ ai.Recorder = (*Service)(nil)
