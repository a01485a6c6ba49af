package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles generation_audit persistence.
type Store struct {
	db *pgxpool.Pool
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Insert appends one entry. A zero CreatedAt is stamped by the database.
func (s *Store) Insert(ctx context.Context, e Entry) error {
	var createdAt any
	if !e.CreatedAt.IsZero() {
		createdAt = e.CreatedAt
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO generation_audit (provider, model, outcome, reason, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
	`, e.Provider, e.Model, e.Outcome, e.Reason, e.DurationMS, createdAt)
	return err
}

// Summary groups entries created at or after since by provider and outcome.
func (s *Store) Summary(ctx context.Context, since time.Time) ([]SummaryRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT provider, outcome, COUNT(*), COALESCE(AVG(duration_ms), 0)::float8
		FROM generation_audit
		WHERE created_at >= $1
		GROUP BY provider, outcome
		ORDER BY provider, outcome
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SummaryRow{}
	for rows.Next() {
		var r SummaryRow
		if err := rows.Scan(&r.Provider, &r.Outcome, &r.Calls, &r.AvgDurationMS); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
