package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SequenceRepository hands out per-day counters.
type SequenceRepository interface {
	Next(ctx context.Context, scope string, day time.Time) (int, error)
}

type sequenceRepository struct {
	pool *pgxpool.Pool
}

// NewSequenceRepository builds the repository.
func NewSequenceRepository(pool *pgxpool.Pool) SequenceRepository {
	return &sequenceRepository{pool: pool}
}

// Next atomically increments the (scope, day) counter, starting at 1.
// day should already be truncated to the UTC civil date.
func (r *sequenceRepository) Next(ctx context.Context, scope string, day time.Time) (int, error) {
	const query = `
        INSERT INTO ticket_sequences (scope, day, last_value)
        VALUES ($1, $2, 1)
        ON CONFLICT (scope, day) DO UPDATE SET last_value = ticket_sequences.last_value + 1
        RETURNING last_value`
	civil := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	var value int
	if err := r.pool.QueryRow(ctx, query, scope, civil).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}
