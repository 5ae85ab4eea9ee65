package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// OutboxRepository persists domain events until their side effects succeed.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event *domain.OutboxEvent) error
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]domain.OutboxEvent, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) error
	MarkRetry(ctx context.Context, id string, attempts int, next time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id string, attempts int, lastErr string) error
}

type outboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository builds repository.
func NewOutboxRepository(pool *pgxpool.Pool) OutboxRepository {
	return &outboxRepository{pool: pool}
}

func (r *outboxRepository) Enqueue(ctx context.Context, event *domain.OutboxEvent) error {
	const query = `
        INSERT INTO outbox_events (event_type, aggregate_id, payload, status, next_attempt_at)
        VALUES ($1,$2,$3,'pending',$4)
        RETURNING id, created_at`
	next := event.NextAttemptAt
	if next.IsZero() {
		next = time.Now()
	}
	event.Status = domain.OutboxPending
	event.NextAttemptAt = next
	return r.pool.QueryRow(ctx, query,
		event.EventType,
		event.AggregateID,
		event.Payload,
		next,
	).Scan(&event.ID, &event.CreatedAt)
}

// ClaimDue moves up to limit due events into processing and pushes their
// next attempt out by lease, so a crashed worker's claims become due again.
// SKIP LOCKED keeps concurrent workers from claiming the same rows.
func (r *outboxRepository) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]domain.OutboxEvent, error) {
	const query = `
        UPDATE outbox_events SET status='processing', next_attempt_at=$2
        WHERE id IN (
            SELECT id FROM outbox_events
            WHERE status IN ('pending','processing') AND next_attempt_at <= $1
            ORDER BY next_attempt_at
            LIMIT $3
            FOR UPDATE SKIP LOCKED
        )
        RETURNING id, event_type, aggregate_id, payload, status, attempts, next_attempt_at, last_error, created_at, delivered_at`
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, query, now, now.Add(lease), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.OutboxEvent
	for rows.Next() {
		var ev domain.OutboxEvent
		if err := rows.Scan(
			&ev.ID,
			&ev.EventType,
			&ev.AggregateID,
			&ev.Payload,
			&ev.Status,
			&ev.Attempts,
			&ev.NextAttemptAt,
			&ev.LastError,
			&ev.CreatedAt,
			&ev.DeliveredAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ev)
	}
	return result, rows.Err()
}

func (r *outboxRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE outbox_events SET status='delivered', delivered_at=$2, attempts=attempts+1 WHERE id=$1`, id, at)
	return err
}

func (r *outboxRepository) MarkRetry(ctx context.Context, id string, attempts int, next time.Time, lastErr string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE outbox_events SET status='pending', attempts=$2, next_attempt_at=$3, last_error=$4 WHERE id=$1`,
		id, attempts, next, lastErr)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, attempts int, lastErr string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE outbox_events SET status='failed', attempts=$2, last_error=$3 WHERE id=$1`,
		id, attempts, lastErr)
	return err
}
