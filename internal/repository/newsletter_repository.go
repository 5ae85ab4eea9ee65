package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// NewsletterRepository stores newsletters and the subscriber list.
type NewsletterRepository interface {
	Create(ctx context.Context, n *domain.Newsletter) error
	GetByID(ctx context.Context, id string) (*domain.Newsletter, error)
	List(ctx context.Context) ([]domain.Newsletter, error)
	MarkSent(ctx context.Context, id string, at time.Time, count int) (bool, error)
	Subscribe(ctx context.Context, sub *domain.Subscriber) error
	Unsubscribe(ctx context.Context, email string, at time.Time) (bool, error)
	ListActiveSubscribers(ctx context.Context) ([]domain.Subscriber, error)
}

type newsletterRepository struct {
	pool *pgxpool.Pool
}

// NewNewsletterRepository builds repository.
func NewNewsletterRepository(pool *pgxpool.Pool) NewsletterRepository {
	return &newsletterRepository{pool: pool}
}

const newsletterColumns = `id, subject, html_body, status, created_by, sent_at, sent_count, created_at, updated_at`

func (r *newsletterRepository) Create(ctx context.Context, n *domain.Newsletter) error {
	const query = `
        INSERT INTO newsletters (subject, html_body, status, created_by)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, n.Subject, n.HTMLBody, n.Status, n.CreatedBy).
		Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
}

func (r *newsletterRepository) GetByID(ctx context.Context, id string) (*domain.Newsletter, error) {
	var n domain.Newsletter
	if err := scanNewsletterInto(r.pool.QueryRow(ctx, `SELECT `+newsletterColumns+` FROM newsletters WHERE id=$1`, id), &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *newsletterRepository) List(ctx context.Context) ([]domain.Newsletter, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+newsletterColumns+` FROM newsletters ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Newsletter
	for rows.Next() {
		var n domain.Newsletter
		if err := scanNewsletterInto(rows, &n); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// MarkSent flips a draft to sent. It reports false when the newsletter was
// already sent, which is how a double send is refused.
func (r *newsletterRepository) MarkSent(ctx context.Context, id string, at time.Time, count int) (bool, error) {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE newsletters SET status='sent', sent_at=$2, sent_count=$3, updated_at=NOW() WHERE id=$1 AND status='draft'`,
		id, at, count)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// Subscribe inserts or reactivates by email.
func (r *newsletterRepository) Subscribe(ctx context.Context, sub *domain.Subscriber) error {
	const query = `
        INSERT INTO newsletter_subscribers (email, name, active)
        VALUES ($1,$2,TRUE)
        ON CONFLICT (LOWER(email)) DO UPDATE SET
            active=TRUE,
            unsubscribed_at=NULL,
            name=CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE newsletter_subscribers.name END
        RETURNING id, email, name, active, subscribed_at, unsubscribed_at`
	return r.pool.QueryRow(ctx, query, sub.Email, sub.Name).
		Scan(&sub.ID, &sub.Email, &sub.Name, &sub.Active, &sub.SubscribedAt, &sub.UnsubscribedAt)
}

func (r *newsletterRepository) Unsubscribe(ctx context.Context, email string, at time.Time) (bool, error) {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE newsletter_subscribers SET active=FALSE, unsubscribed_at=$2 WHERE LOWER(email)=LOWER($1) AND active`, email, at)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *newsletterRepository) ListActiveSubscribers(ctx context.Context) ([]domain.Subscriber, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, email, name, active, subscribed_at, unsubscribed_at FROM newsletter_subscribers WHERE active ORDER BY subscribed_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Subscriber
	for rows.Next() {
		var sub domain.Subscriber
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.Name, &sub.Active, &sub.SubscribedAt, &sub.UnsubscribedAt); err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}

func scanNewsletterInto(row pgx.Row, n *domain.Newsletter) error {
	return row.Scan(&n.ID, &n.Subject, &n.HTMLBody, &n.Status, &n.CreatedBy, &n.SentAt, &n.SentCount, &n.CreatedAt, &n.UpdatedAt)
}
