package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// NotificationRepository stores in-app notifications.
type NotificationRepository interface {
	CreateIfAbsent(ctx context.Context, n *domain.Notification) (bool, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

// CreateIfAbsent inserts once per (event, user); a redelivered event is a no-op.
// Ticket notifications are skipped once the ticket is gone.
func (r *notificationRepository) CreateIfAbsent(ctx context.Context, n *domain.Notification) (bool, error) {
	const query = `
        INSERT INTO notifications (user_id, event_id, type, message, entity_type, entity_id)
        SELECT $1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text
        WHERE $5::text <> 'ticket'
           OR EXISTS (SELECT 1 FROM tickets t WHERE t.id::text = $6::text)
        ON CONFLICT (event_id, user_id) DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query,
		n.UserID,
		n.EventID,
		n.Type,
		n.Message,
		n.EntityType,
		n.EntityID,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	const query = `
        SELECT id, user_id, event_id, type, message, entity_type, entity_id, is_read, created_at
        FROM notifications
        WHERE user_id=$1 AND (NOT $2 OR is_read = FALSE)
        ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	limit, offset = pageBounds(limit, offset)
	rows, err := r.pool.Query(ctx, query, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.EventID, &n.Type, &n.Message, &n.EntityType, &n.EntityID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND is_read = FALSE`, userID).Scan(&count)
	return count, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id=$1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
