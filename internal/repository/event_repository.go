package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// EventRepository stores events and their registrations.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, startsAfter *time.Time) ([]domain.Event, error)
	Register(ctx context.Context, reg *domain.EventRegistration) error
	CountRegistrations(ctx context.Context, eventID string) (int, error)
	ListRegistrations(ctx context.Context, eventID string) ([]domain.EventRegistration, error)
	GetRegistrationByNumber(ctx context.Context, number string) (*domain.EventRegistration, error)
	CheckIn(ctx context.Context, registrationID string, at time.Time) (bool, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository builds repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

const (
	eventColumns        = `id, title, description, location, starts_at, ends_at, capacity, created_by, created_at, updated_at`
	registrationColumns = `id, event_id, registration_number, name, email, phone, organization, user_id, checked_in_at, created_at`
)

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (title, description, location, starts_at, ends_at, capacity, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.StartsAt,
		event.EndsAt,
		event.Capacity,
		event.CreatedBy,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var event domain.Event
	if err := scanEventInto(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context, startsAfter *time.Time) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE $1::timestamptz IS NULL OR ends_at >= $1 ORDER BY starts_at`, startsAfter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := scanEventInto(rows, &event); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}

// Register inserts a registration while holding the event row lock so the
// capacity check and insert cannot interleave with another registration.
// A capacity of zero means unlimited.
func (r *eventRepository) Register(ctx context.Context, reg *domain.EventRegistration) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var capacity int
	if err := tx.QueryRow(ctx, `SELECT capacity FROM events WHERE id=$1 FOR UPDATE`, reg.EventID).Scan(&capacity); err != nil {
		return err
	}
	if capacity > 0 {
		var taken int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM event_registrations WHERE event_id=$1`, reg.EventID).Scan(&taken); err != nil {
			return err
		}
		if taken >= capacity {
			return ErrCapacityReached
		}
	}

	const insert = `
        INSERT INTO event_registrations (event_id, registration_number, name, email, phone, organization, user_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insert,
		reg.EventID,
		reg.RegistrationNumber,
		reg.Name,
		reg.Email,
		reg.Phone,
		reg.Organization,
		reg.UserID,
	).Scan(&reg.ID, &reg.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return tx.Commit(ctx)
}

func (r *eventRepository) CountRegistrations(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM event_registrations WHERE event_id=$1`, eventID).Scan(&count)
	return count, err
}

func (r *eventRepository) ListRegistrations(ctx context.Context, eventID string) ([]domain.EventRegistration, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+registrationColumns+` FROM event_registrations WHERE event_id=$1 ORDER BY created_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EventRegistration
	for rows.Next() {
		var reg domain.EventRegistration
		if err := scanRegistrationInto(rows, &reg); err != nil {
			return nil, err
		}
		result = append(result, reg)
	}
	return result, rows.Err()
}

func (r *eventRepository) GetRegistrationByNumber(ctx context.Context, number string) (*domain.EventRegistration, error) {
	var reg domain.EventRegistration
	row := r.pool.QueryRow(ctx, `SELECT `+registrationColumns+` FROM event_registrations WHERE registration_number=$1`, number)
	if err := scanRegistrationInto(row, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// CheckIn stamps the registration once; a second call reports false.
func (r *eventRepository) CheckIn(ctx context.Context, registrationID string, at time.Time) (bool, error) {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE event_registrations SET checked_in_at=$2 WHERE id=$1 AND checked_in_at IS NULL`, registrationID, at)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanEventInto(row pgx.Row, event *domain.Event) error {
	return row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.StartsAt,
		&event.EndsAt,
		&event.Capacity,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
}

func scanRegistrationInto(row pgx.Row, reg *domain.EventRegistration) error {
	return row.Scan(
		&reg.ID,
		&reg.EventID,
		&reg.RegistrationNumber,
		&reg.Name,
		&reg.Email,
		&reg.Phone,
		&reg.Organization,
		&reg.UserID,
		&reg.CheckedInAt,
		&reg.CreatedAt,
	)
}
