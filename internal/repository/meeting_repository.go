package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// MeetingRepository stores meetings and attendee responses.
type MeetingRepository interface {
	Create(ctx context.Context, m *domain.Meeting) error
	GetByID(ctx context.Context, id string) (*domain.Meeting, error)
	Update(ctx context.Context, m *domain.Meeting) error
	ListForUser(ctx context.Context, userID string) ([]domain.Meeting, error)
}

type meetingRepository struct {
	pool *pgxpool.Pool
}

// NewMeetingRepository builds repository.
func NewMeetingRepository(pool *pgxpool.Pool) MeetingRepository {
	return &meetingRepository{pool: pool}
}

const meetingColumns = `id, title, agenda, location, starts_at, ends_at, organizer_id, attendees, accepted, declined,
               status, created_at, updated_at`

func (r *meetingRepository) Create(ctx context.Context, m *domain.Meeting) error {
	const query = `
        INSERT INTO meetings (title, agenda, location, starts_at, ends_at, organizer_id, attendees, accepted, declined, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		m.Title,
		m.Agenda,
		m.Location,
		m.StartsAt,
		m.EndsAt,
		m.OrganizerID,
		normalizeStrings(m.Attendees),
		normalizeStrings(m.Accepted),
		normalizeStrings(m.Declined),
		m.Status,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *meetingRepository) GetByID(ctx context.Context, id string) (*domain.Meeting, error) {
	var m domain.Meeting
	if err := scanMeetingInto(r.pool.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id=$1`, id), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *meetingRepository) Update(ctx context.Context, m *domain.Meeting) error {
	const query = `
        UPDATE meetings SET title=$1, agenda=$2, location=$3, starts_at=$4, ends_at=$5, attendees=$6,
            accepted=$7, declined=$8, status=$9, updated_at=NOW()
        WHERE id=$10
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		m.Title,
		m.Agenda,
		m.Location,
		m.StartsAt,
		m.EndsAt,
		normalizeStrings(m.Attendees),
		normalizeStrings(m.Accepted),
		normalizeStrings(m.Declined),
		m.Status,
		m.ID,
	).Scan(&m.UpdatedAt)
}

// ListForUser returns meetings the user organizes or was invited to.
func (r *meetingRepository) ListForUser(ctx context.Context, userID string) ([]domain.Meeting, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE organizer_id=$1 OR $2 = ANY(attendees) ORDER BY starts_at`,
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Meeting
	for rows.Next() {
		var m domain.Meeting
		if err := scanMeetingInto(rows, &m); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func scanMeetingInto(row pgx.Row, m *domain.Meeting) error {
	return row.Scan(
		&m.ID,
		&m.Title,
		&m.Agenda,
		&m.Location,
		&m.StartsAt,
		&m.EndsAt,
		&m.OrganizerID,
		&m.Attendees,
		&m.Accepted,
		&m.Declined,
		&m.Status,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}
