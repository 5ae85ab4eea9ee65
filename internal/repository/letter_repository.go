package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// LetterFilter narrows letter listings.
type LetterFilter struct {
	SenderID     *string
	DepartmentID *string
	Status       *domain.LetterStatus
	Limit        int
	Offset       int
}

// LetterRepository stores business letters.
type LetterRepository interface {
	Create(ctx context.Context, letter *domain.Letter) error
	GetByID(ctx context.Context, id string) (*domain.Letter, error)
	List(ctx context.Context, filter LetterFilter) ([]domain.Letter, error)
	UpdateStatus(ctx context.Context, letter *domain.Letter) error
}

type letterRepository struct {
	pool *pgxpool.Pool
}

// NewLetterRepository builds repository.
func NewLetterRepository(pool *pgxpool.Pool) LetterRepository {
	return &letterRepository{pool: pool}
}

const letterColumns = `id, sender_id, title, body, company_name, contact_email, department_id, attachments,
               status, response_note, created_at, updated_at`

func (r *letterRepository) Create(ctx context.Context, letter *domain.Letter) error {
	const query = `
        INSERT INTO letters (sender_id, title, body, company_name, contact_email, department_id, attachments, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		letter.SenderID,
		letter.Title,
		letter.Body,
		letter.CompanyName,
		letter.ContactEmail,
		letter.DepartmentID,
		normalizeStrings(letter.Attachments),
		letter.Status,
	).Scan(&letter.ID, &letter.CreatedAt, &letter.UpdatedAt)
}

func (r *letterRepository) GetByID(ctx context.Context, id string) (*domain.Letter, error) {
	var letter domain.Letter
	if err := scanLetterInto(r.pool.QueryRow(ctx, `SELECT `+letterColumns+` FROM letters WHERE id=$1`, id), &letter); err != nil {
		return nil, err
	}
	return &letter, nil
}

func (r *letterRepository) List(ctx context.Context, filter LetterFilter) ([]domain.Letter, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.SenderID != nil && filter.DepartmentID != nil {
		args = append(args, *filter.SenderID, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("(sender_id=$%d OR department_id=$%d)", len(args)-1, len(args)))
	} else if filter.SenderID != nil {
		args = append(args, *filter.SenderID)
		clauses = append(clauses, fmt.Sprintf("sender_id=$%d", len(args)))
	} else if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM letters WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		letterColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Letter
	for rows.Next() {
		var letter domain.Letter
		if err := scanLetterInto(rows, &letter); err != nil {
			return nil, err
		}
		result = append(result, letter)
	}
	return result, rows.Err()
}

func (r *letterRepository) UpdateStatus(ctx context.Context, letter *domain.Letter) error {
	const query = `
        UPDATE letters SET status=$1, response_note=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, letter.Status, letter.ResponseNote, letter.ID).Scan(&letter.UpdatedAt)
}

func scanLetterInto(row pgx.Row, letter *domain.Letter) error {
	return row.Scan(
		&letter.ID,
		&letter.SenderID,
		&letter.Title,
		&letter.Body,
		&letter.CompanyName,
		&letter.ContactEmail,
		&letter.DepartmentID,
		&letter.Attachments,
		&letter.Status,
		&letter.ResponseNote,
		&letter.CreatedAt,
		&letter.UpdatedAt,
	)
}
