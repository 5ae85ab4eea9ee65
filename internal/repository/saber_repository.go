package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// SaberRepository stores SABER materials, DLI progress and BERAP documents.
type SaberRepository interface {
	CreateMaterial(ctx context.Context, m *domain.SaberMaterial) error
	ListMaterials(ctx context.Context) ([]domain.SaberMaterial, error)
	CreateDLI(ctx context.Context, d *domain.DLIProgress) error
	GetDLI(ctx context.Context, id string) (*domain.DLIProgress, error)
	UpdateDLISteps(ctx context.Context, d *domain.DLIProgress) error
	ListDLI(ctx context.Context, state *string) ([]domain.DLIProgress, error)
	UpsertBerap(ctx context.Context, b *domain.BerapDocument) error
	GetBerapByYear(ctx context.Context, year int) (*domain.BerapDocument, error)
	ListBerap(ctx context.Context) ([]domain.BerapDocument, error)
}

type saberRepository struct {
	pool *pgxpool.Pool
}

// NewSaberRepository builds repository.
func NewSaberRepository(pool *pgxpool.Pool) SaberRepository {
	return &saberRepository{pool: pool}
}

func (r *saberRepository) CreateMaterial(ctx context.Context, m *domain.SaberMaterial) error {
	const query = `
        INSERT INTO saber_materials (title, description, file_key, visible_roles, uploaded_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, m.Title, m.Description, m.FileKey, rolesToStrings(m.VisibleRoles), m.UploadedBy).
		Scan(&m.ID, &m.CreatedAt)
}

func (r *saberRepository) ListMaterials(ctx context.Context) ([]domain.SaberMaterial, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, file_key, visible_roles, uploaded_by, created_at FROM saber_materials ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SaberMaterial
	for rows.Next() {
		var m domain.SaberMaterial
		var roles []string
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.FileKey, &roles, &m.UploadedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.VisibleRoles = stringsToRoles(roles)
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *saberRepository) CreateDLI(ctx context.Context, d *domain.DLIProgress) error {
	const query = `
        INSERT INTO dli_progress (state, dli_code, title, steps, updated_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, d.State, d.DLICode, d.Title, stepsOrEmpty(d.Steps), d.UpdatedBy).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *saberRepository) GetDLI(ctx context.Context, id string) (*domain.DLIProgress, error) {
	var d domain.DLIProgress
	row := r.pool.QueryRow(ctx,
		`SELECT id, state, dli_code, title, steps, updated_by, created_at, updated_at FROM dli_progress WHERE id=$1`, id)
	if err := scanDLIInto(row, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *saberRepository) UpdateDLISteps(ctx context.Context, d *domain.DLIProgress) error {
	return r.pool.QueryRow(ctx,
		`UPDATE dli_progress SET steps=$1, updated_by=$2, updated_at=NOW() WHERE id=$3 RETURNING updated_at`,
		stepsOrEmpty(d.Steps), d.UpdatedBy, d.ID,
	).Scan(&d.UpdatedAt)
}

func (r *saberRepository) ListDLI(ctx context.Context, state *string) ([]domain.DLIProgress, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, state, dli_code, title, steps, updated_by, created_at, updated_at
         FROM dli_progress WHERE $1::text IS NULL OR state=$1 ORDER BY state, dli_code`, state)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DLIProgress
	for rows.Next() {
		var d domain.DLIProgress
		if err := scanDLIInto(rows, &d); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// UpsertBerap keeps one document per year.
func (r *saberRepository) UpsertBerap(ctx context.Context, b *domain.BerapDocument) error {
	const query = `
        INSERT INTO berap_documents (year, title, file_key, summary, updated_by)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (year) DO UPDATE SET
            title=EXCLUDED.title,
            file_key=EXCLUDED.file_key,
            summary=EXCLUDED.summary,
            updated_by=EXCLUDED.updated_by,
            updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, b.Year, b.Title, b.FileKey, b.Summary, b.UpdatedBy).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *saberRepository) GetBerapByYear(ctx context.Context, year int) (*domain.BerapDocument, error) {
	var b domain.BerapDocument
	row := r.pool.QueryRow(ctx,
		`SELECT id, year, title, file_key, summary, updated_by, created_at, updated_at FROM berap_documents WHERE year=$1`, year)
	if err := row.Scan(&b.ID, &b.Year, &b.Title, &b.FileKey, &b.Summary, &b.UpdatedBy, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *saberRepository) ListBerap(ctx context.Context) ([]domain.BerapDocument, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, year, title, file_key, summary, updated_by, created_at, updated_at FROM berap_documents ORDER BY year DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BerapDocument
	for rows.Next() {
		var b domain.BerapDocument
		if err := rows.Scan(&b.ID, &b.Year, &b.Title, &b.FileKey, &b.Summary, &b.UpdatedBy, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func scanDLIInto(row pgx.Row, d *domain.DLIProgress) error {
	return row.Scan(&d.ID, &d.State, &d.DLICode, &d.Title, &d.Steps, &d.UpdatedBy, &d.CreatedAt, &d.UpdatedAt)
}

func stepsOrEmpty(steps []domain.ProgressStep) []domain.ProgressStep {
	if steps == nil {
		return []domain.ProgressStep{}
	}
	return steps
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func stringsToRoles(values []string) []domain.Role {
	out := make([]domain.Role, 0, len(values))
	for _, v := range values {
		out = append(out, domain.Role(v))
	}
	return out
}
