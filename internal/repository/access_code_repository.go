package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// AccessCodeRepository stores hashed role elevation codes.
type AccessCodeRepository interface {
	Replace(ctx context.Context, role domain.Role, codeHash string) (*domain.AccessCode, error)
	ListActiveByRole(ctx context.Context, role domain.Role) ([]domain.AccessCode, error)
}

type accessCodeRepository struct {
	pool *pgxpool.Pool
}

// NewAccessCodeRepository builds repository.
func NewAccessCodeRepository(pool *pgxpool.Pool) AccessCodeRepository {
	return &accessCodeRepository{pool: pool}
}

// Replace deactivates the role's current codes and stores a new one.
func (r *accessCodeRepository) Replace(ctx context.Context, role domain.Role, codeHash string) (*domain.AccessCode, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `UPDATE access_codes SET active = FALSE WHERE role=$1 AND active`, role); err != nil {
		return nil, err
	}
	code := &domain.AccessCode{Role: role, CodeHash: codeHash, Active: true}
	if err := tx.QueryRow(ctx,
		`INSERT INTO access_codes (role, code_hash, active) VALUES ($1,$2,TRUE) RETURNING id, created_at`,
		role, codeHash,
	).Scan(&code.ID, &code.CreatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return code, nil
}

func (r *accessCodeRepository) ListActiveByRole(ctx context.Context, role domain.Role) ([]domain.AccessCode, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, role, code_hash, active, created_at FROM access_codes WHERE role=$1 AND active ORDER BY created_at DESC`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AccessCode
	for rows.Next() {
		var code domain.AccessCode
		if err := rows.Scan(&code.ID, &code.Role, &code.CodeHash, &code.Active, &code.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, code)
	}
	return result, rows.Err()
}
