package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role         *domain.Role
	DepartmentID *string
	SearchTerm   *string
	Limit        int
	Offset       int
}

// UserRepository defines persistence access for mirrored identity users.
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	GetGuestByEmail(ctx context.Context, email string) (*domain.User, error)
	DeleteByExternalID(ctx context.Context, externalID string) (bool, error)
	AssignRole(ctx context.Context, id string, role domain.Role, departmentID *string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, external_id, name, email, phone, role, department_id, state, is_guest, created_at, updated_at`

// Upsert inserts by external id or refreshes profile fields. Role and
// department are only overwritten when the caller supplies a role.
func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (external_id, name, email, phone, role, department_id, state, is_guest)
        VALUES ($1,$2,$3,$4,COALESCE(NULLIF($5,''),'user'),$6,$7,$8)
        ON CONFLICT (external_id) DO UPDATE SET
            name=EXCLUDED.name,
            email=EXCLUDED.email,
            phone=EXCLUDED.phone,
            state=EXCLUDED.state,
            role=CASE WHEN $5 <> '' THEN EXCLUDED.role ELSE users.role END,
            department_id=CASE WHEN $5 <> '' THEN EXCLUDED.department_id ELSE users.department_id END,
            updated_at=NOW()
        RETURNING ` + userColumns
	return scanUserInto(r.pool.QueryRow(ctx, query,
		user.ExternalID,
		user.Name,
		user.Email,
		user.Phone,
		string(user.Role),
		user.DepartmentID,
		user.State,
		user.IsGuest,
	), user)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE external_id=$1`, externalID)
}

func (r *userRepository) GetGuestByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE is_guest AND LOWER(email)=LOWER($1) LIMIT 1`, email)
}

func (r *userRepository) DeleteByExternalID(ctx context.Context, externalID string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE external_id=$1`, externalID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *userRepository) AssignRole(ctx context.Context, id string, role domain.Role, departmentID *string) (*domain.User, error) {
	const query = `
        UPDATE users SET role=$1, department_id=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING ` + userColumns
	var user domain.User
	if err := scanUserInto(r.pool.QueryRow(ctx, query, role, departmentID, id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.SearchTerm))+"%")
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(email) LIKE %s)", p, p))
	}
	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		userColumns, strings.Join(clauses, " AND "), limit, offset)
	return r.query(ctx, query, args...)
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users WHERE role=$1 ORDER BY created_at`, role)
}

func (r *userRepository) ListByDepartment(ctx context.Context, departmentID string) ([]domain.User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users WHERE department_id=$1 ORDER BY created_at`, departmentID)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := scanUserInto(r.pool.QueryRow(ctx, query, arg), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) query(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := scanUserInto(rows, &user); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func scanUserInto(row pgx.Row, user *domain.User) error {
	return row.Scan(
		&user.ID,
		&user.ExternalID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.Role,
		&user.DepartmentID,
		&user.State,
		&user.IsGuest,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
