package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// TaskFilter narrows task listings.
type TaskFilter struct {
	ProjectID  *string
	AssigneeID *string
	Status     *domain.TaskStatus
}

// ProjectRepository stores projects and their tasks.
type ProjectRepository interface {
	CreateProject(ctx context.Context, p *domain.Project) error
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	ListProjects(ctx context.Context, ownerID *string) ([]domain.Project, error)
	CreateTask(ctx context.Context, t *domain.Task) error
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	UpdateTask(ctx context.Context, t *domain.Task) error
	ListTasks(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository builds repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

const taskColumns = `id, project_id, title, description, assignee_id, due_date, steps, status, completed_at, created_at, updated_at`

func (r *projectRepository) CreateProject(ctx context.Context, p *domain.Project) error {
	const query = `
        INSERT INTO projects (name, description, owner_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, p.Name, p.Description, p.OwnerID).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *projectRepository) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	row := r.pool.QueryRow(ctx, `SELECT id, name, description, owner_id, created_at, updated_at FROM projects WHERE id=$1`, id)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepository) ListProjects(ctx context.Context, ownerID *string) ([]domain.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, owner_id, created_at, updated_at FROM projects
         WHERE $1::uuid IS NULL OR owner_id=$1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *projectRepository) CreateTask(ctx context.Context, t *domain.Task) error {
	const query = `
        INSERT INTO tasks (project_id, title, description, assignee_id, due_date, steps, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		t.ProjectID,
		t.Title,
		t.Description,
		t.AssigneeID,
		t.DueDate,
		stepsOrEmpty(t.Steps),
		t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *projectRepository) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	if err := scanTaskInto(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1`, id), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *projectRepository) UpdateTask(ctx context.Context, t *domain.Task) error {
	const query = `
        UPDATE tasks SET title=$1, description=$2, assignee_id=$3, due_date=$4, steps=$5, status=$6,
            completed_at=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		t.Title,
		t.Description,
		t.AssigneeID,
		t.DueDate,
		stepsOrEmpty(t.Steps),
		t.Status,
		t.CompletedAt,
		t.ID,
	).Scan(&t.UpdatedAt)
}

func (r *projectRepository) ListTasks(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("project_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY created_at`, taskColumns, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := scanTaskInto(rows, &t); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func scanTaskInto(row pgx.Row, t *domain.Task) error {
	return row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.AssigneeID,
		&t.DueDate,
		&t.Steps,
		&t.Status,
		&t.CompletedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}
