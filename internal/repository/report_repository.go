package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// ReportFilter narrows submission listings.
type ReportFilter struct {
	TemplateID  *string
	SubmittedBy *string
	Status      *domain.ReportStatus
	Limit       int
	Offset      int
}

// ReportRepository stores templates and submissions.
type ReportRepository interface {
	CreateTemplate(ctx context.Context, tpl *domain.ReportTemplate) error
	GetTemplate(ctx context.Context, id string) (*domain.ReportTemplate, error)
	ListTemplates(ctx context.Context) ([]domain.ReportTemplate, error)
	CreateSubmission(ctx context.Context, rep *domain.SubmittedReport) error
	GetSubmission(ctx context.Context, id string) (*domain.SubmittedReport, error)
	ListSubmissions(ctx context.Context, filter ReportFilter) ([]domain.SubmittedReport, error)
	Review(ctx context.Context, rep *domain.SubmittedReport) error
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository builds repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

const submissionColumns = `id, template_id, submitted_by, field_values, status, review_note, reviewed_by, created_at, reviewed_at`

func (r *reportRepository) CreateTemplate(ctx context.Context, tpl *domain.ReportTemplate) error {
	fields := tpl.Fields
	if fields == nil {
		fields = []domain.ReportField{}
	}
	const query = `
        INSERT INTO report_templates (name, description, fields, created_by)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, tpl.Name, tpl.Description, fields, tpl.CreatedBy).Scan(&tpl.ID, &tpl.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *reportRepository) GetTemplate(ctx context.Context, id string) (*domain.ReportTemplate, error) {
	var tpl domain.ReportTemplate
	row := r.pool.QueryRow(ctx, `SELECT id, name, description, fields, created_by, created_at FROM report_templates WHERE id=$1`, id)
	if err := row.Scan(&tpl.ID, &tpl.Name, &tpl.Description, &tpl.Fields, &tpl.CreatedBy, &tpl.CreatedAt); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *reportRepository) ListTemplates(ctx context.Context) ([]domain.ReportTemplate, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, fields, created_by, created_at FROM report_templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ReportTemplate
	for rows.Next() {
		var tpl domain.ReportTemplate
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Description, &tpl.Fields, &tpl.CreatedBy, &tpl.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, tpl)
	}
	return result, rows.Err()
}

func (r *reportRepository) CreateSubmission(ctx context.Context, rep *domain.SubmittedReport) error {
	values := rep.Values
	if values == nil {
		values = map[string]string{}
	}
	const query = `
        INSERT INTO submitted_reports (template_id, submitted_by, field_values, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, rep.TemplateID, rep.SubmittedBy, values, rep.Status).Scan(&rep.ID, &rep.CreatedAt)
}

func (r *reportRepository) GetSubmission(ctx context.Context, id string) (*domain.SubmittedReport, error) {
	var rep domain.SubmittedReport
	if err := scanSubmissionInto(r.pool.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submitted_reports WHERE id=$1`, id), &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *reportRepository) ListSubmissions(ctx context.Context, filter ReportFilter) ([]domain.SubmittedReport, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.TemplateID != nil {
		args = append(args, *filter.TemplateID)
		clauses = append(clauses, fmt.Sprintf("template_id=$%d", len(args)))
	}
	if filter.SubmittedBy != nil {
		args = append(args, *filter.SubmittedBy)
		clauses = append(clauses, fmt.Sprintf("submitted_by=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM submitted_reports WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		submissionColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SubmittedReport
	for rows.Next() {
		var rep domain.SubmittedReport
		if err := scanSubmissionInto(rows, &rep); err != nil {
			return nil, err
		}
		result = append(result, rep)
	}
	return result, rows.Err()
}

func (r *reportRepository) Review(ctx context.Context, rep *domain.SubmittedReport) error {
	const query = `
        UPDATE submitted_reports SET status=$1, review_note=$2, reviewed_by=$3, reviewed_at=$4
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query, rep.Status, rep.ReviewNote, rep.ReviewedBy, rep.ReviewedAt, rep.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanSubmissionInto(row pgx.Row, rep *domain.SubmittedReport) error {
	return row.Scan(
		&rep.ID,
		&rep.TemplateID,
		&rep.SubmittedBy,
		&rep.Values,
		&rep.Status,
		&rep.ReviewNote,
		&rep.ReviewedBy,
		&rep.CreatedAt,
		&rep.ReviewedAt,
	)
}
