package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// FileRepository tracks uploaded blobs.
type FileRepository interface {
	Create(ctx context.Context, file *domain.UploadedFile) error
	GetByKey(ctx context.Context, key string) (*domain.UploadedFile, error)
	DeleteByKey(ctx context.Context, key string) (bool, error)
}

type fileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository builds repository.
func NewFileRepository(pool *pgxpool.Pool) FileRepository {
	return &fileRepository{pool: pool}
}

func (r *fileRepository) Create(ctx context.Context, file *domain.UploadedFile) error {
	const query = `
        INSERT INTO uploaded_files (storage_key, file_name, content_type, size_bytes, uploaded_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		file.StorageKey,
		file.FileName,
		file.ContentType,
		file.SizeBytes,
		file.UploadedBy,
	).Scan(&file.ID, &file.CreatedAt)
}

func (r *fileRepository) GetByKey(ctx context.Context, key string) (*domain.UploadedFile, error) {
	const query = `
        SELECT id, storage_key, file_name, content_type, size_bytes, uploaded_by, created_at
        FROM uploaded_files WHERE storage_key=$1`
	var file domain.UploadedFile
	if err := r.pool.QueryRow(ctx, query, key).Scan(
		&file.ID,
		&file.StorageKey,
		&file.FileName,
		&file.ContentType,
		&file.SizeBytes,
		&file.UploadedBy,
		&file.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) DeleteByKey(ctx context.Context, key string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM uploaded_files WHERE storage_key=$1`, key)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
