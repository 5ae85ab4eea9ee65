package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/policy"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	"github.com/pebecgov/pebec-app-sub000/internal/storage"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// FileService stores uploads and tracks who owns them.
type FileService struct {
	files    repository.FileRepository
	storage  storage.Storage
	maxBytes int64
	logger   *zap.Logger
}

// FileDependencies bundles collaborators.
type FileDependencies struct {
	FileRepo       repository.FileRepository
	Storage        storage.Storage
	MaxUploadBytes int64
	Logger         *zap.Logger
}

// NewFileService builds the service.
func NewFileService(deps FileDependencies) *FileService {
	return &FileService{
		files:    deps.FileRepo,
		storage:  deps.Storage,
		maxBytes: deps.MaxUploadBytes,
		logger:   loggerOrNop(deps.Logger),
	}
}

// UploadInput describes one incoming file.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Upload writes the blob and records it against the caller.
func (s *FileService) Upload(ctx context.Context, caller *domain.User, input UploadInput) (*domain.UploadedFile, error) {
	if _, err := policy.Authorize(caller, policy.FileUpload, nil); err != nil {
		return nil, err
	}
	name := filepath.Base(strings.TrimSpace(input.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, apperrors.NewValidationError("file name is required", map[string]any{"file": "is required"})
	}
	if s.maxBytes > 0 && input.Size > s.maxBytes {
		return nil, apperrors.NewValidationError("file too large", map[string]any{
			"size":      input.Size,
			"max_bytes": s.maxBytes,
		})
	}

	body := input.Body
	if s.maxBytes > 0 {
		// The declared size can lie; never read past the limit plus one byte.
		body = io.LimitReader(body, s.maxBytes+1)
	}
	key, size, err := s.storage.Upload(ctx, name, input.ContentType, body)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("store upload: %w", err))
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		s.discard(ctx, key)
		return nil, apperrors.NewValidationError("file too large", map[string]any{"max_bytes": s.maxBytes})
	}

	file := &domain.UploadedFile{
		StorageKey:  key,
		FileName:    name,
		ContentType: input.ContentType,
		SizeBytes:   size,
		UploadedBy:  caller.ID,
	}
	if err := s.files.Create(ctx, file); err != nil {
		s.discard(ctx, key)
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("file uploaded", zap.String("key", key), zap.Int64("size", size), zap.String("user_id", caller.ID))
	return file, nil
}

// Download opens a stored blob. Keys are unguessable, so any authenticated
// caller holding one may read it.
func (s *FileService) Download(ctx context.Context, caller *domain.User, key string) (*domain.UploadedFile, io.ReadCloser, error) {
	if caller == nil {
		return nil, nil, apperrors.NewUnauthorized("authentication required")
	}
	file, err := s.files.GetByKey(ctx, key)
	if err != nil {
		return nil, nil, notFoundOr(err, "file", map[string]any{"key": key})
	}
	rc, err := s.storage.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			return nil, nil, apperrors.NewNotFound("file", map[string]any{"key": key})
		}
		return nil, nil, apperrors.NewInternalError(err)
	}
	return file, rc, nil
}

// Delete removes the blob and its record. Owners may delete their own
// uploads; administrators any.
func (s *FileService) Delete(ctx context.Context, caller *domain.User, key string) error {
	file, err := s.files.GetByKey(ctx, key)
	if err != nil {
		return notFoundOr(err, "file", map[string]any{"key": key})
	}
	if _, err := policy.Authorize(caller, policy.FileDelete, &policy.Resource{OwnerID: file.UploadedBy}); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		return apperrors.NewInternalError(err)
	}
	if _, err := s.files.DeleteByKey(ctx, key); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *FileService) discard(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("discard upload failed", zap.String("key", key), zap.Error(err))
	}
}
