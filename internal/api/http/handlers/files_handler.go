package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/pebecgov/pebec-app-sub000/internal/api/dto"
	"github.com/pebecgov/pebec-app-sub000/internal/service"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// FilesHandler serves uploads.
type FilesHandler struct {
	files *service.FileService
}

// NewFilesHandler constructs handler.
func NewFilesHandler(files *service.FileService) *FilesHandler {
	return &FilesHandler{files: files}
}

// Upload POST /files (multipart field "file").
func (h *FilesHandler) Upload(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file is required", map[string]any{"file": "is required"})
	}
	src, err := header.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer src.Close()

	file, err := h.files.Upload(c.UserContext(), user, service.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Body:        src,
	})
	if err != nil {
		return err
	}
	return created(c, dto.NewFileResponse(file))
}

// Download GET /files/*. Keys contain slashes.
func (h *FilesHandler) Download(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	file, rc, err := h.files.Download(c.UserContext(), user, c.Params("*"))
	if err != nil {
		return err
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if file.ContentType != "" {
		c.Set(fiber.HeaderContentType, file.ContentType)
	}
	c.Attachment(file.FileName)
	return c.Send(body)
}

// Delete DELETE /files/*.
func (h *FilesHandler) Delete(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.files.Delete(c.UserContext(), user, c.Params("*")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
