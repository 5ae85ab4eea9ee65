package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pebecgov/pebec-app-sub000/internal/api/dto"
	"github.com/pebecgov/pebec-app-sub000/internal/auth"
	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// bind parses the JSON body into req and runs struct validation.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(req)
}

// caller returns the signed-in user, or an unauthorized error.
func caller(c *fiber.Ctx) (*domain.User, error) {
	user := auth.UserFromContext(c)
	if user == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return user, nil
}

func data(c *fiber.Ctx, v any) error {
	return c.JSON(fiber.Map{"data": v})
}

func created(c *fiber.Ctx, v any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": v})
}

// paging reads page/page_size into limit/offset.
func paging(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	size := min(parseInt(c.Query("page_size"), defaultPageSize), maxPageSize)
	return size, (page - 1) * size
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	if v := strings.TrimSpace(c.Query(key)); v != "" {
		return &v
	}
	return nil
}

func pathInt(c *fiber.Ctx, key string) (int, error) {
	v, err := strconv.Atoi(c.Params(key))
	if err != nil {
		return 0, apperrors.NewValidationError("invalid path parameter", map[string]any{key: "must be an integer"})
	}
	return v, nil
}
