package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// Clock returns the current time; tests substitute a fixed one.
type Clock func() time.Time

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// notFoundOr maps pgx.ErrNoRows to a NOT_FOUND error for resource and
// everything else through MapError.
func notFoundOr(err error, resource string, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.MapError(err)
}

func conflictOr(err error, message string, details map[string]any) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.NewConflict(message, details)
	}
	return apperrors.MapError(err)
}

// publisher wraps event emission. A failed publish is logged and never
// fails the mutation that triggered it.
type publisher struct {
	pub    events.Publisher
	logger *zap.Logger
}

func (p publisher) emit(ctx context.Context, eventType events.EventType, aggregateID string, actor *domain.User, payload any) {
	if p.pub == nil {
		return
	}
	event, err := events.New(eventType, aggregateID, actorID(actor), payload)
	if err == nil {
		err = p.pub.Publish(ctx, event)
	}
	if err != nil {
		p.logger.Error("publish event failed",
			zap.String("event_type", string(eventType)),
			zap.String("aggregate_id", aggregateID),
			zap.Error(err))
	}
}

func (p publisher) notify(ctx context.Context, aggregateID string, actor *domain.User, payload events.NotifyPayload) {
	if payload.Audience.Empty() {
		return
	}
	p.emit(ctx, events.EventNotify, aggregateID, actor, payload)
}

// activeDepartment finds an active department by name. Blank, unknown and
// inactive names all yield nil without an error.
func activeDepartment(ctx context.Context, repo repository.DepartmentRepository, name string) (*domain.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	dept, err := repo.GetByName(ctx, name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !dept.IsActive {
		return nil, nil
	}
	return dept, nil
}

func actorID(user *domain.User) *string {
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}

func strPtr(s string) *string {
	return &s
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// preview truncates body to at most max runes.
func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
