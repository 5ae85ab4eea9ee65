package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/repository"
)

// CleanupService reconciles soft references left behind by deletions.
type CleanupService struct {
	cleanup repository.CleanupRepository
	logger  *zap.Logger
}

// NewCleanupService builds the service.
func NewCleanupService(cleanup repository.CleanupRepository, logger *zap.Logger) *CleanupService {
	return &CleanupService{cleanup: cleanup, logger: loggerOrNop(logger)}
}

// Run performs one sweep.
func (s *CleanupService) Run(ctx context.Context) (repository.CleanupResult, error) {
	result, err := s.cleanup.SweepOrphans(ctx)
	if err != nil {
		return result, err
	}
	s.logger.Info("orphan cleanup finished",
		zap.Int64("total", result.Total()),
		zap.Int64("notifications", result.Notifications),
		zap.Int64("ticket_notifications", result.TicketNotices),
		zap.Int64("agent_assignments", result.AgentAssignments),
		zap.Int64("ticket_departments", result.TicketDepartments),
		zap.Int64("user_departments", result.UserDepartments),
		zap.Int64("letter_departments", result.LetterDepartments),
		zap.Int64("comments", result.Comments),
		zap.Int64("history", result.History),
		zap.Int64("event_registrations", result.EventRegistrations),
		zap.Int64("submitted_reports", result.SubmittedReports),
		zap.Int64("tasks", result.Tasks),
	)
	return result, nil
}
