package worker

import (
	"context"

	"github.com/pebecgov/pebec-app-sub000/internal/service"
)

// ReminderJob returns a scheduler job that fires due ticket reminders.
func ReminderJob(reminders *service.ReminderService) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := reminders.ProcessDue(ctx)
		return err
	}
}
