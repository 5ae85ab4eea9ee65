package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	"github.com/pebecgov/pebec-app-sub000/internal/service"
)

const maxBackoff = time.Hour

// OutboxConfig tunes delivery.
type OutboxConfig struct {
	BatchSize   int
	MaxAttempts int
	Backoff     time.Duration
	Lease       time.Duration
}

// OutboxWorker drains stored domain events into the in-process dispatcher,
// where the notification handlers write in-app notifications and send email.
type OutboxWorker struct {
	outbox     repository.OutboxRepository
	dispatcher events.Dispatcher
	cfg        OutboxConfig
	logger     *zap.Logger
	now        func() time.Time
}

// StartNotificationWorker subscribes the notification handlers and returns
// the worker that feeds them.
func StartNotificationWorker(outbox repository.OutboxRepository, notifications *service.NotificationService, cfg OutboxConfig, logger *zap.Logger) *OutboxWorker {
	dispatcher := events.NewInMemoryDispatcher()
	if notifications != nil {
		notifications.RegisterHandlers(dispatcher)
	}
	return NewOutboxWorker(outbox, dispatcher, cfg, logger)
}

// NewOutboxWorker builds a worker over an existing dispatcher.
func NewOutboxWorker(outbox repository.OutboxRepository, dispatcher events.Dispatcher, cfg OutboxConfig, logger *zap.Logger) *OutboxWorker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 8
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 30 * time.Second
	}
	if cfg.Lease <= 0 {
		cfg.Lease = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxWorker{outbox: outbox, dispatcher: dispatcher, cfg: cfg, logger: logger, now: time.Now}
}

// Drain delivers one batch and reports how many events succeeded. Failed
// events are retried with exponential backoff until MaxAttempts.
func (w *OutboxWorker) Drain(ctx context.Context) (int, error) {
	now := w.now().UTC()
	batch, err := w.outbox.ClaimDue(ctx, now, w.cfg.Lease, w.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("claim outbox: %w", err)
	}

	delivered := 0
	for _, stored := range batch {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		err := w.deliver(ctx, stored)
		if err == nil {
			if markErr := w.outbox.MarkDelivered(ctx, stored.ID, w.now().UTC()); markErr != nil {
				w.logger.Error("mark outbox delivered failed", zap.String("outbox_id", stored.ID), zap.Error(markErr))
			}
			delivered++
			continue
		}

		attempts := stored.Attempts + 1
		fields := []zap.Field{
			zap.String("outbox_id", stored.ID),
			zap.String("event_type", stored.EventType),
			zap.Int("attempts", attempts),
			zap.Error(err),
		}
		if attempts >= w.cfg.MaxAttempts {
			w.logger.Error("outbox event failed permanently", fields...)
			if markErr := w.outbox.MarkFailed(ctx, stored.ID, attempts, err.Error()); markErr != nil {
				w.logger.Error("mark outbox failed", zap.String("outbox_id", stored.ID), zap.Error(markErr))
			}
			continue
		}
		next := w.now().UTC().Add(Backoff(w.cfg.Backoff, attempts))
		w.logger.Warn("outbox event will retry", append(fields, zap.Time("next_attempt_at", next))...)
		if markErr := w.outbox.MarkRetry(ctx, stored.ID, attempts, next, err.Error()); markErr != nil {
			w.logger.Error("mark outbox retry failed", zap.String("outbox_id", stored.ID), zap.Error(markErr))
		}
	}
	if len(batch) > 0 {
		w.logger.Info("outbox drained", zap.Int("claimed", len(batch)), zap.Int("delivered", delivered))
	}
	return delivered, nil
}

func (w *OutboxWorker) deliver(ctx context.Context, stored domain.OutboxEvent) error {
	event, err := events.FromOutbox(stored)
	if err != nil {
		return err
	}
	return w.dispatcher.Publish(ctx, event)
}

// Backoff doubles base per attempt, capped at an hour.
func Backoff(base time.Duration, attempts int) time.Duration {
	d := base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
