package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/pebecgov/pebec-app-sub000/internal/api/http"
	"github.com/pebecgov/pebec-app-sub000/internal/api/http/handlers"
	"github.com/pebecgov/pebec-app-sub000/internal/auth"
	"github.com/pebecgov/pebec-app-sub000/internal/config"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	"github.com/pebecgov/pebec-app-sub000/internal/jobs"
	"github.com/pebecgov/pebec-app-sub000/internal/mailer"
	"github.com/pebecgov/pebec-app-sub000/internal/observability"
	"github.com/pebecgov/pebec-app-sub000/internal/persistence"
	"github.com/pebecgov/pebec-app-sub000/internal/reminder"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	"github.com/pebecgov/pebec-app-sub000/internal/service"
	"github.com/pebecgov/pebec-app-sub000/internal/storage"
	"github.com/pebecgov/pebec-app-sub000/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	loc, err := time.LoadLocation(cfg.Portal.Timezone)
	if err != nil {
		logger.Fatal("invalid portal timezone", zap.String("timezone", cfg.Portal.Timezone), zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	blobs, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to init storage", zap.Error(err))
	}

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	outboxRepo := repository.NewOutboxRepository(pool)
	fileRepo := repository.NewFileRepository(pool)

	publisher := events.NewOutboxPublisher(outboxRepo)
	numberer := service.NewNumberer(repository.NewSequenceRepository(pool), nil)

	reminders := service.NewReminderService(service.ReminderDependencies{
		Queue:        reminder.NewRedisQueue(redis.Client, cfg.Redis.ReminderKey),
		TicketRepo:   ticketRepo,
		Publisher:    publisher,
		Logger:       logger,
		FirstDelay:   time.Duration(cfg.Portal.FirstReminderMinutes) * time.Minute,
		DailyHourUTC: cfg.Portal.ReminderHourUTC,
	})

	accessCodes := service.NewAccessCodeService(service.AccessCodeDependencies{
		AccessCodeRepo: repository.NewAccessCodeRepository(pool),
		Publisher:      publisher,
		Logger:         logger,
		BcryptCost:     cfg.Auth.BcryptCost,
	})
	users := service.NewUserService(service.UserDependencies{
		UserRepo:       userRepo,
		DepartmentRepo: departmentRepo,
		AccessCodes:    accessCodes,
		Logger:         logger,
	})
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		CommentRepo:    repository.NewTicketCommentRepository(pool),
		HistoryRepo:    repository.NewTicketHistoryRepository(pool),
		DepartmentRepo: departmentRepo,
		UserRepo:       userRepo,
		FileRepo:       fileRepo,
		Numberer:       numberer,
		Reminders:      reminders,
		Storage:        blobs,
		Publisher:      publisher,
		Logger:         logger,
	})
	assignment := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:     ticketRepo,
		DepartmentRepo: departmentRepo,
		UserRepo:       userRepo,
		HistoryRepo:    repository.NewTicketHistoryRepository(pool),
		Reminders:      reminders,
		Publisher:      publisher,
		Logger:         logger,
	})
	stats := service.NewStatsService(service.StatsDependencies{
		TicketRepo:     ticketRepo,
		DepartmentRepo: departmentRepo,
		Location:       loc,
	})
	notifications := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: repository.NewNotificationRepository(pool),
		UserRepo:         userRepo,
		TicketRepo:       ticketRepo,
		Mailer:           mailer.New(cfg.Email, logger),
		Logger:           logger,
		PublicURL:        cfg.Portal.PublicURL,
	})
	files := service.NewFileService(service.FileDependencies{
		FileRepo:       fileRepo,
		Storage:        blobs,
		MaxUploadBytes: int64(cfg.Storage.MaxUploadMB) << 20,
		Logger:         logger,
	})
	letters := service.NewLetterService(service.LetterDependencies{
		LetterRepo:     repository.NewLetterRepository(pool),
		DepartmentRepo: departmentRepo,
		Publisher:      publisher,
		Logger:         logger,
	})
	eventsSvc := service.NewEventService(service.EventDependencies{
		EventRepo: repository.NewEventRepository(pool),
		Numberer:  numberer,
		Publisher: publisher,
		Logger:    logger,
	})
	newsletters := service.NewNewsletterService(service.NewsletterDependencies{
		NewsletterRepo: repository.NewNewsletterRepository(pool),
		Publisher:      publisher,
		Logger:         logger,
	})
	reports := service.NewReportService(service.ReportDependencies{
		ReportRepo: repository.NewReportRepository(pool),
		Publisher:  publisher,
		Logger:     logger,
	})
	saber := service.NewSaberService(service.SaberDependencies{
		SaberRepo: repository.NewSaberRepository(pool),
		Publisher: publisher,
		Logger:    logger,
	})
	meetings := service.NewMeetingService(service.MeetingDependencies{
		MeetingRepo: repository.NewMeetingRepository(pool),
		UserRepo:    userRepo,
		Publisher:   publisher,
		Logger:      logger,
		Location:    loc,
	})
	projects := service.NewProjectService(service.ProjectDependencies{
		ProjectRepo: repository.NewProjectRepository(pool),
		UserRepo:    userRepo,
		Publisher:   publisher,
		Logger:      logger,
	})
	cleanup := service.NewCleanupService(repository.NewCleanupRepository(pool), logger)

	outboxWorker := worker.StartNotificationWorker(outboxRepo, notifications, worker.OutboxConfig{
		BatchSize:   cfg.Scheduler.OutboxBatchSize,
		MaxAttempts: cfg.Scheduler.OutboxMaxAttempts,
		Backoff:     time.Duration(cfg.Scheduler.OutboxBackoffSecs) * time.Second,
	}, logger)

	scheduler := jobs.NewScheduler(logger, metrics, cfg.Scheduler.JobTimeout())
	if cfg.Scheduler.Enabled {
		registerJobs(scheduler, cfg.Scheduler, logger, jobSet{
			cleanup:     cleanup,
			accessCodes: accessCodes,
			outbox:      outboxWorker,
			reminders:   reminders,
		})
		scheduler.Start()
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes).WithIssuer(cfg.Auth.JWTIssuer)
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.App.BodyLimitMB << 20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics,
			handlers.Dependency{Name: "postgres", Pinger: pg},
			handlers.Dependency{Name: "redis", Pinger: redis},
		),
		Tickets:        handlers.NewTicketsHandler(tickets, assignment),
		Stats:          handlers.NewStatsHandler(stats, loc),
		Users:          handlers.NewUsersHandler(users, accessCodes, cfg.Identity.WebhookSecret),
		Departments:    handlers.NewDepartmentsHandler(service.NewDepartmentService(departmentRepo)),
		Notifications:  handlers.NewNotificationsHandler(notifications),
		Files:          handlers.NewFilesHandler(files),
		Letters:        handlers.NewLettersHandler(letters),
		Events:         handlers.NewEventsHandler(eventsSvc, newsletters),
		Reports:        handlers.NewReportsHandler(reports),
		Saber:          handlers.NewSaberHandler(saber),
		Meetings:       handlers.NewMeetingsHandler(meetings),
		Projects:       handlers.NewProjectsHandler(projects),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if cfg.Scheduler.Enabled {
		<-scheduler.Stop().Done()
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

type jobSet struct {
	cleanup     *service.CleanupService
	accessCodes *service.AccessCodeService
	outbox      *worker.OutboxWorker
	reminders   *service.ReminderService
}

func registerJobs(s *jobs.Scheduler, cfg config.SchedulerConfig, logger *zap.Logger, set jobSet) {
	entries := []struct {
		name string
		expr string
		job  jobs.Job
	}{
		{"cleanup", cfg.CleanupCron, func(ctx context.Context) error {
			_, err := set.cleanup.Run(ctx)
			return err
		}},
		{"access_code_rotation", cfg.AccessCodeCron, func(ctx context.Context) error {
			_, err := set.accessCodes.Rotate(ctx, nil)
			return err
		}},
		{"outbox_drain", cfg.OutboxCron, func(ctx context.Context) error {
			_, err := set.outbox.Drain(ctx)
			return err
		}},
		{"ticket_reminders", cfg.ReminderCron, worker.ReminderJob(set.reminders)},
	}
	for _, e := range entries {
		if err := s.AddJob(e.name, e.expr, e.job); err != nil {
			logger.Fatal("failed to register job", zap.String("job", e.name), zap.Error(err))
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
