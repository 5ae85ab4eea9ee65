package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pebecgov/pebec-app-sub000/internal/api/http/handlers"
	"github.com/pebecgov/pebec-app-sub000/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Stats          *handlers.StatsHandler
	Users          *handlers.UsersHandler
	Departments    *handlers.DepartmentsHandler
	Notifications  *handlers.NotificationsHandler
	Files          *handlers.FilesHandler
	Letters        *handlers.LettersHandler
	Events         *handlers.EventsHandler
	Reports        *handlers.ReportsHandler
	Saber          *handlers.SaberHandler
	Meetings       *handlers.MeetingsHandler
	Projects       *handlers.ProjectsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api/v1")

	// Public surface. Optional auth attaches the caller when a token is sent.
	api.Post("/webhooks/identity", cfg.Users.IdentityWebhook)
	api.Post("/tickets", cfg.AuthMiddleware.Optional, cfg.Tickets.Create)
	api.Get("/tickets/track/:number", cfg.Tickets.Track)
	api.Get("/departments", cfg.AuthMiddleware.Optional, cfg.Departments.List)
	api.Get("/events", cfg.Events.List)
	api.Get("/events/:id", cfg.Events.Get)
	api.Post("/events/:id/registrations", cfg.AuthMiddleware.Optional, cfg.Events.Register)
	api.Post("/newsletters/subscribe", cfg.Events.Subscribe)
	api.Post("/newsletters/unsubscribe", cfg.Events.Unsubscribe)

	protected := api.Group("", cfg.AuthMiddleware.Handle)

	protected.Get("/users/me", cfg.Users.Me)
	protected.Post("/users/me/elevate", cfg.Users.Elevate)
	protected.Get("/users", cfg.Users.List)
	protected.Patch("/users/:id/role", cfg.Users.AssignRole)
	protected.Post("/access-codes/rotate", cfg.Users.RotateAccessCodes)

	protected.Post("/departments", cfg.Departments.Create)
	protected.Patch("/departments/:id", cfg.Departments.Update)

	tickets := protected.Group("/tickets")
	tickets.Get("/mine", cfg.Tickets.ListMine)
	tickets.Get("/department", cfg.Tickets.ListDepartment)
	tickets.Get("/number/:number", cfg.Tickets.GetByNumber)
	tickets.Get("/", cfg.Tickets.ListAll)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Delete("/:id", cfg.Tickets.Delete)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/reopen", cfg.Tickets.Reopen)
	tickets.Patch("/:id/department", cfg.Tickets.AssignDepartment)
	tickets.Patch("/:id/agent", cfg.Tickets.AssignAgent)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Get("/:id/history", cfg.Tickets.History)

	protected.Get("/stats/tickets", cfg.Stats.Tickets)
	protected.Get("/stats/departments", cfg.Stats.Departments)

	protected.Get("/notifications", cfg.Notifications.List)
	protected.Get("/notifications/unread-count", cfg.Notifications.UnreadCount)
	protected.Post("/notifications/read-all", cfg.Notifications.MarkAllRead)
	protected.Post("/notifications/:id/read", cfg.Notifications.MarkRead)

	protected.Post("/files", cfg.Files.Upload)
	protected.Get("/files/*", cfg.Files.Download)
	protected.Delete("/files/*", cfg.Files.Delete)

	protected.Post("/letters", cfg.Letters.Submit)
	protected.Get("/letters", cfg.Letters.List)
	protected.Get("/letters/:id", cfg.Letters.Get)
	protected.Patch("/letters/:id/status", cfg.Letters.UpdateStatus)

	protected.Post("/events", cfg.Events.Create)
	protected.Post("/events/check-in", cfg.Events.CheckIn)
	protected.Get("/events/:id/registrations", cfg.Events.Registrations)
	protected.Post("/newsletters", cfg.Events.CreateNewsletter)
	protected.Get("/newsletters", cfg.Events.ListNewsletters)
	protected.Post("/newsletters/:id/send", cfg.Events.SendNewsletter)

	protected.Post("/report-templates", cfg.Reports.CreateTemplate)
	protected.Get("/report-templates", cfg.Reports.ListTemplates)
	protected.Post("/reports", cfg.Reports.Submit)
	protected.Get("/reports", cfg.Reports.List)
	protected.Patch("/reports/:id/review", cfg.Reports.Review)

	protected.Post("/saber/materials", cfg.Saber.CreateMaterial)
	protected.Get("/saber/materials", cfg.Saber.ListMaterials)
	protected.Post("/saber/dli", cfg.Saber.CreateDLI)
	protected.Get("/saber/dli", cfg.Saber.ListDLI)
	protected.Post("/saber/dli/:id/steps", cfg.Saber.CompleteDLIStep)
	protected.Get("/berap", cfg.Saber.ListBerap)
	protected.Get("/berap/:year", cfg.Saber.GetBerap)
	protected.Put("/berap/:year", cfg.Saber.UpsertBerap)

	protected.Post("/meetings", cfg.Meetings.Schedule)
	protected.Get("/meetings", cfg.Meetings.ListMine)
	protected.Post("/meetings/:id/respond", cfg.Meetings.Respond)
	protected.Patch("/meetings/:id/schedule", cfg.Meetings.Reschedule)
	protected.Post("/meetings/:id/cancel", cfg.Meetings.Cancel)

	protected.Post("/projects", cfg.Projects.Create)
	protected.Get("/projects", cfg.Projects.List)
	protected.Post("/projects/:id/tasks", cfg.Projects.CreateTask)
	protected.Get("/tasks", cfg.Projects.ListTasks)
	protected.Post("/tasks/:id/steps", cfg.Projects.CompleteStep)
}
