package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	"github.com/pebecgov/pebec-app-sub000/internal/policy"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// ProjectService manages projects and their step-tracked tasks.
type ProjectService struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
	events   publisher
	logger   *zap.Logger
	now      Clock
}

// ProjectDependencies bundles collaborators.
type ProjectDependencies struct {
	ProjectRepo repository.ProjectRepository
	UserRepo    repository.UserRepository
	Publisher   events.Publisher
	Logger      *zap.Logger
	Clock       Clock
}

// NewProjectService builds the service.
func NewProjectService(deps ProjectDependencies) *ProjectService {
	logger := loggerOrNop(deps.Logger)
	return &ProjectService{
		projects: deps.ProjectRepo,
		users:    deps.UserRepo,
		events:   publisher{pub: deps.Publisher, logger: logger},
		logger:   logger,
		now:      clockOrDefault(deps.Clock),
	}
}

// TaskInput describes a new task.
type TaskInput struct {
	Title       string
	Description string
	AssigneeID  string
	DueDate     *time.Time
	Steps       []string
}

// CreateProject opens a project owned by the caller.
func (s *ProjectService) CreateProject(ctx context.Context, caller *domain.User, name, description string) (*domain.Project, error) {
	if _, err := policy.Authorize(caller, policy.ProjectCreate, nil); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"name": "is required"})
	}
	p := &domain.Project{Name: name, Description: strings.TrimSpace(description), OwnerID: caller.ID}
	if err := s.projects.CreateProject(ctx, p); err != nil {
		return nil, apperrors.MapError(err)
	}
	return p, nil
}

// ListProjects lists every project for admins and the caller's own otherwise.
func (s *ProjectService) ListProjects(ctx context.Context, caller *domain.User) ([]domain.Project, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	var owner *string
	if policy.RequireAll(caller, policy.TaskRead) != nil {
		owner = &caller.ID
	}
	list, err := s.projects.ListProjects(ctx, owner)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// CreateTask adds a task to a project the caller owns and notifies the assignee.
func (s *ProjectService) CreateTask(ctx context.Context, caller *domain.User, projectID string, input TaskInput) (*domain.Task, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := policy.Authorize(caller, policy.TaskCreate, &policy.Resource{OwnerID: project.OwnerID}); err != nil {
		return nil, err
	}
	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "is required"
	}
	steps := newSteps(input.Steps)
	if len(steps) == 0 {
		details["steps"] = "at least one step is required"
	}
	assignee := strings.TrimSpace(input.AssigneeID)
	if assignee == "" {
		details["assignee_id"] = "is required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid task", details)
	}
	if _, err := s.users.GetByID(ctx, assignee); err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": assignee})
	}

	task := &domain.Task{
		ProjectID:   project.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		AssigneeID:  assignee,
		DueDate:     input.DueDate,
		Steps:       steps,
		Status:      domain.TaskPending,
	}
	if err := s.projects.CreateTask(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.events.notify(ctx, task.ID, caller, events.NotifyPayload{
		Audience:   events.Audience{UserIDs: []string{assignee}},
		Type:       domain.NotificationTask,
		Message:    "New task in " + project.Name + ": " + task.Title,
		EntityType: "task",
		EntityID:   strPtr(task.ID),
	})
	return task, nil
}

// CompleteTaskStep ticks one step. The task moves to in progress on the
// first step and to completed on the last, which notifies the project owner.
func (s *ProjectService) CompleteTaskStep(ctx context.Context, caller *domain.User, taskID string, index int) (*domain.Task, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	task, err := s.projects.GetTask(ctx, taskID)
	if err != nil {
		return nil, notFoundOr(err, "task", map[string]any{"task_id": taskID})
	}
	project, err := s.loadProject(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(caller, policy.TaskUpdate, &policy.Resource{OwnerID: task.AssigneeID}) &&
		!policy.Can(caller, policy.TaskUpdate, &policy.Resource{OwnerID: project.OwnerID}) {
		return nil, apperrors.NewForbidden("only the assignee or project owner can update this task")
	}

	now := s.now().UTC()
	changed, err := completeStep(task.Steps, index, caller.ID, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		return task, nil
	}
	finished := domain.CountCompleted(task.Steps) == len(task.Steps)
	switch {
	case finished:
		task.Status = domain.TaskCompleted
		task.CompletedAt = &now
	default:
		task.Status = domain.TaskInProgress
	}
	if err := s.projects.UpdateTask(ctx, task); err != nil {
		return nil, notFoundOr(err, "task", map[string]any{"task_id": taskID})
	}
	if finished {
		s.events.notify(ctx, task.ID, caller, events.NotifyPayload{
			Audience:   events.Audience{UserIDs: []string{project.OwnerID}},
			Type:       domain.NotificationTask,
			Message:    "Task completed: " + task.Title,
			EntityType: "task",
			EntityID:   strPtr(task.ID),
		})
	}
	return task, nil
}

// ListTasks lists tasks. Admins see all, project owners their project's,
// everyone else what is assigned to them.
func (s *ProjectService) ListTasks(ctx context.Context, caller *domain.User, filter repository.TaskFilter) ([]domain.Task, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if policy.RequireAll(caller, policy.TaskRead) != nil {
		ownsProject := false
		if filter.ProjectID != nil {
			project, err := s.loadProject(ctx, *filter.ProjectID)
			if err != nil {
				return nil, err
			}
			ownsProject = project.OwnerID == caller.ID
		}
		if !ownsProject {
			filter.AssigneeID = &caller.ID
		}
	}
	list, err := s.projects.ListTasks(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

func (s *ProjectService) loadProject(ctx context.Context, id string) (*domain.Project, error) {
	p, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "project", map[string]any{"project_id": id})
	}
	return p, nil
}
