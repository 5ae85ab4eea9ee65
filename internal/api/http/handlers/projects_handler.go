package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pebecgov/pebec-app-sub000/internal/api/dto"
	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	"github.com/pebecgov/pebec-app-sub000/internal/service"
)

// ProjectsHandler serves projects and their checklist tasks.
type ProjectsHandler struct {
	projects *service.ProjectService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(projects *service.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{projects: projects}
}

func (h *ProjectsHandler) Create(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.ProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.projects.CreateProject(c.UserContext(), user, req.Name, req.Description)
	if err != nil {
		return err
	}
	return created(c, dto.NewProjectResponse(p))
}

func (h *ProjectsHandler) List(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	list, err := h.projects.ListProjects(c.UserContext(), user)
	if err != nil {
		return err
	}
	return data(c, dto.NewProjectResponses(list))
}

// CreateTask POST /projects/:id/tasks.
func (h *ProjectsHandler) CreateTask(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.TaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := h.projects.CreateTask(c.UserContext(), user, c.Params("id"), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		Steps:       req.Steps,
	})
	if err != nil {
		return err
	}
	return created(c, dto.NewTaskResponse(task))
}

// ListTasks GET /tasks?project_id=&assignee_id=&status=.
func (h *ProjectsHandler) ListTasks(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	filter := repository.TaskFilter{
		ProjectID:  optionalQuery(c, "project_id"),
		AssigneeID: optionalQuery(c, "assignee_id"),
	}
	if status := optionalQuery(c, "status"); status != nil {
		s := domain.TaskStatus(*status)
		filter.Status = &s
	}
	list, err := h.projects.ListTasks(c.UserContext(), user, filter)
	if err != nil {
		return err
	}
	return data(c, dto.NewTaskResponses(list))
}

// CompleteStep POST /tasks/:id/steps.
func (h *ProjectsHandler) CompleteStep(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.StepRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := h.projects.CompleteTaskStep(c.UserContext(), user, c.Params("id"), req.Index)
	if err != nil {
		return err
	}
	return data(c, dto.NewTaskResponse(task))
}
