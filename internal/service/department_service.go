package service

import (
	"context"
	"strings"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/policy"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// DepartmentService manages the MDA directory.
type DepartmentService struct {
	departments repository.DepartmentRepository
}

// NewDepartmentService builds the service.
func NewDepartmentService(departments repository.DepartmentRepository) *DepartmentService {
	return &DepartmentService{departments: departments}
}

// DepartmentInput carries editable department fields.
type DepartmentInput struct {
	Name        string
	Description string
	IsActive    *bool
}

// Create adds an MDA. Names are unique ignoring case.
func (s *DepartmentService) Create(ctx context.Context, caller *domain.User, input DepartmentInput) (*domain.Department, error) {
	if err := policy.RequireAll(caller, policy.DepartmentManage); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"name": "is required"})
	}
	dept := &domain.Department{Name: name, Description: strings.TrimSpace(input.Description), IsActive: true}
	if input.IsActive != nil {
		dept.IsActive = *input.IsActive
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, conflictOr(err, "department already exists", map[string]any{"name": name})
	}
	return dept, nil
}

// Update edits an MDA.
func (s *DepartmentService) Update(ctx context.Context, caller *domain.User, id string, input DepartmentInput) (*domain.Department, error) {
	if err := policy.RequireAll(caller, policy.DepartmentManage); err != nil {
		return nil, err
	}
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "department", map[string]any{"department_id": id})
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		dept.Name = name
	}
	if input.Description != "" {
		dept.Description = strings.TrimSpace(input.Description)
	}
	if input.IsActive != nil {
		dept.IsActive = *input.IsActive
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, conflictOr(err, "department already exists", map[string]any{"name": dept.Name})
	}
	return dept, nil
}

// List returns active departments; administrators may include inactive ones.
func (s *DepartmentService) List(ctx context.Context, caller *domain.User, includeInactive bool) ([]domain.Department, error) {
	if includeInactive && !policy.Can(caller, policy.DepartmentManage, nil) {
		includeInactive = false
	}
	depts, err := s.departments.List(ctx, includeInactive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return depts, nil
}
