package dto

import (
	"time"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
)

// UserResponse is the public user view.
type UserResponse struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone,omitempty"`
	State        string      `json:"state,omitempty"`
	Role         domain.Role `json:"role"`
	DepartmentID *string     `json:"department_id"`
	IsGuest      bool        `json:"is_guest"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AssignRoleRequest payload.
type AssignRoleRequest struct {
	Role         domain.Role `json:"role" validate:"required,oneof=admin mda staff user federal saber_agent reform_champion"`
	DepartmentID *string     `json:"department_id"`
}

// ElevateRequest claims a gated role with an access code.
type ElevateRequest struct {
	Role         domain.Role `json:"role" validate:"required,oneof=mda staff saber_agent reform_champion"`
	Code         string      `json:"code" validate:"required,max=32"`
	DepartmentID *string     `json:"department_id"`
}

// DepartmentRequest creates or updates a department.
type DepartmentRequest struct {
	Name        string `json:"name" validate:"max=200"`
	Description string `json:"description" validate:"max=1000"`
	IsActive    *bool  `json:"is_active"`
}

// DepartmentResponse view.
type DepartmentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationResponse view.
type NotificationResponse struct {
	ID         string                  `json:"id"`
	Type       domain.NotificationType `json:"type"`
	Message    string                  `json:"message"`
	EntityType string                  `json:"entity_type,omitempty"`
	EntityID   *string                 `json:"entity_id,omitempty"`
	Read       bool                    `json:"read"`
	CreatedAt  time.Time               `json:"created_at"`
}

// FileResponse view.
type FileResponse struct {
	Key         string    `json:"key"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUserResponse maps a user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		State:        u.State,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
		IsGuest:      u.IsGuest,
		CreatedAt:    u.CreatedAt,
	}
}

// NewUserResponses maps a list.
func NewUserResponses(list []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(list))
	for i := range list {
		out = append(out, NewUserResponse(&list[i]))
	}
	return out
}

// NewDepartmentResponses maps a list.
func NewDepartmentResponses(list []domain.Department) []DepartmentResponse {
	out := make([]DepartmentResponse, 0, len(list))
	for i := range list {
		out = append(out, NewDepartmentResponse(&list[i]))
	}
	return out
}

// NewDepartmentResponse maps a department.
func NewDepartmentResponse(d *domain.Department) DepartmentResponse {
	return DepartmentResponse{ID: d.ID, Name: d.Name, Description: d.Description, IsActive: d.IsActive, CreatedAt: d.CreatedAt}
}

// NewNotificationResponses maps a list.
func NewNotificationResponses(list []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, NotificationResponse{
			ID:         n.ID,
			Type:       n.Type,
			Message:    n.Message,
			EntityType: n.EntityType,
			EntityID:   n.EntityID,
			Read:       n.Read,
			CreatedAt:  n.CreatedAt,
		})
	}
	return out
}

// NewFileResponse maps an upload record.
func NewFileResponse(f *domain.UploadedFile) FileResponse {
	return FileResponse{
		Key:         f.StorageKey,
		FileName:    f.FileName,
		ContentType: f.ContentType,
		SizeBytes:   f.SizeBytes,
		UploadedBy:  f.UploadedBy,
		CreatedAt:   f.CreatedAt,
	}
}
