// Package policy holds the portal's role capability map. Services ask it
// whether a user may perform an action on a resource instead of comparing
// role names themselves.
package policy

import (
	"net/http"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// Scope is a bitmask describing how far a grant reaches.
type Scope uint8

const (
	ScopeNone       Scope = 0
	ScopeOwn        Scope = 1 << 0
	ScopeDepartment Scope = 1 << 1
	ScopeAll        Scope = 1 << 2
)

// Has reports whether s includes other.
func (s Scope) Has(other Scope) bool {
	return s&other != 0
}

// Action names a guarded operation.
type Action string

const (
	TicketCreate       Action = "ticket:create"
	TicketRead         Action = "ticket:read"
	TicketList         Action = "ticket:list"
	TicketUpdateStatus Action = "ticket:update_status"
	TicketReopen       Action = "ticket:reopen"
	TicketAssign       Action = "ticket:assign"
	TicketDelete       Action = "ticket:delete"
	TicketComment      Action = "ticket:comment"
	TicketStats        Action = "ticket:stats"

	UserList       Action = "user:list"
	UserAssignRole Action = "user:assign_role"

	DepartmentManage Action = "department:manage"
	AccessCodeRotate Action = "access_code:rotate"

	LetterCreate       Action = "letter:create"
	LetterRead         Action = "letter:read"
	LetterUpdateStatus Action = "letter:update_status"

	EventManage      Action = "event:manage"
	NewsletterManage Action = "newsletter:manage"

	ReportTemplateManage Action = "report:template_manage"
	ReportSubmit         Action = "report:submit"
	ReportRead           Action = "report:read"
	ReportReview         Action = "report:review"

	SaberMaterialManage Action = "saber:material_manage"
	SaberMaterialRead   Action = "saber:material_read"
	DLIManage           Action = "dli:manage"
	DLIUpdate           Action = "dli:update"
	DLIRead             Action = "dli:read"
	BerapManage         Action = "berap:manage"
	BerapRead           Action = "berap:read"

	MeetingSchedule Action = "meeting:schedule"
	MeetingManage   Action = "meeting:manage"
	MeetingRespond  Action = "meeting:respond"

	ProjectCreate Action = "project:create"
	TaskCreate    Action = "task:create"
	TaskUpdate    Action = "task:update"
	TaskRead      Action = "task:read"

	FileUpload Action = "file:upload"
	FileDelete Action = "file:delete"
)

// Resource describes the record an action targets.
type Resource struct {
	OwnerID      string
	DepartmentID *string
}

type grants map[Action]Scope

// everyone lists grants shared by every signed-in role.
var everyone = grants{
	TicketCreate:      ScopeOwn,
	TicketRead:        ScopeOwn,
	TicketList:        ScopeOwn,
	TicketReopen:      ScopeOwn,
	TicketComment:     ScopeOwn,
	LetterCreate:      ScopeOwn,
	LetterRead:        ScopeOwn,
	ReportSubmit:      ScopeOwn,
	ReportRead:        ScopeOwn,
	SaberMaterialRead: ScopeAll,
	BerapRead:         ScopeAll,
	MeetingManage:     ScopeOwn,
	MeetingRespond:    ScopeOwn,
	TaskUpdate:        ScopeOwn,
	TaskRead:          ScopeOwn,
	FileUpload:        ScopeOwn,
	FileDelete:        ScopeOwn,
}

var departmentDesk = grants{
	TicketRead:         ScopeOwn | ScopeDepartment,
	TicketList:         ScopeOwn | ScopeDepartment,
	TicketUpdateStatus: ScopeDepartment,
	TicketReopen:       ScopeOwn | ScopeDepartment,
	TicketComment:      ScopeOwn | ScopeDepartment,
	TicketStats:        ScopeDepartment,
	LetterRead:         ScopeOwn | ScopeDepartment,
	LetterUpdateStatus: ScopeDepartment,
}

var capabilities = map[domain.Role]grants{
	domain.RoleAdmin: allScopes(),
	domain.RoleMDA:   departmentDesk,
	domain.RoleStaff: merge(departmentDesk, grants{
		MeetingSchedule: ScopeOwn,
		ProjectCreate:   ScopeOwn,
		TaskCreate:      ScopeOwn,
	}),
	domain.RoleUser:    {},
	domain.RoleFederal: {
		TicketStats: ScopeAll,
		DLIRead:     ScopeAll,
	},
	domain.RoleSaberAgent: {
		DLIRead:   ScopeAll,
		DLIUpdate: ScopeAll,
	},
	domain.RoleReformChampion: {
		DLIRead: ScopeAll,
	},
}

var allActions = []Action{
	TicketCreate, TicketRead, TicketList, TicketUpdateStatus, TicketReopen, TicketAssign, TicketDelete,
	TicketComment, TicketStats, UserList, UserAssignRole, DepartmentManage, AccessCodeRotate,
	LetterCreate, LetterRead, LetterUpdateStatus, EventManage, NewsletterManage,
	ReportTemplateManage, ReportSubmit, ReportRead, ReportReview,
	SaberMaterialManage, SaberMaterialRead, DLIManage, DLIUpdate, DLIRead, BerapManage, BerapRead,
	MeetingSchedule, MeetingManage, MeetingRespond, ProjectCreate, TaskCreate, TaskUpdate, TaskRead,
	FileUpload, FileDelete,
}

func allScopes() grants {
	g := make(grants, len(allActions))
	for _, a := range allActions {
		g[a] = ScopeAll
	}
	return g
}

func merge(base, extra grants) grants {
	out := make(grants, len(base)+len(extra))
	for a, s := range base {
		out[a] = s
	}
	for a, s := range extra {
		out[a] |= s
	}
	return out
}

// Grant returns the scope a role holds for action.
func Grant(role domain.Role, action Action) Scope {
	roleGrants, ok := capabilities[role]
	if !ok {
		return ScopeNone
	}
	return roleGrants[action] | everyone[action]
}

// Authorize checks user against action. With a nil resource it returns the
// caller's grant so list queries can narrow themselves; otherwise the
// resource must fall inside that grant.
func Authorize(user *domain.User, action Action, res *Resource) (Scope, error) {
	if user == nil {
		return ScopeNone, apperrors.NewUnauthorized("authentication required")
	}
	scope := Grant(user.Role, action)
	if scope == ScopeNone {
		return ScopeNone, forbidden(user, action)
	}
	if res == nil {
		return scope, nil
	}
	if scope.Has(ScopeAll) {
		return ScopeAll, nil
	}
	if scope.Has(ScopeDepartment) && user.DepartmentID != nil && res.DepartmentID != nil &&
		*user.DepartmentID == *res.DepartmentID {
		return ScopeDepartment, nil
	}
	if scope.Has(ScopeOwn) && res.OwnerID != "" && res.OwnerID == user.ID {
		return ScopeOwn, nil
	}
	return ScopeNone, forbidden(user, action)
}

// Can is Authorize without the error detail.
func Can(user *domain.User, action Action, res *Resource) bool {
	_, err := Authorize(user, action, res)
	return err == nil
}

// RequireAll fails unless the caller holds an unrestricted grant for action.
func RequireAll(user *domain.User, action Action) error {
	scope, err := Authorize(user, action, nil)
	if err != nil {
		return err
	}
	if !scope.Has(ScopeAll) {
		return forbidden(user, action)
	}
	return nil
}

func forbidden(user *domain.User, action Action) error {
	return apperrors.NewDomainError(apperrors.CodeForbidden, "not permitted", http.StatusForbidden, map[string]any{
		"action": string(action),
		"role":   string(user.Role),
	})
}
