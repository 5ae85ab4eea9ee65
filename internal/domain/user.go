package domain

import "time"

// Role enumerates portal roles mirrored from the identity provider.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleMDA            Role = "mda"
	RoleStaff          Role = "staff"
	RoleUser           Role = "user"
	RoleFederal        Role = "federal"
	RoleSaberAgent     Role = "saber_agent"
	RoleReformChampion Role = "reform_champion"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMDA, RoleStaff, RoleUser, RoleFederal, RoleSaberAgent, RoleReformChampion:
		return true
	}
	return false
}

// GatedRoles require an access code to self-elevate into.
var GatedRoles = []Role{RoleMDA, RoleStaff, RoleSaberAgent, RoleReformChampion}

// User is the local mirror of an identity provider account.
type User struct {
	ID           string
	ExternalID   string
	Name         string
	Email        string
	Phone        string
	Role         Role
	DepartmentID *string
	State        string
	IsGuest      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin is a convenience for display logic; authorization goes through policy.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
