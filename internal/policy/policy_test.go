package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

func strPtr(s string) *string { return &s }

func TestAuthorize_NilUser(t *testing.T) {
	_, err := Authorize(nil, TicketRead, nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestAuthorize_ListAllTickets(t *testing.T) {
	tests := []struct {
		name    string
		role    domain.Role
		allowed bool
	}{
		{name: "admin", role: domain.RoleAdmin, allowed: true},
		{name: "mda", role: domain.RoleMDA, allowed: false},
		{name: "staff", role: domain.RoleStaff, allowed: false},
		{name: "citizen", role: domain.RoleUser, allowed: false},
		{name: "federal", role: domain.RoleFederal, allowed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireAll(&domain.User{ID: "u1", Role: tt.role}, TicketList)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
		})
	}
}

func TestAuthorize_ResourceScopes(t *testing.T) {
	deptA := strPtr("dept-a")
	deptB := strPtr("dept-b")
	mda := &domain.User{ID: "mda-1", Role: domain.RoleMDA, DepartmentID: deptA}
	citizen := &domain.User{ID: "cit-1", Role: domain.RoleUser}

	t.Run("department user on own department", func(t *testing.T) {
		scope, err := Authorize(mda, TicketUpdateStatus, &Resource{OwnerID: "x", DepartmentID: deptA})
		require.NoError(t, err)
		assert.Equal(t, ScopeDepartment, scope)
	})

	t.Run("department user on another department", func(t *testing.T) {
		_, err := Authorize(mda, TicketUpdateStatus, &Resource{OwnerID: "x", DepartmentID: deptB})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	})

	t.Run("department user on unassigned ticket", func(t *testing.T) {
		_, err := Authorize(mda, TicketUpdateStatus, &Resource{OwnerID: "x"})
		assert.Error(t, err)
	})

	t.Run("creator reads own ticket", func(t *testing.T) {
		scope, err := Authorize(citizen, TicketRead, &Resource{OwnerID: "cit-1"})
		require.NoError(t, err)
		assert.Equal(t, ScopeOwn, scope)
	})

	t.Run("creator cannot change status", func(t *testing.T) {
		_, err := Authorize(citizen, TicketUpdateStatus, &Resource{OwnerID: "cit-1"})
		assert.Error(t, err)
	})

	t.Run("citizen cannot read other ticket", func(t *testing.T) {
		_, err := Authorize(citizen, TicketRead, &Resource{OwnerID: "someone-else"})
		assert.Error(t, err)
	})

	t.Run("admin reaches everything", func(t *testing.T) {
		admin := &domain.User{ID: "adm", Role: domain.RoleAdmin}
		scope, err := Authorize(admin, TicketDelete, &Resource{OwnerID: "x", DepartmentID: deptB})
		require.NoError(t, err)
		assert.Equal(t, ScopeAll, scope)
	})
}

func TestAuthorize_NilResourceReturnsGrant(t *testing.T) {
	staff := &domain.User{ID: "s", Role: domain.RoleStaff, DepartmentID: strPtr("d")}
	scope, err := Authorize(staff, TicketList, nil)
	require.NoError(t, err)
	assert.True(t, scope.Has(ScopeOwn))
	assert.True(t, scope.Has(ScopeDepartment))
	assert.False(t, scope.Has(ScopeAll))
}

func TestGrant_UnknownRole(t *testing.T) {
	assert.Equal(t, ScopeNone, Grant(domain.Role("ghost"), TicketRead))
}

func TestEveryActionHasAdminGrant(t *testing.T) {
	for _, action := range allActions {
		assert.Equal(t, ScopeAll, Grant(domain.RoleAdmin, action), string(action))
	}
}
