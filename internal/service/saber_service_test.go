package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

func TestSaberMaterialVisibility(t *testing.T) {
	svc := NewSaberService(SaberDependencies{SaberRepo: newFakeSaber(), Publisher: &recordingPublisher{}, Clock: fixedClock()})
	ctx := context.Background()
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	agent := &domain.User{ID: "agent-1", Role: domain.RoleSaberAgent}
	citizen := &domain.User{ID: "user-1", Role: domain.RoleUser}

	_, err := svc.CreateMaterial(ctx, admin, MaterialInput{Title: "Guide", FileKey: "k1", VisibleRoles: []domain.Role{"pirate"}})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.CreateMaterial(ctx, admin, MaterialInput{Title: "Public guide", FileKey: "k1"})
	require.NoError(t, err)
	_, err = svc.CreateMaterial(ctx, admin, MaterialInput{Title: "Agent manual", FileKey: "k2", VisibleRoles: []domain.Role{domain.RoleSaberAgent}})
	require.NoError(t, err)

	_, err = svc.CreateMaterial(ctx, agent, MaterialInput{Title: "x", FileKey: "k3"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	forAgent, err := svc.ListMaterials(ctx, agent)
	require.NoError(t, err)
	assert.Len(t, forAgent, 2)

	forCitizen, err := svc.ListMaterials(ctx, citizen)
	require.NoError(t, err)
	require.Len(t, forCitizen, 1)
	assert.Equal(t, "Public guide", forCitizen[0].Title)

	forAdmin, err := svc.ListMaterials(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, forAdmin, 2)
}

func TestDLIStepCompletion(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewSaberService(SaberDependencies{SaberRepo: newFakeSaber(), Publisher: pub, Clock: fixedClock()})
	ctx := context.Background()
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	agent := &domain.User{ID: "agent-1", Role: domain.RoleSaberAgent}

	dli, err := svc.CreateDLI(ctx, admin, "Lagos", "DLI-1.1", "Land registry", []string{"Draft law", " ", "Pass law", "Gazette"})
	require.NoError(t, err)
	require.Len(t, dli.Steps, 3)

	_, err = svc.CreateDLI(ctx, admin, "Lagos", "DLI-1.1", "again", nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	updated, err := svc.CompleteDLIStep(ctx, agent, dli.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 33, updated.Percent())
	assert.Equal(t, agent.ID, *updated.Steps[0].CompletedBy)

	again, err := svc.CompleteDLIStep(ctx, agent, dli.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 33, again.Percent())

	_, err = svc.CompleteDLIStep(ctx, agent, dli.ID, 3)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.CompleteDLIStep(ctx, &domain.User{ID: "u", Role: domain.RoleUser}, dli.ID, 1)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	notices := pub.notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "Lagos DLI-1.1 is 33% complete", notices[0].Message)

	lagos := "Lagos"
	list, err := svc.ListDLI(ctx, agent, &lagos)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBerapUpsertByYear(t *testing.T) {
	svc := NewSaberService(SaberDependencies{SaberRepo: newFakeSaber(), Clock: fixedClock()})
	ctx := context.Background()
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	citizen := &domain.User{ID: "user-1", Role: domain.RoleUser}

	_, err := svc.UpsertBerap(ctx, admin, 1999, "Old", "k", "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.UpsertBerap(ctx, admin, 2025, "BERAP 2025", "k1", "")
	require.NoError(t, err)
	_, err = svc.UpsertBerap(ctx, admin, 2025, "BERAP 2025 revised", "k2", "")
	require.NoError(t, err)

	doc, err := svc.GetBerap(ctx, citizen, 2025)
	require.NoError(t, err)
	assert.Equal(t, "k2", doc.FileKey)

	list, err := svc.ListBerap(ctx, citizen)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetBerap(ctx, citizen, 2030)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
