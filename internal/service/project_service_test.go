package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

func TestTaskStepsDriveStatus(t *testing.T) {
	users := &fakeUsers{}
	owner := users.add("Owner", domain.RoleStaff, nil)
	assignee := users.add("Assignee", domain.RoleUser, nil)
	stranger := users.add("Stranger", domain.RoleUser, nil)

	pub := &recordingPublisher{}
	svc := NewProjectService(ProjectDependencies{ProjectRepo: newFakeProjects(), UserRepo: users, Publisher: pub, Clock: fixedClock()})
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, assignee, "Not allowed", "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	project, err := svc.CreateProject(ctx, owner, "Business registration", "")
	require.NoError(t, err)

	_, err = svc.CreateTask(ctx, owner, project.ID, TaskInput{Title: "Draft", AssigneeID: assignee.ID})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.CreateTask(ctx, owner, project.ID, TaskInput{Title: "Draft", AssigneeID: "nobody", Steps: []string{"a"}})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	task, err := svc.CreateTask(ctx, owner, project.ID, TaskInput{
		Title:      "Draft circular",
		AssigneeID: assignee.ID,
		Steps:      []string{"Research", "Write"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskPending, task.Status)

	_, err = svc.CompleteTaskStep(ctx, stranger, task.ID, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	task, err = svc.CompleteTaskStep(ctx, assignee, task.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, task.Status)
	assert.Nil(t, task.CompletedAt)

	task, err = svc.CompleteTaskStep(ctx, owner, task.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, task.Status)
	assert.Equal(t, fixedNow, *task.CompletedAt)

	notices := pub.notices()
	require.Len(t, notices, 2)
	assert.Equal(t, []string{assignee.ID}, notices[0].Audience.UserIDs)
	assert.Equal(t, []string{owner.ID}, notices[1].Audience.UserIDs)

	forAssignee, err := svc.ListTasks(ctx, assignee, repository.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, forAssignee, 1)

	forStranger, err := svc.ListTasks(ctx, stranger, repository.TaskFilter{ProjectID: &project.ID})
	require.NoError(t, err)
	assert.Empty(t, forStranger)

	forOwner, err := svc.ListTasks(ctx, owner, repository.TaskFilter{ProjectID: &project.ID})
	require.NoError(t, err)
	assert.Len(t, forOwner, 1)

	projects, err := svc.ListProjects(ctx, assignee)
	require.NoError(t, err)
	assert.Empty(t, projects)
}
