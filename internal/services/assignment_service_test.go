package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/apperr"
	"taskdesk/internal/models"
	"taskdesk/internal/testutil"
)

func TestCreateSequentialStartsWithFirstAssignee(t *testing.T) {
	f := newFixture(t)

	task := f.create(t, admin, CreateTaskInput{Type: "SEQUENTIAL", Assignees: []int64{1, 2, 3}, Points: 9})

	assert.Equal(t, models.TypeSequential, task.Type)
	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, int64(1), *task.AssignedTo)
	assert.NotNil(t, task.AssignedAt)

	stored := f.reload(t, task.ID)
	require.Len(t, stored.Assignees, 3)
	for i, a := range stored.Assignees {
		require.NotNil(t, a.Order)
		assert.Equal(t, i+1, *a.Order)
		assert.Equal(t, int64(i+1), a.EmployeeID)
		assert.False(t, a.IsCompleted)
		assert.Nil(t, a.CompletedAt)
	}
}

func TestCreateSharedHasNoOwner(t *testing.T) {
	f := newFixture(t)

	task := f.create(t, admin, CreateTaskInput{Type: "shared", Assignees: []int64{1, 2, 3}, Points: 30})

	assert.Equal(t, models.TypeShared, task.Type)
	assert.Nil(t, task.AssignedTo)
	assert.Equal(t, 30.0, task.Points)

	stored := f.reload(t, task.ID)
	require.Len(t, stored.Assignees, 3)
	for _, a := range stored.Assignees {
		assert.Nil(t, a.Order)
	}
}

func TestCreateSingleAssignee(t *testing.T) {
	f := newFixture(t)

	t.Run("one assignee downgrades to single", func(t *testing.T) {
		task := f.create(t, admin, CreateTaskInput{Type: "SHARED", Assignees: []int64{2}})
		assert.Equal(t, models.TypeSingle, task.Type)
		require.NotNil(t, task.AssignedTo)
		assert.Equal(t, int64(2), *task.AssignedTo)
		require.Len(t, task.Assignees, 1)
	})

	t.Run("assignedTo alone", func(t *testing.T) {
		task := f.create(t, admin, CreateTaskInput{AssignedTo: ptr(int64(3))})
		assert.Equal(t, models.TypeSingle, task.Type)
		assert.Equal(t, int64(3), *task.AssignedTo)
	})

	t.Run("user is self-assigned", func(t *testing.T) {
		task := f.create(t, bob, CreateTaskInput{})
		require.NotNil(t, task.AssignedTo)
		assert.Equal(t, bob.ID, *task.AssignedTo)
		assert.Equal(t, bob.ID, task.CreatedBy)
	})

	t.Run("admin may leave it unassigned", func(t *testing.T) {
		task := f.create(t, admin, CreateTaskInput{})
		assert.Nil(t, task.AssignedTo)
		assert.Empty(t, task.Assignees)
	})
}

func TestCreateDefaults(t *testing.T) {
	f := newFixture(t)

	first := f.create(t, admin, CreateTaskInput{Points: 2.346})
	second := f.create(t, admin, CreateTaskInput{Status: "done"})

	assert.Equal(t, models.StatusPending, first.Status)
	assert.Equal(t, models.PriorityMedium, first.Priority)
	assert.Equal(t, 2.35, first.Points)
	assert.Nil(t, first.CompletedAt)
	assert.Equal(t, first.Order+1, second.Order)

	assert.Equal(t, models.StatusCompleted, second.Status)
	assert.NotNil(t, second.CompletedAt)
}

func TestCreateSequentialAlreadyCompleted(t *testing.T) {
	f := newFixture(t)
	task := f.create(t, admin, CreateTaskInput{Type: "SEQUENTIAL", Assignees: []int64{alice.ID, bob.ID}, Status: "completed"})

	assert.Equal(t, models.StatusCompleted, task.Status)
	assert.Equal(t, bob.ID, *task.AssignedTo)
	stored := f.reload(t, task.ID)
	require.Len(t, stored.Assignees, 2)
	for _, r := range stored.Assignees {
		assert.True(t, r.IsCompleted, "employee %d", r.EmployeeID)
		assert.NotNil(t, r.CompletedAt)
	}

	got := f.transition(t, admin, task.ID, "completed")
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, bob.ID, *got.AssignedTo)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		in     CreateTaskInput
		field  string
		status int
	}{
		{name: "missing description", in: CreateTaskInput{ProjectID: f.project.ID}, field: "description", status: 400},
		{name: "negative points", in: CreateTaskInput{Description: "x", ProjectID: f.project.ID, Points: -1}, field: "points", status: 400},
		{name: "bad status", in: CreateTaskInput{Description: "x", ProjectID: f.project.ID, Status: "archived"}, field: "status", status: 400},
		{name: "bad priority", in: CreateTaskInput{Description: "x", ProjectID: f.project.ID, Priority: "URGENT"}, field: "priority", status: 400},
		{name: "bad type", in: CreateTaskInput{Description: "x", ProjectID: f.project.ID, Type: "ROUND_ROBIN"}, field: "type", status: 400},
		{name: "several assignees on single", in: CreateTaskInput{Description: "x", ProjectID: f.project.ID, Type: "SINGLE", Assignees: []int64{1, 2}}, field: "type", status: 400},
		{name: "several assignees without type", in: CreateTaskInput{Description: "x", ProjectID: f.project.ID, Assignees: []int64{1, 2}}, field: "type", status: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.assignments.Create(ctx, admin, tt.in)
			require.Error(t, err)
			ae := apperr.From(err)
			assert.Equal(t, tt.status, ae.Status())
			assert.Contains(t, ae.Details, tt.field)
		})
	}

	assert.Zero(t, f.countRows(t, `SELECT COUNT(*) FROM tasks`))
}

func TestCreateProjectAndParentChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := testutil.SeedProject(t, f.db, orgID, "other")
	foreignProject := testutil.SeedProject(t, f.db, 2, "foreign")

	_, err := f.assignments.Create(ctx, admin, CreateTaskInput{Description: "x", ProjectID: foreignProject.ID})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.assignments.Create(ctx, admin, CreateTaskInput{Description: "x", ProjectID: f.project.ID, ParentID: ptr(int64(999))})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	parent := f.create(t, admin, CreateTaskInput{Description: "parent"})
	_, err = f.assignments.Create(ctx, admin, CreateTaskInput{Description: "x", ProjectID: other.ID, ParentID: &parent.ID})
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))

	child := f.create(t, admin, CreateTaskInput{Description: "child", ParentID: &parent.ID})
	assert.False(t, child.IsRoot())

	_, err = f.assignments.Create(ctx, admin, CreateTaskInput{Description: "x", ProjectID: f.project.ID, ParentID: &child.ID})
	require.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	assert.Contains(t, apperr.From(err).Details, "parentId")

	// only parent and child made it in
	assert.Equal(t, 2, f.countRows(t, `SELECT COUNT(*) FROM tasks`))
}
