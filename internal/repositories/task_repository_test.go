package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/models"
	"taskdesk/internal/repositories"
	"taskdesk/internal/testutil"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, repositories.Migrate(context.Background(), db))

	var versions int
	require.NoError(t, db.Get(&versions, `SELECT COUNT(*) FROM schema_version`))
	assert.Equal(t, 1, versions)
}

func TestWithTxRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	project := testutil.SeedProject(t, db, 1, "p")
	repo := repositories.NewTaskRepository(db)
	now := time.Now().UTC()

	err := repo.WithTx(ctx, func(tx repositories.TaskRepository) error {
		task := &models.Task{
			Description: "x", Status: models.StatusPending, Priority: models.PriorityLow,
			ProjectID: project.ID, Type: models.TypeSingle, CreatedBy: 1, CreatedAt: now, UpdatedAt: now,
		}
		if err := tx.Insert(ctx, task); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return tx.WithTx(ctx, func(inner repositories.TaskRepository) error {
			return inner.UpdateOrder(ctx, task.ID+100, 1, now)
		})
	})
	require.ErrorIs(t, err, repositories.ErrNotFound)

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM tasks`))
	assert.Zero(t, n)
}

func TestFindByIDScopesOrganization(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	project := testutil.SeedProject(t, db, 1, "p")
	repo := repositories.NewTaskRepository(db)
	now := time.Now().UTC()

	task := &models.Task{
		Description: "x", Status: models.StatusPending, Priority: models.PriorityHigh, Points: 1.5,
		ProjectID: project.ID, Type: models.TypeSingle, CreatedBy: 1, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Insert(ctx, task))

	got, err := repo.FindByID(ctx, task.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.5, got.Points)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Nil(t, got.ParentID)
	assert.WithinDuration(t, now, got.CreatedAt, time.Second)

	_, err = repo.FindByID(ctx, task.ID, 2)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	next, err := repo.NextOrder(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestResolveSort(t *testing.T) {
	assert.Equal(t, repositories.SortSpec{Column: "t.due_date", Desc: true}, repositories.ResolveSort("dueDate", ""))
	assert.Equal(t, repositories.SortSpec{Column: "t.created_at", Desc: false}, repositories.ResolveSort("createdAt", "ASC"))
	assert.Equal(t, repositories.SortSpec{}, repositories.ResolveSort("id; DROP TABLE tasks", "asc"))
}
