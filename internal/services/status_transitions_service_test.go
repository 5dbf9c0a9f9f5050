package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/apperr"
	"taskdesk/internal/models"
)

func TestSequentialHandOff(t *testing.T) {
	f := newFixture(t)
	task := f.create(t, admin, CreateTaskInput{Type: "SEQUENTIAL", Assignees: []int64{alice.ID, bob.ID, carol.ID}})

	got := f.transition(t, alice, task.ID, "completed")
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Nil(t, got.CompletedAt)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, bob.ID, *got.AssignedTo)

	stored := f.reload(t, task.ID)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Nil(t, stored.CompletedAt)
	assert.Equal(t, bob.ID, *stored.AssignedTo)
	require.Len(t, stored.Assignees, 3)
	assert.True(t, stored.Assignees[0].IsCompleted)
	assert.NotNil(t, stored.Assignees[0].CompletedAt)
	assert.False(t, stored.Assignees[1].IsCompleted)
	assert.False(t, stored.Assignees[2].IsCompleted)

	f.transition(t, bob, task.ID, "in-progress")
	got = f.transition(t, bob, task.ID, "done")
	assert.Equal(t, carol.ID, *got.AssignedTo)
	assert.Equal(t, models.StatusPending, got.Status)

	got = f.transition(t, carol, task.ID, "completed")
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, carol.ID, *got.AssignedTo)

	stored = f.reload(t, task.ID)
	for _, a := range stored.Assignees {
		assert.True(t, a.IsCompleted, "employee %d", a.EmployeeID)
	}
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedAt)
}

func TestCompletedSequentialCanReopen(t *testing.T) {
	f := newFixture(t)
	task := f.create(t, admin, CreateTaskInput{Type: "SEQUENTIAL", Assignees: []int64{alice.ID, bob.ID}})
	f.transition(t, admin, task.ID, "completed")
	f.transition(t, admin, task.ID, "completed")

	got := f.transition(t, admin, task.ID, "in-progress")
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Nil(t, got.CompletedAt)

	// chain is exhausted, so completing again is a plain completion
	got = f.transition(t, admin, task.ID, "completed")
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, bob.ID, *got.AssignedTo)
}

func TestConcurrentCompletionsAdvanceOncePerCall(t *testing.T) {
	f := newFixture(t)
	task := f.create(t, admin, CreateTaskInput{Type: "SEQUENTIAL", Assignees: []int64{1, 2, 3, 4}})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.transitions.Transition(context.Background(), admin, task.ID, "completed")
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	stored := f.reload(t, task.ID)
	require.Len(t, stored.Assignees, 4)
	assert.True(t, stored.Assignees[0].IsCompleted)
	assert.True(t, stored.Assignees[1].IsCompleted)
	assert.False(t, stored.Assignees[2].IsCompleted)
	assert.False(t, stored.Assignees[3].IsCompleted)
	assert.Equal(t, int64(3), *stored.AssignedTo)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestCompletedAtFollowsStatus(t *testing.T) {
	f := newFixture(t)
	single := f.create(t, admin, CreateTaskInput{AssignedTo: ptr(alice.ID)})
	shared := f.create(t, admin, CreateTaskInput{Type: "SHARED", Assignees: []int64{alice.ID, bob.ID}, Points: 4})
	sequential := f.create(t, admin, CreateTaskInput{Type: "SEQUENTIAL", Assignees: []int64{alice.ID, bob.ID}})

	steps := []string{"in-progress", "completed", "pending-review", "completed", "pending", "done", "in-progress"}
	for _, task := range []*models.Task{single, shared, sequential} {
		for _, to := range steps {
			got := f.transition(t, admin, task.ID, to)
			stored := f.reload(t, task.ID)
			for _, tk := range []*models.Task{got, stored} {
				if tk.Status.IsTerminal() {
					assert.NotNil(t, tk.CompletedAt, "task %d after %s", task.ID, to)
				} else {
					assert.Nil(t, tk.CompletedAt, "task %d after %s", task.ID, to)
				}
			}
		}
	}
}

func TestReviewApprovalPolicy(t *testing.T) {
	f := newFixture(t)
	task := f.create(t, bob, CreateTaskInput{AssignedTo: ptr(alice.ID), Status: "pending-review"})

	_, err := f.transitions.Transition(context.Background(), alice, task.ID, "completed")
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	assert.Equal(t, models.StatusPendingReview, f.reload(t, task.ID).Status)

	// the assignee may still move it back
	got := f.transition(t, alice, task.ID, "in-progress")
	assert.Equal(t, models.StatusInProgress, got.Status)
	f.transition(t, alice, task.ID, "pending-review")

	got = f.transition(t, bob, task.ID, "completed")
	assert.Equal(t, models.StatusCompleted, got.Status)

	other := f.create(t, bob, CreateTaskInput{AssignedTo: ptr(alice.ID), Status: "pending-review"})
	got = f.transition(t, admin, other.ID, "done")
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestTransitionErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, admin, CreateTaskInput{AssignedTo: ptr(alice.ID)})

	_, err := f.transitions.Transition(ctx, alice, task.ID, "archived")
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))

	_, err = f.transitions.Transition(ctx, alice, 9999, "completed")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.transitions.Transition(ctx, foreign, task.ID, "completed")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.transitions.Transition(ctx, outsider, task.ID, "completed")
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	assert.Equal(t, models.StatusPending, f.reload(t, task.ID).Status)
}
