package services

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/authz"
	"taskdesk/internal/models"
	"taskdesk/internal/repositories"
	"taskdesk/internal/testutil"
)

const orgID = 1

var (
	admin    = authz.Caller{ID: 100, Role: authz.RoleAdmin, OrganizationID: orgID}
	alice    = authz.Caller{ID: 1, Role: authz.RoleUser, OrganizationID: orgID}
	bob      = authz.Caller{ID: 2, Role: authz.RoleUser, OrganizationID: orgID}
	carol    = authz.Caller{ID: 3, Role: authz.RoleUser, OrganizationID: orgID}
	outsider = authz.Caller{ID: 4, Role: authz.RoleUser, OrganizationID: orgID}
	foreign  = authz.Caller{ID: 200, Role: authz.RoleAdmin, OrganizationID: 2}
)

type fixture struct {
	db          *sqlx.DB
	repo        repositories.TaskRepository
	comments    repositories.CommentRepository
	project     models.Project
	assignments AssignmentService
	transitions StatusTransitionService
	queries     *taskQueryService
	tasks       TaskService
	commentSvc  CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	repo := repositories.NewTaskRepository(db)
	comments := repositories.NewCommentRepository(db)
	tasks := NewTaskService(repo)

	return &fixture{
		db:          db,
		repo:        repo,
		comments:    comments,
		project:     testutil.SeedProject(t, db, orgID, "core"),
		assignments: NewAssignmentService(repo, repositories.NewProjectRepository(db)),
		transitions: NewStatusTransitionService(repo),
		queries:     NewTaskQueryService(repo, ListingOptions{DefaultLimit: 10, MaxLimit: 50}).(*taskQueryService),
		tasks:       tasks,
		commentSvc:  NewCommentService(comments, tasks),
	}
}

// create stores a task in the fixture project and fails the test on error.
func (f *fixture) create(t *testing.T, caller authz.Caller, in CreateTaskInput) *models.Task {
	t.Helper()
	if in.ProjectID == 0 {
		in.ProjectID = f.project.ID
	}
	if in.Description == "" {
		in.Description = "task"
	}
	task, err := f.assignments.Create(context.Background(), caller, in)
	require.NoError(t, err)
	return task
}

func (f *fixture) transition(t *testing.T, caller authz.Caller, id int64, to string) *models.Task {
	t.Helper()
	task, err := f.transitions.Transition(context.Background(), caller, id, to)
	require.NoError(t, err)
	return task
}

func (f *fixture) reload(t *testing.T, id int64) *models.Task {
	t.Helper()
	task, err := f.tasks.GetByID(context.Background(), admin, id)
	require.NoError(t, err)
	return task
}

func (f *fixture) countRows(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, f.db.Rebind(query), args...))
	return n
}

func ptr[T any](v T) *T { return &v }

func day(s string) *time.Time {
	d, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return &d
}
