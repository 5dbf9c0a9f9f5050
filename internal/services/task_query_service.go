package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"taskdesk/internal/apperr"
	"taskdesk/internal/authz"
	"taskdesk/internal/logging"
	"taskdesk/internal/models"
	"taskdesk/internal/repositories"
)

type ListingOptions struct {
	DefaultLimit int
	MaxLimit     int
}

// TaskQueryService builds dashboard stats and paginated task listings.
type TaskQueryService interface {
	List(ctx context.Context, caller authz.Caller, q models.TaskListQuery) (*models.TaskListResult, error)
}

type taskQueryService struct {
	tasks repositories.TaskRepository
	opts  ListingOptions
	now   func() time.Time
}

func NewTaskQueryService(tasks repositories.TaskRepository, opts ListingOptions) TaskQueryService {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 100
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = opts.DefaultLimit
	}
	return &taskQueryService{tasks: tasks, opts: opts, now: time.Now}
}

func (s *taskQueryService) List(ctx context.Context, caller authz.Caller, q models.TaskListQuery) (*models.TaskListResult, error) {
	scope, err := s.scope(caller, q.Filter)
	if err != nil {
		return nil, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = s.opts.DefaultLimit
	}
	if limit > s.opts.MaxLimit {
		limit = s.opts.MaxLimit
	}
	sort := repositories.ResolveSort(q.SortBy, q.SortOrder)

	var (
		result models.TaskListResult
		roots  []models.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result.Stats.Global, err = s.tasks.Stats(gctx, scope, false)
		return err
	})
	g.Go(func() error {
		var err error
		result.Stats.Root, err = s.tasks.Stats(gctx, scope, true)
		return err
	})
	g.Go(func() error {
		var err error
		result.Pagination.Total, err = s.tasks.CountRoots(gctx, scope, q.Filter.Status)
		return err
	})
	g.Go(func() error {
		var err error
		roots, err = s.tasks.ListRoots(gctx, scope, q.Filter.Status, sort, limit, (page-1)*limit)
		return err
	})
	if err := g.Wait(); err != nil {
		logging.Logger.Errorf("[task][list][err] by=%d: %v", caller.ID, err)
		return nil, err
	}

	if err := s.attach(ctx, roots); err != nil {
		logging.Logger.Errorf("[task][list][err] attach by=%d: %v", caller.ID, err)
		return nil, err
	}
	if q.Filter.AssignedTo != nil {
		for i := range roots {
			applyShare(&roots[i])
		}
	}

	result.Tasks = roots
	result.Pagination.Page = page
	result.Pagination.Limit = limit
	result.Pagination.TotalPages = (result.Pagination.Total + limit - 1) / limit

	logging.Logger.Debugf("[task][list][ok] by=%d rows=%d total=%d", caller.ID, len(roots), result.Pagination.Total)
	return &result, nil
}

// attach loads subtasks and assignee rows for a page of root tasks with one
// batched query each.
func (s *taskQueryService) attach(ctx context.Context, roots []models.Task) error {
	if len(roots) == 0 {
		return nil
	}
	rootIDs := make([]int64, len(roots))
	for i, t := range roots {
		rootIDs[i] = t.ID
	}

	subtasks, err := s.tasks.ListSubtasks(ctx, rootIDs)
	if err != nil {
		return err
	}
	ids := append([]int64(nil), rootIDs...)
	for _, subs := range subtasks {
		for _, st := range subs {
			ids = append(ids, st.ID)
		}
	}
	assignees, err := s.tasks.ListAssigneesByTasks(ctx, ids)
	if err != nil {
		return err
	}

	for i := range roots {
		roots[i].Assignees = assignees[roots[i].ID]
		subs := subtasks[roots[i].ID]
		for j := range subs {
			subs[j].Assignees = assignees[subs[j].ID]
		}
		roots[i].Subtasks = subs
	}
	return nil
}

// applyShare replaces the pool of a shared task with one person's share.
// The value is computed for display only and never written back.
func applyShare(t *models.Task) {
	if t.Type == models.TypeShared && len(t.Assignees) > 0 {
		pool := t.Points
		t.TotalPoints = &pool
		t.Points = models.SharePoints(pool, len(t.Assignees))
	}
	for i := range t.Subtasks {
		applyShare(&t.Subtasks[i])
	}
}

func (s *taskQueryService) scope(caller authz.Caller, f models.TaskListFilter) (repositories.TaskScope, error) {
	scope := repositories.TaskScope{
		OrganizationID: caller.OrganizationID,
		ProjectID:      f.ProjectID,
		AssignedTo:     f.AssignedTo,
	}
	if !caller.IsAdmin() {
		viewer := caller.ID
		scope.ViewerID = &viewer
	}

	from, to, openOnly, err := resolveDateScope(f.DateScope, s.now().UTC())
	if err != nil {
		return scope, err
	}
	scope.DueFrom, scope.DueTo, scope.OpenOnly = from, to, openOnly
	return scope, nil
}

// resolveDateScope turns the date filter into a due-date window.
// Accepted: today, week, month, overdue, or a YYYY-MM-DD day.
func resolveDateScope(v string, now time.Time) (from, to *time.Time, openOnly bool, err error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	window := func(start, end time.Time) (*time.Time, *time.Time, bool, error) {
		return &start, &end, false, nil
	}

	switch v {
	case "", "all":
		return nil, nil, false, nil
	case "today":
		return window(day, day.AddDate(0, 0, 1))
	case "week":
		offset := (int(day.Weekday()) + 6) % 7 // weeks start on Monday
		start := day.AddDate(0, 0, -offset)
		return window(start, start.AddDate(0, 0, 7))
	case "month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return window(start, start.AddDate(0, 1, 0))
	case "overdue":
		end := now
		return nil, &end, true, nil
	}

	d, perr := time.Parse("2006-01-02", v)
	if perr != nil {
		return nil, nil, false, apperr.BadRequest("invalid date filter %q", v).
			WithDetails(map[string]string{"date": "must be today, week, month, overdue or YYYY-MM-DD"})
	}
	return window(d, d.AddDate(0, 0, 1))
}
