package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"taskdesk/internal/models"
)

// TaskScope is the context filter of a listing: organization, visibility
// and the project/employee/date filters. Status is applied separately so
// stats can ignore it.
type TaskScope struct {
	OrganizationID int64
	// ViewerID restricts rows to what a USER may see; nil for admins.
	ViewerID   *int64
	ProjectID  *int64
	AssignedTo *int64
	DueFrom    *time.Time
	DueTo      *time.Time
	// OpenOnly keeps tasks that are not yet completed (overdue scope).
	OpenOnly bool
}

// SortSpec is an ORDER BY already resolved against the column whitelist.
type SortSpec struct {
	Column string
	Desc   bool
}

var sortColumns = map[string]string{
	"createdAt":   "t.created_at",
	"created_at":  "t.created_at",
	"dueDate":     "t.due_date",
	"due_date":    "t.due_date",
	"status":      "t.status",
	"points":      "t.points",
	"priority":    "CASE t.priority WHEN 'LOW' THEN 1 WHEN 'MEDIUM' THEN 2 WHEN 'HIGH' THEN 3 ELSE 0 END",
	"description": "t.description",
	"order":       "t.sort_order",
}

// ResolveSort maps a client sort key onto the whitelist. Unknown keys fall
// back to the default manual ordering.
func ResolveSort(sortBy, sortOrder string) SortSpec {
	col, ok := sortColumns[sortBy]
	if !ok {
		return SortSpec{}
	}
	return SortSpec{Column: col, Desc: !strings.EqualFold(sortOrder, "asc")}
}

func (s SortSpec) orderBy() string {
	if s.Column == "" {
		return " ORDER BY t.sort_order ASC, t.created_at DESC, t.id DESC"
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, t.id %s", s.Column, dir, dir)
}

func (s TaskScope) where() (string, []interface{}) {
	conditions := []string{"p.organization_id = ?"}
	args := []interface{}{s.OrganizationID}

	if s.ViewerID != nil {
		conditions = append(conditions, `(t.assigned_to = ? OR t.created_by = ? OR
			(t.type IN ('SHARED', 'SEQUENTIAL') AND EXISTS (
				SELECT 1 FROM task_assignees va WHERE va.task_id = t.id AND va.employee_id = ?)))`)
		args = append(args, *s.ViewerID, *s.ViewerID, *s.ViewerID)
	}
	if s.ProjectID != nil {
		conditions = append(conditions, "t.project_id = ?")
		args = append(args, *s.ProjectID)
	}
	if s.AssignedTo != nil {
		conditions = append(conditions, `(t.assigned_to = ? OR EXISTS (
			SELECT 1 FROM task_assignees fa WHERE fa.task_id = t.id AND fa.employee_id = ?))`)
		args = append(args, *s.AssignedTo, *s.AssignedTo)
	}
	if s.DueFrom != nil {
		conditions = append(conditions, "t.due_date >= ?")
		args = append(args, *s.DueFrom)
	}
	if s.DueTo != nil {
		conditions = append(conditions, "t.due_date < ?")
		args = append(args, *s.DueTo)
	}
	if s.OpenOnly {
		conditions = append(conditions, "t.status <> ?")
		args = append(args, string(models.StatusCompleted))
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// rootWhere restricts to root tasks. With a status, a root qualifies when
// its own status matches or any of its subtasks does.
func (s TaskScope) rootWhere(status *models.TaskStatus) (string, []interface{}) {
	where, args := s.where()
	where += " AND t.parent_id IS NULL"
	if status != nil {
		where += ` AND (t.status = ? OR EXISTS (
			SELECT 1 FROM tasks st WHERE st.parent_id = t.id AND st.status = ?))`
		args = append(args, string(*status), string(*status))
	}
	return where, args
}

const scopedFrom = ` FROM tasks t JOIN projects p ON p.id = t.project_id`

func (r *taskRepository) Stats(ctx context.Context, scope TaskScope, rootOnly bool) (models.StatusCounts, error) {
	where, args := scope.where()
	if rootOnly {
		where += " AND t.parent_id IS NULL"
	}
	q := `SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN t.status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN t.status = 'in-progress' THEN 1 ELSE 0 END), 0) AS in_progress,
			COALESCE(SUM(CASE WHEN t.status = 'pending-review' THEN 1 ELSE 0 END), 0) AS pending_review,
			COALESCE(SUM(CASE WHEN t.status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(t.points), 0) AS points` + scopedFrom + where

	var counts models.StatusCounts
	if err := sqlx.GetContext(ctx, r.ext, &counts, r.ext.Rebind(q), args...); err != nil {
		return counts, fmt.Errorf("computing task stats: %w", err)
	}
	return counts, nil
}

func (r *taskRepository) CountRoots(ctx context.Context, scope TaskScope, status *models.TaskStatus) (int, error) {
	where, args := scope.rootWhere(status)
	var n int
	if err := sqlx.GetContext(ctx, r.ext, &n, r.ext.Rebind(`SELECT COUNT(*)`+scopedFrom+where), args...); err != nil {
		return 0, fmt.Errorf("counting root tasks: %w", err)
	}
	return n, nil
}

func (r *taskRepository) ListRoots(ctx context.Context, scope TaskScope, status *models.TaskStatus, sort SortSpec, limit, offset int) ([]models.Task, error) {
	where, args := scope.rootWhere(status)
	q := `SELECT ` + taskColumns + scopedFrom + where + sort.orderBy() + ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	tasks := []models.Task{}
	if err := sqlx.SelectContext(ctx, r.ext, &tasks, r.ext.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("listing root tasks: %w", err)
	}
	return tasks, nil
}
