package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"taskdesk/internal/models"
)

var ErrNotFound = errors.New("not found")

const taskColumns = `t.id, t.description, t.status, t.points, t.priority, t.due_date,
	t.project_id, t.parent_id, t.type, t.assigned_to, t.assigned_at, t.completed_at,
	t.created_by, t.sort_order, t.created_at, t.updated_at`

const assigneeColumns = `id, task_id, employee_id, sort_order, is_completed, completed_at, assigned_at`

type TaskRepository interface {
	// WithTx runs fn against a repository bound to one transaction.
	WithTx(ctx context.Context, fn func(repo TaskRepository) error) error

	Insert(ctx context.Context, task *models.Task) error
	InsertAssignees(ctx context.Context, rows []models.TaskAssignee) error
	FindByID(ctx context.Context, id, organizationID int64) (*models.Task, error)
	// FindByIDForUpdate locks the task row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id, organizationID int64) (*models.Task, error)
	NextOrder(ctx context.Context, projectID int64) (int, error)

	UpdateState(ctx context.Context, task *models.Task) error
	UpdateOrder(ctx context.Context, id int64, order int, at time.Time) error
	CompleteAssignee(ctx context.Context, rowID int64, at time.Time) error
	ReplaceAssigneeEmployee(ctx context.Context, rowID, employeeID int64, at time.Time) error

	ListAssignees(ctx context.Context, taskID int64) ([]models.TaskAssignee, error)
	ListAssigneesByTasks(ctx context.Context, taskIDs []int64) (map[int64][]models.TaskAssignee, error)
	ListSubtasks(ctx context.Context, parentIDs []int64) (map[int64][]models.Task, error)

	// DeleteCascade removes comments, subtask comments, assignee rows,
	// subtasks and finally the task.
	DeleteCascade(ctx context.Context, id int64) error

	Stats(ctx context.Context, scope TaskScope, rootOnly bool) (models.StatusCounts, error)
	CountRoots(ctx context.Context, scope TaskScope, status *models.TaskStatus) (int, error)
	ListRoots(ctx context.Context, scope TaskScope, status *models.TaskStatus, sort SortSpec, limit, offset int) ([]models.Task, error)
}

type taskRepository struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

func NewTaskRepository(db *sqlx.DB) TaskRepository {
	return &taskRepository{db: db, ext: db}
}

func (r *taskRepository) WithTx(ctx context.Context, fn func(repo TaskRepository) error) error {
	if _, inTx := r.ext.(*sqlx.Tx); inTx {
		return fn(r)
	}
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&taskRepository{db: r.db, ext: tx})
	})
}

func (r *taskRepository) Insert(ctx context.Context, task *models.Task) error {
	q := r.ext.Rebind(`
		INSERT INTO tasks (
			description, status, points, priority, due_date, project_id, parent_id,
			type, assigned_to, assigned_at, completed_at, created_by, sort_order,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := r.ext.QueryRowxContext(ctx, q,
		task.Description, string(task.Status), task.Points, string(task.Priority), task.DueDate, task.ProjectID, task.ParentID,
		string(task.Type), task.AssignedTo, task.AssignedAt, task.CompletedAt, task.CreatedBy, task.Order,
		task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *taskRepository) InsertAssignees(ctx context.Context, rows []models.TaskAssignee) error {
	q := r.ext.Rebind(`
		INSERT INTO task_assignees (task_id, employee_id, sort_order, is_completed, completed_at, assigned_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)
	for i := range rows {
		a := &rows[i]
		if err := r.ext.QueryRowxContext(ctx, q,
			a.TaskID, a.EmployeeID, a.Order, a.IsCompleted, a.CompletedAt, a.AssignedAt,
		).Scan(&a.ID); err != nil {
			return fmt.Errorf("inserting assignee %d for task %d: %w", a.EmployeeID, a.TaskID, err)
		}
	}
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, id, organizationID int64) (*models.Task, error) {
	return r.findByID(ctx, id, organizationID, false)
}

func (r *taskRepository) FindByIDForUpdate(ctx context.Context, id, organizationID int64) (*models.Task, error) {
	return r.findByID(ctx, id, organizationID, true)
}

func (r *taskRepository) findByID(ctx context.Context, id, organizationID int64, lock bool) (*models.Task, error) {
	q := `SELECT ` + taskColumns + `
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.id = ? AND p.organization_id = ?`
	if lock {
		q += lockClause(r.ext, "t")
	}
	var task models.Task
	if err := sqlx.GetContext(ctx, r.ext, &task, r.ext.Rebind(q), id, organizationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}
	return &task, nil
}

// NextOrder returns max(sort_order)+1 within the project.
func (r *taskRepository) NextOrder(ctx context.Context, projectID int64) (int, error) {
	var maxOrder int
	q := r.ext.Rebind(`SELECT COALESCE(MAX(sort_order), 0) FROM tasks WHERE project_id = ?`)
	if err := sqlx.GetContext(ctx, r.ext, &maxOrder, q, projectID); err != nil {
		return 0, fmt.Errorf("getting max sort_order: %w", err)
	}
	return maxOrder + 1, nil
}

func (r *taskRepository) UpdateState(ctx context.Context, task *models.Task) error {
	q := r.ext.Rebind(`
		UPDATE tasks SET
			status = ?, assigned_to = ?, assigned_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`)
	res, err := r.ext.ExecContext(ctx, q,
		string(task.Status), task.AssignedTo, task.AssignedAt, task.CompletedAt, task.UpdatedAt, task.ID)
	if err != nil {
		return fmt.Errorf("updating task %d: %w", task.ID, err)
	}
	return expectRow(res)
}

func (r *taskRepository) UpdateOrder(ctx context.Context, id int64, order int, at time.Time) error {
	q := r.ext.Rebind(`UPDATE tasks SET sort_order = ?, updated_at = ? WHERE id = ?`)
	res, err := r.ext.ExecContext(ctx, q, order, at, id)
	if err != nil {
		return fmt.Errorf("reordering task %d: %w", id, err)
	}
	return expectRow(res)
}

func (r *taskRepository) CompleteAssignee(ctx context.Context, rowID int64, at time.Time) error {
	q := r.ext.Rebind(`UPDATE task_assignees SET is_completed = ?, completed_at = ? WHERE id = ?`)
	res, err := r.ext.ExecContext(ctx, q, true, at, rowID)
	if err != nil {
		return fmt.Errorf("completing assignee row %d: %w", rowID, err)
	}
	return expectRow(res)
}

func (r *taskRepository) ReplaceAssigneeEmployee(ctx context.Context, rowID, employeeID int64, at time.Time) error {
	q := r.ext.Rebind(`UPDATE task_assignees SET employee_id = ?, assigned_at = ? WHERE id = ?`)
	res, err := r.ext.ExecContext(ctx, q, employeeID, at, rowID)
	if err != nil {
		return fmt.Errorf("reassigning assignee row %d: %w", rowID, err)
	}
	return expectRow(res)
}

func (r *taskRepository) ListAssignees(ctx context.Context, taskID int64) ([]models.TaskAssignee, error) {
	byTask, err := r.ListAssigneesByTasks(ctx, []int64{taskID})
	if err != nil {
		return nil, err
	}
	return byTask[taskID], nil
}

func (r *taskRepository) ListAssigneesByTasks(ctx context.Context, taskIDs []int64) (map[int64][]models.TaskAssignee, error) {
	out := make(map[int64][]models.TaskAssignee, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`SELECT `+assigneeColumns+` FROM task_assignees
		WHERE task_id IN (?)
		ORDER BY task_id, COALESCE(sort_order, 0), id`, taskIDs)
	if err != nil {
		return nil, err
	}
	var rows []models.TaskAssignee
	if err := sqlx.SelectContext(ctx, r.ext, &rows, r.ext.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("listing assignees: %w", err)
	}
	for _, a := range rows {
		out[a.TaskID] = append(out[a.TaskID], a)
	}
	return out, nil
}

func (r *taskRepository) ListSubtasks(ctx context.Context, parentIDs []int64) (map[int64][]models.Task, error) {
	out := make(map[int64][]models.Task, len(parentIDs))
	if len(parentIDs) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`SELECT `+taskColumns+` FROM tasks t
		WHERE t.parent_id IN (?)
		ORDER BY t.sort_order ASC, t.created_at ASC, t.id ASC`, parentIDs)
	if err != nil {
		return nil, err
	}
	var rows []models.Task
	if err := sqlx.SelectContext(ctx, r.ext, &rows, r.ext.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("listing subtasks: %w", err)
	}
	for _, t := range rows {
		out[*t.ParentID] = append(out[*t.ParentID], t)
	}
	return out, nil
}

func (r *taskRepository) DeleteCascade(ctx context.Context, id int64) error {
	descendants, err := r.descendantIDs(ctx, id)
	if err != nil {
		return err
	}

	if err := r.execIn(ctx, `DELETE FROM comments WHERE task_id IN (?)`, []int64{id}); err != nil {
		return fmt.Errorf("deleting comments of task %d: %w", id, err)
	}
	if len(descendants) > 0 {
		if err := r.execIn(ctx, `DELETE FROM comments WHERE task_id IN (?)`, descendants); err != nil {
			return fmt.Errorf("deleting subtask comments of task %d: %w", id, err)
		}
	}
	all := append([]int64{id}, descendants...)
	if err := r.execIn(ctx, `DELETE FROM task_assignees WHERE task_id IN (?)`, all); err != nil {
		return fmt.Errorf("deleting assignees of task %d: %w", id, err)
	}
	if len(descendants) > 0 {
		if err := r.execIn(ctx, `DELETE FROM tasks WHERE id IN (?)`, descendants); err != nil {
			return fmt.Errorf("deleting subtasks of task %d: %w", id, err)
		}
	}

	res, err := r.ext.ExecContext(ctx, r.ext.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	return expectRow(res)
}

// descendantIDs walks parent_id links breadth first.
func (r *taskRepository) descendantIDs(ctx context.Context, id int64) ([]int64, error) {
	var out []int64
	frontier := []int64{id}
	for len(frontier) > 0 {
		q, args, err := sqlx.In(`SELECT id FROM tasks WHERE parent_id IN (?)`, frontier)
		if err != nil {
			return nil, err
		}
		var next []int64
		if err := sqlx.SelectContext(ctx, r.ext, &next, r.ext.Rebind(q), args...); err != nil {
			return nil, fmt.Errorf("listing subtasks of %v: %w", frontier, err)
		}
		out = append(out, next...)
		frontier = next
	}
	return out, nil
}

func (r *taskRepository) execIn(ctx context.Context, query string, ids []int64) error {
	q, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	_, err = r.ext.ExecContext(ctx, r.ext.Rebind(q), args...)
	return err
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
