package services

import (
	"context"
	"errors"
	"time"

	"taskdesk/internal/apperr"
	"taskdesk/internal/authz"
	"taskdesk/internal/logging"
	"taskdesk/internal/models"
	"taskdesk/internal/repositories"
)

// TaskService covers reads and the maintenance mutations that are not
// creation or status changes.
type TaskService interface {
	GetByID(ctx context.Context, caller authz.Caller, id int64) (*models.Task, error)
	Delete(ctx context.Context, caller authz.Caller, id int64) error
	// Reassign hands a task to another employee while keeping the
	// assignee rows in step with assigned_to.
	Reassign(ctx context.Context, caller authz.Caller, id, employeeID int64) (*models.Task, error)
	Reorder(ctx context.Context, caller authz.Caller, items []models.TaskOrder) error
}

type taskService struct {
	repo repositories.TaskRepository
}

func NewTaskService(repo repositories.TaskRepository) TaskService {
	return &taskService{repo: repo}
}

func (s *taskService) GetByID(ctx context.Context, caller authz.Caller, id int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id, caller.OrganizationID)
	if err != nil {
		return nil, notFound(err, id)
	}

	subtasks, err := s.repo.ListSubtasks(ctx, []int64{task.ID})
	if err != nil {
		return nil, err
	}
	ids := []int64{task.ID}
	for _, st := range subtasks[task.ID] {
		ids = append(ids, st.ID)
	}
	assignees, err := s.repo.ListAssigneesByTasks(ctx, ids)
	if err != nil {
		return nil, err
	}

	task.Assignees = assignees[task.ID]
	if !canSee(caller, task, task.Assignees) {
		return nil, apperr.NotFound("task %d not found", id)
	}
	task.Subtasks = subtasks[task.ID]
	for i := range task.Subtasks {
		task.Subtasks[i].Assignees = assignees[task.Subtasks[i].ID]
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, caller authz.Caller, id int64) error {
	err := s.repo.WithTx(ctx, func(repo repositories.TaskRepository) error {
		task, err := repo.FindByIDForUpdate(ctx, id, caller.OrganizationID)
		if err != nil {
			return notFound(err, id)
		}
		if !caller.IsAdmin() && task.CreatedBy != caller.ID {
			return apperr.Forbidden("only the creator or an admin can delete task %d", id)
		}
		return repo.DeleteCascade(ctx, id)
	})
	if err != nil {
		logging.Logger.Warnf("[task][delete][err] id=%d by=%d: %v", id, caller.ID, err)
		return err
	}
	logging.Logger.Infof("[task][delete][ok] id=%d by=%d", id, caller.ID)
	return nil
}

func (s *taskService) Reassign(ctx context.Context, caller authz.Caller, id, employeeID int64) (*models.Task, error) {
	if employeeID <= 0 {
		return nil, apperr.BadRequest("assignedTo is required").
			WithDetails(map[string]string{"assignedTo": "must be a positive employee id"})
	}

	var out *models.Task
	err := s.repo.WithTx(ctx, func(repo repositories.TaskRepository) error {
		task, err := repo.FindByIDForUpdate(ctx, id, caller.OrganizationID)
		if err != nil {
			return notFound(err, id)
		}
		rows, err := repo.ListAssignees(ctx, task.ID)
		if err != nil {
			return err
		}
		if !canSee(caller, task, rows) {
			return apperr.Forbidden("task %d is not assigned to you", id)
		}

		now := time.Now().UTC()
		switch a := models.AssignmentOf(task, rows).(type) {
		case models.Shared:
			return apperr.BadRequest("shared task %d has no single owner to reassign", id)
		case models.Sequential:
			st := a.State()
			if st.Done {
				return apperr.BadRequest("sequential task %d has no active assignee", id)
			}
			if a.Chain[st.Index].EmployeeID == employeeID {
				out = task
				return nil
			}
			for _, m := range a.Members() {
				if m == employeeID {
					return apperr.BadRequest("employee %d is already in the chain of task %d", employeeID, id).
						WithDetails(map[string]string{"assignedTo": "must not already be in the chain"})
				}
			}
			if err := repo.ReplaceAssigneeEmployee(ctx, a.Chain[st.Index].RowID, employeeID, now); err != nil {
				return err
			}
		case models.Single:
			if len(rows) == 0 {
				one := 1
				if err := repo.InsertAssignees(ctx, []models.TaskAssignee{
					{TaskID: task.ID, EmployeeID: employeeID, Order: &one, AssignedAt: now},
				}); err != nil {
					return err
				}
			} else if err := repo.ReplaceAssigneeEmployee(ctx, rows[0].ID, employeeID, now); err != nil {
				return err
			}
		}

		task.AssignedTo = &employeeID
		task.AssignedAt = &now
		task.UpdatedAt = now
		if err := repo.UpdateState(ctx, task); err != nil {
			return err
		}
		out = task
		return nil
	})
	if err != nil {
		logging.Logger.Warnf("[task][assign][err] id=%d -> %d by=%d: %v", id, employeeID, caller.ID, err)
		return nil, err
	}
	logging.Logger.Infof("[task][assign][ok] id=%d assignee=%d by=%d", id, employeeID, caller.ID)
	return out, nil
}

func (s *taskService) Reorder(ctx context.Context, caller authz.Caller, items []models.TaskOrder) error {
	if len(items) == 0 {
		return apperr.BadRequest("no tasks to reorder")
	}
	err := s.repo.WithTx(ctx, func(repo repositories.TaskRepository) error {
		now := time.Now().UTC()
		for _, it := range items {
			task, err := repo.FindByIDForUpdate(ctx, it.ID, caller.OrganizationID)
			if err != nil {
				return notFound(err, it.ID)
			}
			if !caller.IsAdmin() {
				rows, err := repo.ListAssignees(ctx, task.ID)
				if err != nil {
					return err
				}
				if !canSee(caller, task, rows) {
					return apperr.Forbidden("task %d is not assigned to you", it.ID)
				}
			}
			if err := repo.UpdateOrder(ctx, it.ID, it.Order, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logging.Logger.Warnf("[task][reorder][err] items=%d by=%d: %v", len(items), caller.ID, err)
		return err
	}
	logging.Logger.Infof("[task][reorder][ok] items=%d by=%d", len(items), caller.ID)
	return nil
}

func notFound(err error, id int64) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound("task %d not found", id)
	}
	return err
}
