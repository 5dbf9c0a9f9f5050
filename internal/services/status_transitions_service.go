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

// StatusTransitionService applies status changes, including the
// sequential hand-off and the review approval rule.
type StatusTransitionService interface {
	Transition(ctx context.Context, caller authz.Caller, taskID int64, to string) (*models.Task, error)
}

type statusTransitionService struct {
	tasks repositories.TaskRepository
}

func NewStatusTransitionService(tasks repositories.TaskRepository) StatusTransitionService {
	return &statusTransitionService{tasks: tasks}
}

func (s *statusTransitionService) Transition(ctx context.Context, caller authz.Caller, taskID int64, to string) (*models.Task, error) {
	next, ok := models.ParseTaskStatus(to)
	if !ok {
		return nil, apperr.BadRequest("invalid status %q", to).
			WithDetails(map[string]string{"status": "must be one of pending, in-progress, completed, pending-review"})
	}

	var out *models.Task
	err := s.tasks.WithTx(ctx, func(repo repositories.TaskRepository) error {
		task, err := repo.FindByIDForUpdate(ctx, taskID, caller.OrganizationID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperr.NotFound("task %d not found", taskID)
			}
			return err
		}
		assignees, err := repo.ListAssignees(ctx, task.ID)
		if err != nil {
			return err
		}
		if !canSee(caller, task, assignees) {
			return apperr.Forbidden("task %d is not assigned to you", taskID)
		}
		if !canApprove(caller, task, next) {
			return apperr.Forbidden("only the creator or an admin can approve a task under review")
		}

		now := time.Now().UTC()
		if task.Type == models.TypeSequential && next.IsTerminal() {
			handedOff, err := advanceChain(ctx, repo, task, assignees, now)
			if err != nil {
				return err
			}
			if handedOff {
				out = task
				return nil
			}
		}

		task.SetStatus(next, now)
		if err := repo.UpdateState(ctx, task); err != nil {
			return err
		}
		out = task
		return nil
	})
	if err != nil {
		logging.Logger.Warnf("[task][status][err] id=%d to=%q by=%d: %v", taskID, to, caller.ID, err)
		return nil, err
	}

	logging.Logger.Infof("[task][status][ok] id=%d status=%s assigned_to=%v by=%d",
		out.ID, out.Status, derefID(out.AssignedTo), caller.ID)
	return out, nil
}

// advanceChain completes the active link of a sequential task. It returns
// true when the task was handed to the next person and false when the last
// link finished, in which case the caller completes the task itself.
func advanceChain(ctx context.Context, repo repositories.TaskRepository, task *models.Task, rows []models.TaskAssignee, now time.Time) (bool, error) {
	chain, _ := models.AssignmentOf(task, rows).(models.Sequential)

	if owner, ok := chain.Owner(); ok && (task.AssignedTo == nil || *task.AssignedTo != owner) {
		logging.Logger.Warnf("[task][status][repair] id=%d assigned_to=%v active=%d",
			task.ID, derefID(task.AssignedTo), owner)
	}

	done, state, err := chain.Advance(now)
	if errors.Is(err, models.ErrChainDone) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := repo.CompleteAssignee(ctx, done.RowID, now); err != nil {
		return false, err
	}
	if state.Done {
		return false, nil
	}

	nextOwner := chain.Chain[state.Index].EmployeeID
	task.AssignedTo = &nextOwner
	task.AssignedAt = &now
	task.SetStatus(models.StatusPending, now)
	if err := repo.UpdateState(ctx, task); err != nil {
		return false, err
	}
	logging.Logger.Infof("[task][status][handoff] id=%d from=%d to=%d", task.ID, done.EmployeeID, nextOwner)
	return true, nil
}

// canApprove restricts pending-review -> completed to the creator or an admin.
func canApprove(caller authz.Caller, t *models.Task, to models.TaskStatus) bool {
	if t.Status != models.StatusPendingReview || !to.IsTerminal() {
		return true
	}
	return caller.IsAdmin() || t.CreatedBy == caller.ID
}

func derefID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
