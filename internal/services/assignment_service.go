package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskdesk/internal/apperr"
	"taskdesk/internal/authz"
	"taskdesk/internal/logging"
	"taskdesk/internal/models"
	"taskdesk/internal/repositories"
)

// CreateTaskInput is the creation payload after transport decoding. Enum
// fields are raw strings and validated here.
type CreateTaskInput struct {
	Description string
	Status      string
	Points      float64
	ProjectID   int64
	Priority    string
	DueDate     *time.Time
	ParentID    *int64
	Type        string
	Assignees   []int64
	AssignedTo  *int64
}

// AssignmentService decides who owns a new task and in which mode.
type AssignmentService interface {
	Create(ctx context.Context, caller authz.Caller, in CreateTaskInput) (*models.Task, error)
}

type assignmentService struct {
	tasks    repositories.TaskRepository
	projects repositories.ProjectRepository
}

func NewAssignmentService(tasks repositories.TaskRepository, projects repositories.ProjectRepository) AssignmentService {
	return &assignmentService{tasks: tasks, projects: projects}
}

func (s *assignmentService) Create(ctx context.Context, caller authz.Caller, in CreateTaskInput) (*models.Task, error) {
	task, requested, err := validateCreate(in)
	if err != nil {
		return nil, err
	}

	if _, err := s.projects.FindInOrganization(ctx, in.ProjectID, caller.OrganizationID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("project %d not found", in.ProjectID)
		}
		return nil, err
	}

	employees := append([]int64(nil), in.Assignees...)
	if len(employees) == 0 && in.AssignedTo != nil {
		employees = []int64{*in.AssignedTo}
	}
	if len(employees) == 0 && authz.NormalizeRole(caller.Role) == authz.RoleUser {
		employees = []int64{caller.ID}
	}

	assignment, err := models.ResolveAssignment(requested, employees, task.Points)
	if err != nil {
		return nil, apperr.BadRequest("%s", err.Error()).WithDetails(map[string]string{"type": string(requested)})
	}

	now := time.Now().UTC()
	task.Type = assignment.Mode()
	task.CreatedBy = caller.ID
	task.CreatedAt = now
	task.SetStatus(task.Status, now)
	if seq, ok := assignment.(models.Sequential); ok && task.Status.IsTerminal() {
		// a chain created finished keeps its last link as owner
		seq = seq.Finish(now)
		assignment = seq
		last := seq.Chain[len(seq.Chain)-1].EmployeeID
		task.AssignedTo = &last
		task.AssignedAt = &now
	} else if owner, ok := assignment.Owner(); ok {
		task.AssignedTo = &owner
		task.AssignedAt = &now
	}

	err = s.tasks.WithTx(ctx, func(repo repositories.TaskRepository) error {
		if task.ParentID != nil {
			parent, err := repo.FindByID(ctx, *task.ParentID, caller.OrganizationID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return apperr.NotFound("parent task %d not found", *task.ParentID)
				}
				return err
			}
			if parent.ProjectID != task.ProjectID {
				return apperr.BadRequest("parent task %d belongs to another project", parent.ID).
					WithDetails(map[string]string{"parentId": "must reference a task in the same project"})
			}
			if !parent.IsRoot() {
				return apperr.BadRequest("parent task %d is itself a subtask", parent.ID).
					WithDetails(map[string]string{"parentId": "must reference a root task"})
			}
		}

		order, err := repo.NextOrder(ctx, task.ProjectID)
		if err != nil {
			return err
		}
		task.Order = order

		if err := repo.Insert(ctx, task); err != nil {
			return err
		}
		rows := models.AssigneeRows(assignment, task.ID, now)
		if err := repo.InsertAssignees(ctx, rows); err != nil {
			return err
		}
		task.Assignees = rows
		return nil
	})
	if err != nil {
		logging.Logger.Warnf("[task][create][err] project=%d by=%d: %v", in.ProjectID, caller.ID, err)
		return nil, err
	}

	logging.Logger.Infof("[task][create][ok] id=%d type=%s assignees=%d by=%d",
		task.ID, task.Type, len(task.Assignees), caller.ID)
	return task, nil
}

// validateCreate checks the schema and returns a task skeleton plus the
// requested assignment mode.
func validateCreate(in CreateTaskInput) (*models.Task, models.TaskType, error) {
	details := map[string]string{}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		details["description"] = "is required"
	}
	if in.Points < 0 {
		details["points"] = "must not be negative"
	}
	if in.ProjectID <= 0 {
		details["projectId"] = "is required"
	}

	status := models.StatusPending
	if in.Status != "" {
		st, ok := models.ParseTaskStatus(in.Status)
		if !ok {
			details["status"] = "must be one of pending, in-progress, completed, pending-review"
		}
		status = st
	}

	priority := models.PriorityMedium
	if in.Priority != "" {
		p, ok := models.ParseTaskPriority(in.Priority)
		if !ok {
			details["priority"] = "must be one of LOW, MEDIUM, HIGH"
		}
		priority = p
	}

	var requested models.TaskType
	if in.Type != "" {
		t, ok := models.ParseTaskType(in.Type)
		if !ok {
			details["type"] = "must be one of SINGLE, SHARED, SEQUENTIAL"
		}
		requested = t
	}

	if len(details) > 0 {
		return nil, "", apperr.BadRequest("invalid task").WithDetails(details)
	}

	var due *time.Time
	if in.DueDate != nil {
		d := in.DueDate.UTC().Truncate(time.Second)
		due = &d
	}

	return &models.Task{
		Description: description,
		Status:      status,
		Points:      roundPoints(in.Points),
		Priority:    priority,
		DueDate:     due,
		ProjectID:   in.ProjectID,
		ParentID:    in.ParentID,
	}, requested, nil
}

func roundPoints(p float64) float64 {
	return models.SharePoints(p, 1)
}
