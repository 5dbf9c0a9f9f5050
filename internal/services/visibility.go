package services

import (
	"taskdesk/internal/authz"
	"taskdesk/internal/models"
)

// canSee applies the listing visibility rule to a single task: admins see
// every organization task, users see what they own, created, or are part
// of as a shared/sequential assignee.
func canSee(caller authz.Caller, t *models.Task, assignees []models.TaskAssignee) bool {
	if caller.IsAdmin() {
		return true
	}
	if t.CreatedBy == caller.ID {
		return true
	}
	if t.AssignedTo != nil && *t.AssignedTo == caller.ID {
		return true
	}
	if t.Type == models.TypeShared || t.Type == models.TypeSequential {
		for _, a := range assignees {
			if a.EmployeeID == caller.ID {
				return true
			}
		}
	}
	return false
}
