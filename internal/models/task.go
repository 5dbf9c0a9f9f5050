package models

import (
	"strings"
	"time"
)

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusPending       TaskStatus = "pending"
	StatusInProgress    TaskStatus = "in-progress"
	StatusCompleted     TaskStatus = "completed"
	StatusPendingReview TaskStatus = "pending-review"

	// statusDoneAlias is accepted on input and stored as StatusCompleted.
	statusDoneAlias TaskStatus = "done"
)

// ParseTaskStatus normalizes client input. "done" is an alias for completed.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	st := TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusInProgress, StatusCompleted, StatusPendingReview:
		return st, true
	case statusDoneAlias:
		return StatusCompleted, true
	}
	return "", false
}

// IsTerminal reports whether the status finishes a task. completed_at is
// set for terminal statuses only.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

func ParseTaskPriority(s string) (TaskPriority, bool) {
	p := TaskPriority(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	}
	return "", false
}

// TaskType is the assignment mode stored with the task.
type TaskType string

const (
	TypeSingle     TaskType = "SINGLE"
	TypeShared     TaskType = "SHARED"
	TypeSequential TaskType = "SEQUENTIAL"
)

func ParseTaskType(s string) (TaskType, bool) {
	t := TaskType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TypeSingle, TypeShared, TypeSequential:
		return t, true
	}
	return "", false
}

// Task represents a unit of work. AssignedTo is the active owner for SINGLE
// and SEQUENTIAL tasks and is always nil for SHARED ones.
type Task struct {
	ID          int64        `json:"id" db:"id"`
	Description string       `json:"description" db:"description"`
	Status      TaskStatus   `json:"status" db:"status"`
	Points      float64      `json:"points" db:"points"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty" db:"due_date"`
	ProjectID   int64        `json:"projectId" db:"project_id"`
	ParentID    *int64       `json:"parentId,omitempty" db:"parent_id"`
	Type        TaskType     `json:"type" db:"type"`
	AssignedTo  *int64       `json:"assignedTo,omitempty" db:"assigned_to"`
	AssignedAt  *time.Time   `json:"assignedAt,omitempty" db:"assigned_at"`
	CompletedAt *time.Time   `json:"completedAt" db:"completed_at"`
	CreatedBy   int64        `json:"createdBy" db:"created_by"`
	Order       int          `json:"order" db:"sort_order"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`

	// TotalPoints carries the shared pool when Points holds a per-person share.
	TotalPoints *float64       `json:"totalPoints,omitempty" db:"-"`
	Subtasks    []Task         `json:"subtasks,omitempty" db:"-"`
	Assignees   []TaskAssignee `json:"assignees,omitempty" db:"-"`
}

// TaskAssignee is one person attached to a task. Order is 1..N for
// SEQUENTIAL chains, 1 for SINGLE and nil for SHARED pools.
type TaskAssignee struct {
	ID          int64      `json:"id" db:"id"`
	TaskID      int64      `json:"taskId" db:"task_id"`
	EmployeeID  int64      `json:"employeeId" db:"employee_id"`
	Order       *int       `json:"order" db:"sort_order"`
	IsCompleted bool       `json:"isCompleted" db:"is_completed"`
	CompletedAt *time.Time `json:"completedAt" db:"completed_at"`
	AssignedAt  time.Time  `json:"assignedAt" db:"assigned_at"`
}

// SetStatus writes the status and keeps completed_at consistent with it.
func (t *Task) SetStatus(to TaskStatus, now time.Time) {
	t.Status = to
	if to.IsTerminal() {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
}

// IsRoot reports whether the task has no parent.
func (t *Task) IsRoot() bool {
	return t.ParentID == nil
}

// Project is the organization-scoped container a task belongs to.
type Project struct {
	ID             int64     `json:"id" db:"id"`
	OrganizationID int64     `json:"organizationId" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

type Comment struct {
	ID        int64     `json:"id" db:"id"`
	TaskID    int64     `json:"taskId" db:"task_id"`
	AuthorID  int64     `json:"authorId" db:"author_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
