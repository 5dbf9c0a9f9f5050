package models

// TaskListFilter narrows the context a listing and its stats are computed over.
type TaskListFilter struct {
	ProjectID  *int64
	AssignedTo *int64
	DateScope  string
	Status     *TaskStatus
}

type TaskListQuery struct {
	Filter    TaskListFilter
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// StatusCounts summarizes tasks by status.
type StatusCounts struct {
	Total         int     `json:"total" db:"total"`
	Pending       int     `json:"pending" db:"pending"`
	InProgress    int     `json:"inProgress" db:"in_progress"`
	PendingReview int     `json:"pendingReview" db:"pending_review"`
	Completed     int     `json:"completed" db:"completed"`
	Points        float64 `json:"points" db:"points"`
}

// TaskStats are computed with every filter except status, so the summary
// cards stay the same across status tabs. Global includes subtasks, Root
// counts top-level tasks only.
type TaskStats struct {
	Global StatusCounts `json:"global"`
	Root   StatusCounts `json:"root"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type TaskListResult struct {
	Tasks      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
	Stats      TaskStats  `json:"stats"`
}

// TaskOrder is one entry of a manual reorder request.
type TaskOrder struct {
	ID    int64 `json:"id" binding:"required"`
	Order int   `json:"order"`
}
