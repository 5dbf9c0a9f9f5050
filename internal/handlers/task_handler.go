package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taskdesk/internal/apperr"
	"taskdesk/internal/logging"
	"taskdesk/internal/models"
	"taskdesk/internal/services"
)

type TaskHandler struct {
	assignments services.AssignmentService
	transitions services.StatusTransitionService
	queries     services.TaskQueryService
	tasks       services.TaskService
}

func NewTaskHandler(
	assignments services.AssignmentService,
	transitions services.StatusTransitionService,
	queries services.TaskQueryService,
	tasks services.TaskService,
) *TaskHandler {
	return &TaskHandler{assignments: assignments, transitions: transitions, queries: queries, tasks: tasks}
}

type CreateTaskRequest struct {
	Description string  `json:"description" binding:"required"`
	Status      string  `json:"status"`
	Points      float64 `json:"points"`
	ProjectID   int64   `json:"projectId" binding:"required"`
	Priority    string  `json:"priority"`
	DueDate     string  `json:"dueDate"` // RFC3339 or YYYY-MM-DD
	ParentID    *int64  `json:"parentId"`
	Type        string  `json:"type"`
	Assignees   []int64 `json:"assignees"`
	AssignedTo  *int64  `json:"assignedTo"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AssignRequest struct {
	AssignedTo int64 `json:"assignedTo" binding:"required"`
}

type ReorderRequest struct {
	Items []models.TaskOrder `json:"items" binding:"required,dive"`
}

// @Summary      Create a task
// @Description  Resolves the assignment mode (SINGLE, SHARED, SEQUENTIAL) and stores the task with its assignees
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      CreateTaskRequest  true  "Task"
// @Success      201   {object}  models.Task
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logging.Logger.Debugf("[task][create][bind][err] %v", err)
		respondError(c, bindError(err))
		return
	}

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		respondError(c, err)
		return
	}

	task, err := h.assignments.Create(c.Request.Context(), caller, services.CreateTaskInput{
		Description: req.Description,
		Status:      req.Status,
		Points:      req.Points,
		ProjectID:   req.ProjectID,
		Priority:    req.Priority,
		DueDate:     due,
		ParentID:    req.ParentID,
		Type:        req.Type,
		Assignees:   req.Assignees,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// @Summary      Change task status
// @Description  Sequential tasks hand off to the next assignee on completion
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id      path      int            true  "Task ID"
// @Param        status  body      StatusRequest  true  "New status"
// @Success      200     {object}  models.Task
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /tasks/{id}/status [patch]
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body StatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, bindError(err))
		return
	}

	task, err := h.transitions.Transition(c.Request.Context(), caller, id, body.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Reassign a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int            true  "Task ID"
// @Param        body  body      AssignRequest  true  "New owner"
// @Success      200   {object}  models.Task
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /tasks/assign/{id} [put]
func (h *TaskHandler) Assign(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body AssignRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, bindError(err))
		return
	}

	task, err := h.tasks.Reassign(c.Request.Context(), caller, id, body.AssignedTo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      List tasks with stats
// @Description  Root tasks only; a status filter also matches roots with a matching subtask
// @Tags         Tasks
// @Produce      json
// @Param        page        query     int     false  "Page"
// @Param        limit       query     int     false  "Page size"
// @Param        status      query     string  false  "Status"
// @Param        projectId   query     int     false  "Project"
// @Param        assignedTo  query     int     false  "Employee"
// @Param        date        query     string  false  "today | week | month | overdue | YYYY-MM-DD"
// @Param        sortBy      query     string  false  "createdAt | dueDate | status | points | priority | description | order"
// @Param        sortOrder   query     string  false  "asc | desc"
// @Success      200         {object}  models.TaskListResult
// @Failure      400         {object}  errorResponse
// @Router       /tasks/employees/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	q, err := parseListQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.queries.List(c.Request.Context(), caller, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Get a task with subtasks and assignees
// @Tags         Tasks
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  models.Task
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := h.tasks.GetByID(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Delete a task, its subtasks and their comments
// @Tags         Tasks
// @Param        id   path  int  true  "Task ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Reorder tasks manually
// @Tags         Tasks
// @Accept       json
// @Param        body  body  ReorderRequest  true  "New positions"
// @Success      204
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /tasks/reorder [put]
func (h *TaskHandler) Reorder(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	var body ReorderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, bindError(err))
		return
	}
	if err := h.tasks.Reorder(c.Request.Context(), caller, body.Items); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseListQuery(c *gin.Context) (models.TaskListQuery, error) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	q := models.TaskListQuery{
		Page:      page,
		Limit:     limit,
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}

	var err error
	if q.Filter.ProjectID, err = optionalInt64(c, "projectId"); err != nil {
		return q, err
	}
	if q.Filter.AssignedTo, err = optionalInt64(c, "assignedTo"); err != nil {
		return q, err
	}
	q.Filter.DateScope = strings.ToLower(strings.TrimSpace(c.Query("date")))

	if v := strings.TrimSpace(c.Query("status")); v != "" && v != "all" {
		st, ok := models.ParseTaskStatus(v)
		if !ok {
			return q, apperr.BadRequest("invalid status %q", v).
				WithDetails(map[string]string{"status": "must be one of pending, in-progress, completed, pending-review"})
		}
		q.Filter.Status = &st
	}
	return q, nil
}

func parseDueDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return &t, nil
	}
	return nil, apperr.BadRequest("invalid dueDate").
		WithDetails(map[string]string{"dueDate": "must be RFC3339 or YYYY-MM-DD"})
}
