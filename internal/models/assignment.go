package models

import (
	"errors"
	"math"
	"time"
)

// Assignment is the closed set of assignment modes: Single, Shared or
// Sequential. Only types in this package implement it.
type Assignment interface {
	Mode() TaskType
	// Owner is the person currently responsible, if the mode has one.
	Owner() (int64, bool)
	// Members lists every attached employee in chain order.
	Members() []int64
	isAssignment()
}

// Single has at most one owner. Employee is zero when nobody is assigned.
type Single struct {
	Employee int64
}

// Shared is a parallel pool of at least two people splitting Pool points.
type Shared struct {
	Pool      float64
	Employees []int64
}

// Sequential is an ordered hand-off chain of at least two links.
type Sequential struct {
	Chain []ChainLink
}

// ChainLink mirrors one task_assignees row of a sequential chain.
type ChainLink struct {
	RowID       int64
	EmployeeID  int64
	Order       int
	Completed   bool
	CompletedAt *time.Time
}

func (Single) Mode() TaskType     { return TypeSingle }
func (Shared) Mode() TaskType     { return TypeShared }
func (Sequential) Mode() TaskType { return TypeSequential }

func (Single) isAssignment()     {}
func (Shared) isAssignment()     {}
func (Sequential) isAssignment() {}

func (s Single) Owner() (int64, bool) { return s.Employee, s.Employee != 0 }

func (s Single) Members() []int64 {
	if s.Employee == 0 {
		return nil
	}
	return []int64{s.Employee}
}

// Shared pools have no single owner.
func (Shared) Owner() (int64, bool) { return 0, false }

func (s Shared) Members() []int64 { return append([]int64(nil), s.Employees...) }

// Share is the derived per-person portion of the pool, rounded to cents.
func (s Shared) Share() float64 {
	return SharePoints(s.Pool, len(s.Employees))
}

// SharePoints splits points evenly across n people, rounded to 2 decimals.
func SharePoints(points float64, n int) float64 {
	if n <= 0 {
		return points
	}
	return math.Round(points/float64(n)*100) / 100
}

func (s Sequential) Owner() (int64, bool) {
	st := s.State()
	if st.Done {
		return 0, false
	}
	return s.Chain[st.Index].EmployeeID, true
}

func (s Sequential) Members() []int64 {
	out := make([]int64, 0, len(s.Chain))
	for _, l := range s.Chain {
		out = append(out, l.EmployeeID)
	}
	return out
}

// ChainState is the hand-off FSM state: Active(Index) or Done.
type ChainState struct {
	Index int
	Done  bool
}

// State returns the active link: the first one not yet completed.
func (s Sequential) State() ChainState {
	for i, l := range s.Chain {
		if !l.Completed {
			return ChainState{Index: i}
		}
	}
	return ChainState{Done: true}
}

var ErrChainDone = errors.New("sequential chain already completed")

// Advance completes the active link and moves to the next one. The returned
// state is Active(next) when someone else takes over, or Done when the
// completed link was the last.
func (s *Sequential) Advance(now time.Time) (completed ChainLink, next ChainState, err error) {
	st := s.State()
	if st.Done {
		return ChainLink{}, st, ErrChainDone
	}
	s.Chain[st.Index].Completed = true
	s.Chain[st.Index].CompletedAt = &now
	return s.Chain[st.Index], s.State(), nil
}

// Finish returns a copy of the chain with every link completed at now.
func (s Sequential) Finish(now time.Time) Sequential {
	chain := make([]ChainLink, len(s.Chain))
	for i, l := range s.Chain {
		if !l.Completed {
			l.Completed = true
			l.CompletedAt = &now
		}
		chain[i] = l
	}
	return Sequential{Chain: chain}
}

// ResolveAssignment picks the assignment mode for a new task. With zero or
// one employees the task is always Single; otherwise the requested mode is
// used and must be Shared or Sequential.
func ResolveAssignment(requested TaskType, employees []int64, points float64) (Assignment, error) {
	employees = dedupe(employees)
	switch {
	case len(employees) == 0:
		return Single{}, nil
	case len(employees) == 1:
		return Single{Employee: employees[0]}, nil
	}
	switch requested {
	case TypeShared:
		return Shared{Pool: points, Employees: employees}, nil
	case TypeSequential:
		chain := make([]ChainLink, len(employees))
		for i, e := range employees {
			chain[i] = ChainLink{EmployeeID: e, Order: i + 1}
		}
		return Sequential{Chain: chain}, nil
	}
	return nil, ErrMultiAssigneeType
}

var ErrMultiAssigneeType = errors.New("tasks with several assignees must be SHARED or SEQUENTIAL")

// AssignmentOf rebuilds the assignment of a stored task from its assignee
// rows. Rows are expected in chain order for sequential tasks.
func AssignmentOf(t *Task, rows []TaskAssignee) Assignment {
	switch t.Type {
	case TypeShared:
		ids := make([]int64, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.EmployeeID)
		}
		return Shared{Pool: t.Points, Employees: ids}
	case TypeSequential:
		chain := make([]ChainLink, 0, len(rows))
		for i, r := range rows {
			order := i + 1
			if r.Order != nil {
				order = *r.Order
			}
			chain = append(chain, ChainLink{
				RowID:       r.ID,
				EmployeeID:  r.EmployeeID,
				Order:       order,
				Completed:   r.IsCompleted,
				CompletedAt: r.CompletedAt,
			})
		}
		return Sequential{Chain: chain}
	}
	if t.AssignedTo != nil {
		return Single{Employee: *t.AssignedTo}
	}
	if len(rows) > 0 {
		return Single{Employee: rows[0].EmployeeID}
	}
	return Single{}
}

// AssigneeRows builds the task_assignees rows a new task starts with.
func AssigneeRows(a Assignment, taskID int64, now time.Time) []TaskAssignee {
	var rows []TaskAssignee
	switch v := a.(type) {
	case Single:
		if v.Employee != 0 {
			one := 1
			rows = append(rows, TaskAssignee{TaskID: taskID, EmployeeID: v.Employee, Order: &one, AssignedAt: now})
		}
	case Shared:
		for _, e := range v.Employees {
			rows = append(rows, TaskAssignee{TaskID: taskID, EmployeeID: e, AssignedAt: now})
		}
	case Sequential:
		for _, l := range v.Chain {
			order := l.Order
			rows = append(rows, TaskAssignee{
				TaskID:      taskID,
				EmployeeID:  l.EmployeeID,
				Order:       &order,
				IsCompleted: l.Completed,
				CompletedAt: l.CompletedAt,
				AssignedAt:  now,
			})
		}
	}
	return rows
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
