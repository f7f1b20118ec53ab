// Package model holds the task and project snapshot types consumed by the
// scheduling engine. The engine never mutates a snapshot; every computed
// result is derived fresh from the values here.
package model

import (
	"errors"
	"time"
)

// Sentinel errors surfaced by snapshot sources.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrTaskNotFound    = errors.New("task not found")
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// Valid reports whether s is one of the known task statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone, StatusBlocked:
		return true
	}
	return false
}

// Priority is the scheduling priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultDurationDays returns the fallback duration in workdays used when a
// task carries no hour estimate. Unknown priorities get the medium default.
func (p Priority) DefaultDurationDays() int {
	switch p {
	case PriorityHigh:
		return 5
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Subtask is a pure child of a task. It carries no schedule of its own and
// only feeds the parent's progress blend.
type Subtask struct {
	Status Status `json:"status"`
}

// Task is a single unit of work in a project snapshot.
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	EstimatedHours float64    `json:"estimated_hours,omitempty"` // 0 = no estimate
	ActualHours    float64    `json:"actual_hours,omitempty"`
	AssigneeID     string     `json:"assignee_id,omitempty"`
	DependsOn      []string   `json:"depends_on,omitempty"`
	Subtasks       []Subtask  `json:"subtasks,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// HasEstimate reports whether the task carries an hour estimate.
func (t *Task) HasEstimate() bool {
	return t.EstimatedHours > 0
}

// Project is the owning container for a task snapshot.
type Project struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Deadline  *time.Time `json:"deadline,omitempty"`
}

// Start returns the project start date, or the given fallback when the
// project has none.
func (p *Project) Start(fallback time.Time) time.Time {
	if p.StartDate != nil {
		return *p.StartDate
	}
	return fallback
}
