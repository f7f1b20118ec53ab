package schedule

import (
	"time"

	"github.com/joshharrison/ganttloom/internal/model"
)

// ScheduledTask is a task with concrete resolved dates. Recomputed on every
// call; never persisted as authoritative state.
type ScheduledTask struct {
	TaskID       string         `json:"task_id"`
	Title        string         `json:"title"`
	Status       model.Status   `json:"status"`
	Priority     model.Priority `json:"priority"`
	Start        time.Time      `json:"start_date"`
	End          time.Time      `json:"end_date"`
	DurationDays int            `json:"duration_days"`
	Progress     int            `json:"progress"`
	Dependencies []string       `json:"dependencies,omitempty"`
	Assignee     string         `json:"assignee,omitempty"`
}

// Timeline summarizes the span of a chart.
type Timeline struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	CalendarDays int       `json:"calendar_days"`
	Workdays     int       `json:"workdays"`
	Weeks        float64   `json:"weeks"`
}

// Chart is the full Gantt output for one project snapshot, tasks sorted by
// start date ascending.
type Chart struct {
	ProjectID  string          `json:"project_id"`
	Tasks      []ScheduledTask `json:"tasks"`
	Timeline   Timeline        `json:"timeline"`
	Unresolved []string        `json:"unresolved,omitempty"` // cycle fallback tasks, anchored at project start
}

// Task returns the scheduled entry for id, or nil.
func (c *Chart) Task(id string) *ScheduledTask {
	for i := range c.Tasks {
		if c.Tasks[i].TaskID == id {
			return &c.Tasks[i]
		}
	}
	return nil
}
