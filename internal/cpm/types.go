package cpm

import "time"

// Node holds the CPM schedule window for a single task.
type Node struct {
	TaskID      string    `json:"task_id"`
	EarlyStart  time.Time `json:"early_start"`
	EarlyFinish time.Time `json:"early_finish"`
	LateStart   time.Time `json:"late_start"`
	LateFinish  time.Time `json:"late_finish"`
	TotalFloat  int       `json:"total_float"` // workdays of project-safe delay
	FreeFloat   int       `json:"free_float"`  // workdays of successor-safe delay
	OnCritical  bool      `json:"on_critical_path"`
}

// Metrics summarizes the critical path.
type Metrics struct {
	Length       int       `json:"length"`
	DurationDays int       `json:"duration_days"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

// Result is the complete critical path analysis. Every task appears in
// Nodes and Slack, critical or not.
type Result struct {
	Nodes        map[string]*Node `json:"nodes"`
	CriticalPath []*Node          `json:"critical_path"` // ordered by early start
	Slack        map[string]int   `json:"slack_by_task"`
	Metrics      Metrics          `json:"critical_path_metrics"`
	ProjectEnd   time.Time        `json:"project_end"`
}
