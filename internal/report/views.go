// Package report derives presentation views from schedule and CPM output:
// milestones, phase groupings, deadline alerts, and terminal/JSON
// rendering. No new scheduling math lives here.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/joshharrison/ganttloom/internal/calendar"
	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/model"
)

// milestoneConnectivity: tasks wired to more than this many neighbours
// (dependencies plus dependents) count as milestones regardless of
// priority.
const milestoneConnectivity = 2

// Deadline urgency thresholds, in days remaining.
const (
	urgencyHighDays   = 2
	urgencyMediumDays = 5
)

// DefaultHorizonDays is how far ahead deadline alerts look.
const DefaultHorizonDays = 14

// Milestone marks a task as significant, either by priority or by
// dependency connectivity.
type Milestone struct {
	TaskID      string     `json:"task_id"`
	Title       string     `json:"title"`
	Priority    model.Priority `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Connections int        `json:"connections"`
	Reason      string     `json:"reason"`
}

// MilestoneReport lists a project's milestones.
type MilestoneReport struct {
	Milestones []Milestone `json:"milestones"`
	Summary    string      `json:"summary"`
}

// Milestones returns the tasks flagged as milestones: priority high, or
// more than two dependency connections.
func Milestones(tasks []model.Task) *MilestoneReport {
	g := graph.Build(tasks)

	var out []Milestone
	for _, id := range sortedIDs(g) {
		t := g.Tasks[id]
		connections := g.Dependencies(id) + g.Dependents(id)
		var reason string
		switch {
		case t.Priority == model.PriorityHigh && connections > milestoneConnectivity:
			reason = "high priority, highly connected"
		case t.Priority == model.PriorityHigh:
			reason = "high priority"
		case connections > milestoneConnectivity:
			reason = "highly connected"
		default:
			continue
		}
		out = append(out, Milestone{
			TaskID:      id,
			Title:       t.Title,
			Priority:    t.Priority,
			DueDate:     t.DueDate,
			Connections: connections,
			Reason:      reason,
		})
	}

	return &MilestoneReport{
		Milestones: out,
		Summary:    fmt.Sprintf("%d of %d tasks are milestones", len(out), len(tasks)),
	}
}

// Phase is one status bucket of the project.
type Phase struct {
	Status model.Status `json:"status"`
	Tasks  []string     `json:"tasks"`
}

// phaseOrder is the fixed presentation order. Blocked tasks are grouped
// with todo: they are not yet progressing.
var phaseOrder = []model.Status{model.StatusTodo, model.StatusInProgress, model.StatusReview, model.StatusDone}

// Phases buckets tasks by status in fixed order.
func Phases(tasks []model.Task) []Phase {
	buckets := make(map[model.Status][]string)
	for i := range tasks {
		t := &tasks[i]
		status := t.Status
		if status == model.StatusBlocked {
			status = model.StatusTodo
		}
		buckets[status] = append(buckets[status], t.ID)
	}

	phases := make([]Phase, 0, len(phaseOrder))
	for _, status := range phaseOrder {
		ids := buckets[status]
		sort.Strings(ids)
		phases = append(phases, Phase{Status: status, Tasks: ids})
	}
	return phases
}

// Alert is one deadline warning.
type Alert struct {
	TaskID        string    `json:"task_id"`
	Title         string    `json:"title"`
	DueDate       time.Time `json:"due_date"`
	DaysRemaining int       `json:"days_remaining"` // negative when overdue
	Urgency       string    `json:"urgency"`
	Overdue       bool      `json:"overdue"`
}

// Alerts is the deadline alert report.
type Alerts struct {
	Alerts  []Alert `json:"alerts"`
	Summary string  `json:"summary"`
}

// Deadlines classifies due-dated, unfinished tasks against now: overdue
// tasks are always critical; upcoming tasks within horizonDays get urgency
// scaled by days remaining.
func Deadlines(tasks []model.Task, now time.Time, horizonDays int) *Alerts {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	today := calendar.DateOf(now)

	var out []Alert
	for i := range tasks {
		t := &tasks[i]
		if t.DueDate == nil || t.Status == model.StatusDone {
			continue
		}
		due := calendar.DateOf(*t.DueDate)
		days := int(due.Sub(today).Hours() / 24)

		var urgency string
		overdue := days < 0
		switch {
		case overdue:
			urgency = "critical"
		case days > horizonDays:
			continue
		case days <= urgencyHighDays:
			urgency = "high"
		case days <= urgencyMediumDays:
			urgency = "medium"
		default:
			urgency = "low"
		}

		out = append(out, Alert{
			TaskID:        t.ID,
			Title:         t.Title,
			DueDate:       due,
			DaysRemaining: days,
			Urgency:       urgency,
			Overdue:       overdue,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysRemaining != out[j].DaysRemaining {
			return out[i].DaysRemaining < out[j].DaysRemaining
		}
		return out[i].TaskID < out[j].TaskID
	})

	overdue := 0
	for _, a := range out {
		if a.Overdue {
			overdue++
		}
	}
	return &Alerts{
		Alerts:  out,
		Summary: fmt.Sprintf("%d alerts (%d overdue) within %d days", len(out), overdue, horizonDays),
	}
}

func sortedIDs(g *graph.Graph) []string {
	ids := make([]string, 0, len(g.Tasks))
	for id := range g.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
