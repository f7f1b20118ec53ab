// Package conflict scans a task snapshot for scheduling conflicts: cycles
// in the dependency graph, due dates that contradict dependency order,
// overloaded assignees, and unplanned bottleneck tasks. Conflicts are data,
// not errors; detection always completes.
package conflict

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/joshharrison/ganttloom/internal/calendar"
	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/model"
)

// Type classifies a detected conflict.
type Type string

const (
	TypeCircularDependency Type = "circular_dependency"
	TypeDependencyTiming   Type = "dependency_timing_conflict"
	TypeResourceOverload   Type = "resource_overload"
	TypeMissingDeadline    Type = "missing_deadline"
)

// Severity ranks a conflict.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// defaultWindowDays is the assumed work window for a due-dated task with no
// hour estimate.
const defaultWindowDays = 3

// overloadHighThreshold: assignee window overlaps longer than this many
// workdays are severity high.
const overloadHighThreshold = 3

// bottleneckDependents: a task with more direct dependents than this and no
// due date risks becoming an unplanned bottleneck.
const bottleneckDependents = 3

// Conflict is a single detected scheduling problem.
type Conflict struct {
	Type        Type     `json:"type"`
	Severity    Severity `json:"severity"`
	Tasks       []string `json:"tasks"`
	Description string   `json:"description"`
}

// Report bundles all conflicts found in one snapshot.
type Report struct {
	Conflicts        []Conflict `json:"conflicts"`
	DependencyIssues []Conflict `json:"dependency_issues"` // cycle + timing subset
	Summary          Summary    `json:"summary"`
}

// Summary counts conflicts by severity.
type Summary struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
}

// Detect runs every conflict scan over the snapshot and returns the
// combined report.
func Detect(p *model.Project, tasks []model.Task, cal calendar.Calendar) *Report {
	g := graph.Build(tasks)

	var conflicts []Conflict
	conflicts = append(conflicts, detectCycles(g)...)
	conflicts = append(conflicts, detectTimingViolations(g)...)
	conflicts = append(conflicts, detectResourceOverloads(g, cal)...)
	conflicts = append(conflicts, detectMissingDeadlines(g)...)

	report := &Report{Conflicts: conflicts}
	for _, c := range conflicts {
		switch c.Type {
		case TypeCircularDependency, TypeDependencyTiming:
			report.DependencyIssues = append(report.DependencyIssues, c)
		}
		report.Summary.Total++
		switch c.Severity {
		case SeverityHigh:
			report.Summary.High++
		case SeverityMedium:
			report.Summary.Medium++
		}
	}
	return report
}

// detectCycles reports one conflict per task that sits on a dependency
// cycle, each carrying the cycle path starting at that task.
func detectCycles(g *graph.Graph) []Conflict {
	ids := sortedIDs(g)

	var out []Conflict
	for _, id := range ids {
		cycle := g.CycleFrom(id)
		if cycle == nil {
			continue
		}
		out = append(out, Conflict{
			Type:        TypeCircularDependency,
			Severity:    SeverityHigh,
			Tasks:       cycle,
			Description: fmt.Sprintf("task %s is part of a dependency cycle: %s", id, strings.Join(append(cycle, id), " -> ")),
		})
	}
	return out
}

// detectTimingViolations flags tasks due before one of their dependencies.
func detectTimingViolations(g *graph.Graph) []Conflict {
	var out []Conflict
	for _, id := range sortedIDs(g) {
		t := g.Tasks[id]
		if t.DueDate == nil {
			continue
		}
		due := calendar.DateOf(*t.DueDate)
		for _, depID := range g.RevAdj[id] {
			dep := g.Tasks[depID]
			if dep.DueDate == nil {
				continue
			}
			if calendar.DateOf(*dep.DueDate).After(due) {
				out = append(out, Conflict{
					Type:        TypeDependencyTiming,
					Severity:    SeverityHigh,
					Tasks:       []string{id, depID},
					Description: fmt.Sprintf("task %s is due %s but depends on %s due later (%s)", id, due.Format("2006-01-02"), depID, calendar.DateOf(*dep.DueDate).Format("2006-01-02")),
				})
			}
		}
	}
	return out
}

// window is the workday span a due-dated task is expected to occupy,
// derived backward from its due date.
type window struct {
	taskID     string
	start, end time.Time
}

// detectResourceOverloads finds pairs of same-assignee tasks whose derived
// work windows overlap.
func detectResourceOverloads(g *graph.Graph, cal calendar.Calendar) []Conflict {
	byAssignee := make(map[string][]window)
	for _, id := range sortedIDs(g) {
		t := g.Tasks[id]
		if t.AssigneeID == "" || t.DueDate == nil {
			continue
		}
		days := defaultWindowDays
		if t.HasEstimate() {
			days = cal.HoursToDays(t.EstimatedHours)
			if days < 1 {
				days = 1
			}
		}
		end := calendar.DateOf(*t.DueDate)
		byAssignee[t.AssigneeID] = append(byAssignee[t.AssigneeID], window{
			taskID: id,
			start:  cal.AddWorkdays(end, -(days - 1)),
			end:    end,
		})
	}

	assignees := make([]string, 0, len(byAssignee))
	for a := range byAssignee {
		assignees = append(assignees, a)
	}
	sort.Strings(assignees)

	var out []Conflict
	for _, assignee := range assignees {
		windows := byAssignee[assignee]
		for i := 0; i < len(windows); i++ {
			for j := i + 1; j < len(windows); j++ {
				a, b := windows[i], windows[j]
				start := maxDate(a.start, b.start)
				end := minDate(a.end, b.end)
				overlap := cal.WorkdaysBetween(start, end)
				if overlap == 0 {
					continue
				}
				severity := SeverityMedium
				if overlap > overloadHighThreshold {
					severity = SeverityHigh
				}
				out = append(out, Conflict{
					Type:        TypeResourceOverload,
					Severity:    severity,
					Tasks:       []string{a.taskID, b.taskID},
					Description: fmt.Sprintf("assignee %s has overlapping work windows for %s and %s (%d workdays)", assignee, a.taskID, b.taskID, overlap),
				})
			}
		}
	}
	return out
}

// detectMissingDeadlines flags active tasks that gate many others but carry
// no due date.
func detectMissingDeadlines(g *graph.Graph) []Conflict {
	var out []Conflict
	for _, id := range sortedIDs(g) {
		t := g.Tasks[id]
		if t.DueDate != nil {
			continue
		}
		if t.Status != model.StatusTodo && t.Status != model.StatusInProgress {
			continue
		}
		if g.Dependents(id) <= bottleneckDependents {
			continue
		}
		out = append(out, Conflict{
			Type:        TypeMissingDeadline,
			Severity:    SeverityMedium,
			Tasks:       []string{id},
			Description: fmt.Sprintf("task %s gates %d tasks but has no due date", id, g.Dependents(id)),
		})
	}
	return out
}

func sortedIDs(g *graph.Graph) []string {
	ids := make([]string, 0, len(g.Tasks))
	for id := range g.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func maxDate(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

func minDate(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}
