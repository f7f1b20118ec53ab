// Package cpm runs Critical Path Method analysis over a resolved schedule:
// a forward pass for earliest windows, a backward pass for latest windows,
// and float computation for every task.
package cpm

import (
	"sort"

	"github.com/joshharrison/ganttloom/internal/calendar"
	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/schedule"
)

// criticalFloatTolerance admits tasks within one workday of zero float to
// the critical path, absorbing day-rounding at wave boundaries.
const criticalFloatTolerance = 1

// Analyze computes early/late windows and float for every task in the
// chart. Tasks the topological sort flagged as cyclic are treated as
// isolated nodes: their resolved dates stand, but edges into the cycle are
// ignored rather than followed forever.
func Analyze(chart *schedule.Chart, g *graph.Graph, cal calendar.Calendar) *Result {
	order := g.TopoSort()

	cyclic := make(map[string]bool, len(order.Cyclic))
	for _, id := range order.Cyclic {
		cyclic[id] = true
	}

	result := &Result{
		Nodes: make(map[string]*Node, len(chart.Tasks)),
		Slack: make(map[string]int, len(chart.Tasks)),
	}

	durations := make(map[string]int, len(chart.Tasks))
	for i := range chart.Tasks {
		st := &chart.Tasks[i]
		result.Nodes[st.TaskID] = &Node{TaskID: st.TaskID}
		d := st.DurationDays
		if d < 1 {
			d = 1
		}
		durations[st.TaskID] = d
	}

	full := append(append([]string(nil), order.Sorted...), order.Cyclic...)

	// deps/dependents with cycle edges severed
	deps := func(id string) []string {
		if cyclic[id] {
			return nil
		}
		var out []string
		for _, dep := range g.RevAdj[id] {
			if !cyclic[dep] {
				out = append(out, dep)
			}
		}
		return out
	}
	dependents := func(id string) []string {
		if cyclic[id] {
			return nil
		}
		var out []string
		for _, succ := range g.Adj[id] {
			if !cyclic[succ] {
				out = append(out, succ)
			}
		}
		return out
	}

	// Forward pass: earliest start is the task's own resolved start for
	// roots, or the workday after the latest dependency early finish.
	for _, id := range full {
		n := result.Nodes[id]
		ds := deps(id)
		if len(ds) == 0 {
			n.EarlyStart = chart.Task(id).Start
		} else {
			latest := result.Nodes[ds[0]].EarlyFinish
			for _, dep := range ds[1:] {
				if ef := result.Nodes[dep].EarlyFinish; ef.After(latest) {
					latest = ef
				}
			}
			n.EarlyStart = cal.AddWorkdays(latest, 1)
		}
		n.EarlyFinish = cal.AddWorkdays(n.EarlyStart, durations[id]-1)

		if result.ProjectEnd.IsZero() || n.EarlyFinish.After(result.ProjectEnd) {
			result.ProjectEnd = n.EarlyFinish
		}
	}

	// Backward pass in reverse dependency order.
	for i := len(full) - 1; i >= 0; i-- {
		id := full[i]
		n := result.Nodes[id]
		succs := dependents(id)
		if len(succs) == 0 {
			n.LateFinish = result.ProjectEnd
		} else {
			earliest := result.Nodes[succs[0]].LateStart
			for _, succ := range succs[1:] {
				if ls := result.Nodes[succ].LateStart; ls.Before(earliest) {
					earliest = ls
				}
			}
			n.LateFinish = cal.AddWorkdays(earliest, -1)
		}
		n.LateStart = cal.AddWorkdays(n.LateFinish, -(durations[id] - 1))
	}

	// Floats. WorkdaysBetween is inclusive on both ends, so identical
	// finish dates count 1 while representing zero days of slack; the
	// occupied endpoints are subtracted out.
	for _, id := range full {
		n := result.Nodes[id]
		n.TotalFloat = clampFloat(cal.WorkdaysBetween(n.EarlyFinish, n.LateFinish) - 1)

		succs := dependents(id)
		if len(succs) == 0 {
			n.FreeFloat = n.TotalFloat
		} else {
			free := -1
			for _, succ := range succs {
				f := clampFloat(cal.WorkdaysBetween(n.EarlyFinish, result.Nodes[succ].EarlyStart) - 2)
				if free < 0 || f < free {
					free = f
				}
			}
			n.FreeFloat = free
		}

		n.OnCritical = n.TotalFloat <= criticalFloatTolerance
		result.Slack[id] = n.TotalFloat
	}

	for _, id := range full {
		if n := result.Nodes[id]; n.OnCritical {
			result.CriticalPath = append(result.CriticalPath, n)
		}
	}
	sort.SliceStable(result.CriticalPath, func(i, j int) bool {
		a, b := result.CriticalPath[i], result.CriticalPath[j]
		if !a.EarlyStart.Equal(b.EarlyStart) {
			return a.EarlyStart.Before(b.EarlyStart)
		}
		return a.TaskID < b.TaskID
	})

	result.Metrics = buildMetrics(result.CriticalPath, cal)
	return result
}

func buildMetrics(path []*Node, cal calendar.Calendar) Metrics {
	if len(path) == 0 {
		return Metrics{}
	}
	start := path[0].EarlyStart
	end := path[0].LateFinish
	for _, n := range path[1:] {
		if n.EarlyStart.Before(start) {
			start = n.EarlyStart
		}
		if n.LateFinish.After(end) {
			end = n.LateFinish
		}
	}
	return Metrics{
		Length:       len(path),
		DurationDays: cal.WorkdaysBetween(start, end),
		Start:        start,
		End:          end,
	}
}

func clampFloat(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
