package schedule

import (
	"math"
	"sort"
	"time"

	"github.com/joshharrison/ganttloom/internal/calendar"
	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/model"
)

// Build resolves every task's dates in dependency order and assembles the
// Gantt chart. Tasks stranded by a dependency cycle are anchored at the
// project start with their default duration and listed in Unresolved; the
// conflict detector reports the cycle itself.
//
// fallbackStart is used when the project has no start date. Build is a pure
// function of its inputs: identical snapshots produce identical charts.
func Build(p *model.Project, tasks []model.Task, fallbackStart time.Time, cal calendar.Calendar) *Chart {
	g := graph.Build(tasks)
	order := g.TopoSort()

	projectStart := calendar.DateOf(p.Start(fallbackStart))

	chart := &Chart{ProjectID: p.ID}
	ends := make(map[string]time.Time, len(tasks))

	resolve := func(id string, depEnds []time.Time) {
		t := g.Tasks[id]
		start, end := Resolve(t, depEnds, projectStart, cal)
		ends[id] = end
		chart.Tasks = append(chart.Tasks, ScheduledTask{
			TaskID:       id,
			Title:        t.Title,
			Status:       t.Status,
			Priority:     t.Priority,
			Start:        start,
			End:          end,
			DurationDays: cal.WorkdaysBetween(start, end),
			Progress:     progressFor(t),
			Dependencies: append([]string(nil), g.RevAdj[id]...),
			Assignee:     t.AssigneeID,
		})
	}

	for _, id := range order.Sorted {
		var depEnds []time.Time
		for _, dep := range g.RevAdj[id] {
			if end, ok := ends[dep]; ok {
				depEnds = append(depEnds, end)
			}
		}
		resolve(id, depEnds)
	}

	// Cycle fallback: anchor at project start, ignore the unresolvable
	// dependencies.
	for _, id := range order.Cyclic {
		resolve(id, nil)
		chart.Unresolved = append(chart.Unresolved, id)
	}

	sort.SliceStable(chart.Tasks, func(i, j int) bool {
		if !chart.Tasks[i].Start.Equal(chart.Tasks[j].Start) {
			return chart.Tasks[i].Start.Before(chart.Tasks[j].Start)
		}
		return chart.Tasks[i].TaskID < chart.Tasks[j].TaskID
	})

	chart.Timeline = buildTimeline(chart.Tasks, cal)
	return chart
}

func buildTimeline(tasks []ScheduledTask, cal calendar.Calendar) Timeline {
	if len(tasks) == 0 {
		return Timeline{}
	}
	start := tasks[0].Start
	end := tasks[0].End
	for _, st := range tasks[1:] {
		if st.Start.Before(start) {
			start = st.Start
		}
		if st.End.After(end) {
			end = st.End
		}
	}
	workdays := cal.WorkdaysBetween(start, end)
	return Timeline{
		Start:        start,
		End:          end,
		CalendarDays: int(end.Sub(start).Hours()/24) + 1,
		Workdays:     workdays,
		Weeks:        round1(float64(workdays) / float64(cal.WorkdaysPerWeek)),
	}
}

// progressFor maps a task to a 0-100 completion percentage. In-progress
// tasks blend subtask completion (60%) with the actual/estimated hour ratio
// (40%), clamped to [10, 90]: started work is never 0%, and only review or
// done can claim more than 90%.
func progressFor(t *model.Task) int {
	switch t.Status {
	case model.StatusDone:
		return 100
	case model.StatusReview:
		return 90
	case model.StatusBlocked, model.StatusTodo:
		return 0
	case model.StatusInProgress:
		subRatio := 0.0
		if len(t.Subtasks) > 0 {
			done := 0
			for _, s := range t.Subtasks {
				if s.Status == model.StatusDone {
					done++
				}
			}
			subRatio = float64(done) / float64(len(t.Subtasks))
		}
		hourRatio := 0.0
		if t.HasEstimate() {
			hourRatio = t.ActualHours / t.EstimatedHours
			if hourRatio > 1 {
				hourRatio = 1
			}
		}
		p := int(math.Round(60*subRatio + 40*hourRatio))
		if p < 10 {
			p = 10
		}
		if p > 90 {
			p = 90
		}
		return p
	default:
		return 0
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
