// Package schedule resolves concrete task dates under dependency
// constraints and assembles them into a Gantt chart.
package schedule

import (
	"math"
	"time"

	"github.com/joshharrison/ganttloom/internal/calendar"
	"github.com/joshharrison/ganttloom/internal/model"
)

// highPriorityBuffer is the padding applied to estimate-derived durations
// of high-priority tasks. Applied in DurationDays and nowhere else, so
// every caller sees the same duration for the same task.
const highPriorityBuffer = 1.2

// DurationDays returns the working duration of a task. With an hour
// estimate: ceil(hours / workday), then a further rounded-up 20% buffer for
// high priority. Without one: the priority default (high=5, medium=3,
// low=2).
func DurationDays(t *model.Task, cal calendar.Calendar) int {
	if t.HasEstimate() {
		days := cal.HoursToDays(t.EstimatedHours)
		if t.Priority == model.PriorityHigh {
			days = int(math.Ceil(float64(days) * highPriorityBuffer))
		}
		return days
	}
	return t.Priority.DefaultDurationDays()
}

// Resolve computes the (start, end) date pair for a single task.
//
// The start is the workday after the latest dependency finish, or the
// project start for a task with no dependencies; a start landing on a
// weekend advances to the next workday. The end is start plus duration. An
// explicit due date on or after the start overrides the computed end — an
// explicit commitment beats the estimate. A due date before the start is
// infeasible given the dependencies and is discarded here; the conflict
// detector reports it separately.
func Resolve(t *model.Task, depEnds []time.Time, projectStart time.Time, cal calendar.Calendar) (start, end time.Time) {
	if len(depEnds) > 0 {
		latest := depEnds[0]
		for _, d := range depEnds[1:] {
			if d.After(latest) {
				latest = d
			}
		}
		start = cal.AddWorkdays(calendar.DateOf(latest), 1)
	} else {
		start = calendar.DateOf(projectStart)
	}

	if !cal.IsWorkday(start) {
		start = cal.AddWorkdays(start, 1)
	}

	end = cal.AddWorkdays(start, DurationDays(t, cal)-1)

	if t.DueDate != nil {
		due := calendar.DateOf(*t.DueDate)
		if !due.Before(start) {
			end = due
		}
	}

	return start, end
}
