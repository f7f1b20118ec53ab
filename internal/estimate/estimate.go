// Package estimate produces PERT-style three-point project duration
// estimates from per-task hour estimates.
package estimate

import (
	"math"

	"github.com/joshharrison/ganttloom/internal/calendar"
	"github.com/joshharrison/ganttloom/internal/model"
)

// Estimation constants. Raw values feed every intermediate computation;
// rounding to one decimal happens only when the result is assembled.
const (
	optimisticFactor  = 0.85
	pessimisticFactor = 1.3
	bufferPerDepTask  = 0.5 // workdays of coordination buffer per dependent task
)

// WorkingDays is the three-point estimate plus the PERT expected value, in
// workdays.
type WorkingDays struct {
	Optimistic  float64 `json:"optimistic"`
	Realistic   float64 `json:"realistic"`
	Pessimistic float64 `json:"pessimistic"`
	Expected    float64 `json:"expected"`
}

// Estimate is the project-level duration estimate.
type Estimate struct {
	TotalEstimatedHours  float64     `json:"total_estimated_hours"`
	WorkingDays          WorkingDays `json:"working_days"`
	CalendarDays         float64     `json:"calendar_days"`
	Weeks                float64     `json:"weeks"`
	DependencyBufferDays float64     `json:"dependency_buffer_days"`
	Degraded             bool        `json:"degraded,omitempty"` // no hour data; defaults were assumed
}

// Compute aggregates task hour estimates into a project estimate. With no
// hour data at all it assumes one workday per task and marks the result
// degraded instead of failing.
func Compute(tasks []model.Task, cal calendar.Calendar) Estimate {
	var totalHours float64
	withDeps := 0
	for i := range tasks {
		totalHours += tasks[i].EstimatedHours
		if len(tasks[i].DependsOn) > 0 {
			withDeps++
		}
	}

	degraded := false
	if totalHours == 0 {
		totalHours = float64(len(tasks)) * cal.HoursPerDay
		degraded = true
	}

	base := totalHours / cal.HoursPerDay
	buffer := bufferPerDepTask * float64(withDeps)

	optimistic := base * optimisticFactor
	realistic := base + buffer
	pessimistic := base*pessimisticFactor + buffer
	expected := (optimistic + 4*realistic + pessimistic) / 6

	perWeek := float64(cal.WorkdaysPerWeek)

	return Estimate{
		TotalEstimatedHours:  round1(totalHours),
		WorkingDays:          WorkingDays{Optimistic: round1(optimistic), Realistic: round1(realistic), Pessimistic: round1(pessimistic), Expected: round1(expected)},
		CalendarDays:         round1(expected / perWeek * 7),
		Weeks:                round1(expected / perWeek),
		DependencyBufferDays: round1(buffer),
		Degraded:             degraded,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
