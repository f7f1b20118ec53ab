// Package calendar provides workday date arithmetic. All date math in the
// scheduling engine goes through a Calendar so the workweek shape is defined
// in exactly one place.
package calendar

import (
	"math"
	"time"
)

// Default workweek shape.
const (
	DefaultWorkdaysPerWeek = 5
	DefaultHoursPerDay     = 8.0
)

// Calendar defines the working-time model used for every date calculation.
// The zero value is not usable; construct with Default or New.
type Calendar struct {
	WorkdaysPerWeek int
	HoursPerDay     float64
}

// Default returns the standard 5-day, 8-hour calendar.
func Default() Calendar {
	return Calendar{WorkdaysPerWeek: DefaultWorkdaysPerWeek, HoursPerDay: DefaultHoursPerDay}
}

// New returns a calendar with the given workweek shape, falling back to the
// defaults for non-positive values.
func New(workdaysPerWeek int, hoursPerDay float64) Calendar {
	c := Default()
	if workdaysPerWeek > 0 && workdaysPerWeek <= 7 {
		c.WorkdaysPerWeek = workdaysPerWeek
	}
	if hoursPerDay > 0 {
		c.HoursPerDay = hoursPerDay
	}
	return c
}

// IsWorkday reports whether d falls on a working weekday. Weeks start on
// Monday, so a 5-day calendar works Monday through Friday.
func (c Calendar) IsWorkday(d time.Time) bool {
	wd := int(d.Weekday())
	if wd == 0 {
		wd = 7 // Sunday last
	}
	return wd <= c.WorkdaysPerWeek
}

// AddWorkdays steps day-by-day in the sign of n, skipping non-workdays,
// until |n| workdays have been traversed. n == 0 returns d unchanged even
// when d itself is not a workday; this function never normalizes its input.
func (c Calendar) AddWorkdays(d time.Time, n int) time.Time {
	if n == 0 {
		return d
	}
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	for n > 0 {
		d = d.AddDate(0, 0, step)
		if c.IsWorkday(d) {
			n--
		}
	}
	return d
}

// WorkdaysBetween counts workdays in the inclusive range [start, end].
// It returns 0 when end precedes start.
func (c Calendar) WorkdaysBetween(start, end time.Time) int {
	start = DateOf(start)
	end = DateOf(end)
	if end.Before(start) {
		return 0
	}
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsWorkday(d) {
			count++
		}
	}
	return count
}

// HoursToDays converts an hour estimate to whole workdays, rounding up.
// Non-positive input yields 0.
func (c Calendar) HoursToDays(hours float64) int {
	if hours <= 0 {
		return 0
	}
	return int(math.Ceil(hours / c.HoursPerDay))
}

// DateOf truncates an instant to its calendar date (midnight, same
// location). Due dates arrive as timezone-aware instants; schedule math
// only cares about the day.
func DateOf(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}
