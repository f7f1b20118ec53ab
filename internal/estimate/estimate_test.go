package estimate

import (
	"testing"

	"github.com/joshharrison/ganttloom/internal/calendar"
	"github.com/joshharrison/ganttloom/internal/model"
)

func TestCompute_KnownValues(t *testing.T) {
	// 24h total, base 3 days, one dependent task (0.5d buffer):
	// optimistic 2.55, realistic 3.5, pessimistic 4.4, expected 3.49...
	est := Compute([]model.Task{
		{ID: "t1", EstimatedHours: 16},
		{ID: "t2", EstimatedHours: 8, DependsOn: []string{"t1"}},
	}, calendar.Default())

	if est.TotalEstimatedHours != 24 {
		t.Errorf("total hours = %g, want 24", est.TotalEstimatedHours)
	}
	wd := est.WorkingDays
	if wd.Optimistic != 2.6 {
		t.Errorf("optimistic = %g, want 2.6", wd.Optimistic)
	}
	if wd.Realistic != 3.5 {
		t.Errorf("realistic = %g, want 3.5", wd.Realistic)
	}
	if wd.Pessimistic != 4.4 {
		t.Errorf("pessimistic = %g, want 4.4", wd.Pessimistic)
	}
	if wd.Expected != 3.5 {
		t.Errorf("expected = %g, want 3.5", wd.Expected)
	}
	if est.DependencyBufferDays != 0.5 {
		t.Errorf("buffer = %g, want 0.5", est.DependencyBufferDays)
	}
	if est.CalendarDays != 4.9 {
		t.Errorf("calendar days = %g, want 4.9", est.CalendarDays)
	}
	if est.Weeks != 0.7 {
		t.Errorf("weeks = %g, want 0.7", est.Weeks)
	}
	if est.Degraded {
		t.Error("estimate should not be degraded with hour data")
	}
}

func TestCompute_Ordering(t *testing.T) {
	tests := []struct {
		name  string
		tasks []model.Task
	}{
		{"no deps", []model.Task{{EstimatedHours: 40}, {EstimatedHours: 12}}},
		{"with deps", []model.Task{
			{ID: "a", EstimatedHours: 40},
			{ID: "b", EstimatedHours: 12, DependsOn: []string{"a"}},
			{ID: "c", EstimatedHours: 4, DependsOn: []string{"a", "b"}},
		}},
		{"degraded", []model.Task{{ID: "a"}, {ID: "b", DependsOn: []string{"a"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wd := Compute(tt.tasks, calendar.Default()).WorkingDays
			if wd.Optimistic > wd.Realistic {
				t.Errorf("optimistic %g > realistic %g", wd.Optimistic, wd.Realistic)
			}
			if wd.Realistic > wd.Pessimistic {
				t.Errorf("realistic %g > pessimistic %g", wd.Realistic, wd.Pessimistic)
			}
			if wd.Expected < wd.Optimistic || wd.Expected > wd.Pessimistic {
				t.Errorf("expected %g outside [%g, %g]", wd.Expected, wd.Optimistic, wd.Pessimistic)
			}
		})
	}
}

func TestCompute_DegradedFallback(t *testing.T) {
	// No hour data: assume one workday per task and flag it.
	est := Compute([]model.Task{{ID: "a"}, {ID: "b"}, {ID: "c"}}, calendar.Default())

	if !est.Degraded {
		t.Error("expected degraded flag with no hour data")
	}
	if est.TotalEstimatedHours != 24 {
		t.Errorf("assumed hours = %g, want 24 (8h per task)", est.TotalEstimatedHours)
	}
	if est.WorkingDays.Realistic != 3 {
		t.Errorf("realistic = %g, want 3", est.WorkingDays.Realistic)
	}
}

func TestCompute_Empty(t *testing.T) {
	est := Compute(nil, calendar.Default())

	if !est.Degraded {
		t.Error("expected degraded flag for empty task list")
	}
	if est.WorkingDays.Expected != 0 {
		t.Errorf("expected = %g, want 0", est.WorkingDays.Expected)
	}
}
