package cpm

import (
	"testing"
	"time"

	"github.com/joshharrison/ganttloom/internal/calendar"
	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/model"
	"github.com/joshharrison/ganttloom/internal/schedule"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func analyze(t *testing.T, tasks []model.Task) (*schedule.Chart, *Result) {
	t.Helper()
	cal := calendar.Default()
	start := date(2024, time.January, 1)
	p := &model.Project{ID: "p1", Name: "Test", StartDate: &start}
	chart := schedule.Build(p, tasks, start, cal)
	g := graph.Build(tasks)
	return chart, Analyze(chart, g, cal)
}

func assertWindow(t *testing.T, n *Node, es, ef, ls, lf time.Time, totalFloat int) {
	t.Helper()
	if !n.EarlyStart.Equal(es) {
		t.Errorf("task %s: ES = %s, want %s", n.TaskID, n.EarlyStart.Format("2006-01-02"), es.Format("2006-01-02"))
	}
	if !n.EarlyFinish.Equal(ef) {
		t.Errorf("task %s: EF = %s, want %s", n.TaskID, n.EarlyFinish.Format("2006-01-02"), ef.Format("2006-01-02"))
	}
	if !n.LateStart.Equal(ls) {
		t.Errorf("task %s: LS = %s, want %s", n.TaskID, n.LateStart.Format("2006-01-02"), ls.Format("2006-01-02"))
	}
	if !n.LateFinish.Equal(lf) {
		t.Errorf("task %s: LF = %s, want %s", n.TaskID, n.LateFinish.Format("2006-01-02"), lf.Format("2006-01-02"))
	}
	if n.TotalFloat != totalFloat {
		t.Errorf("task %s: total float = %d, want %d", n.TaskID, n.TotalFloat, totalFloat)
	}
}

// The worked example: T1 (16h medium) then T2 (8h high) from Monday
// 2024-01-01. T2 ends the chain, so its float is zero.
func TestAnalyze_TwoTaskChain(t *testing.T) {
	_, result := analyze(t, []model.Task{
		{ID: "t1", EstimatedHours: 16, Priority: model.PriorityMedium},
		{ID: "t2", EstimatedHours: 8, Priority: model.PriorityHigh, DependsOn: []string{"t1"}},
	})

	assertWindow(t, result.Nodes["t1"],
		date(2024, time.January, 1), date(2024, time.January, 2),
		date(2024, time.January, 1), date(2024, time.January, 2), 0)
	assertWindow(t, result.Nodes["t2"],
		date(2024, time.January, 3), date(2024, time.January, 4),
		date(2024, time.January, 3), date(2024, time.January, 4), 0)

	if !result.ProjectEnd.Equal(date(2024, time.January, 4)) {
		t.Errorf("project end = %s, want 2024-01-04", result.ProjectEnd.Format("2006-01-02"))
	}
	if len(result.CriticalPath) != 2 {
		t.Fatalf("expected both tasks critical, got %d", len(result.CriticalPath))
	}
	if result.Metrics.DurationDays != 4 {
		t.Errorf("critical path duration = %d, want 4", result.Metrics.DurationDays)
	}
}

func TestAnalyze_DiamondSlack(t *testing.T) {
	// a(1d) -> b(1d) -> d(1d)
	// a(1d) -> c(3d) -> d(1d)
	_, result := analyze(t, []model.Task{
		{ID: "a", EstimatedHours: 8, Priority: model.PriorityMedium},
		{ID: "b", EstimatedHours: 8, Priority: model.PriorityMedium, DependsOn: []string{"a"}},
		{ID: "c", EstimatedHours: 24, Priority: model.PriorityMedium, DependsOn: []string{"a"}},
		{ID: "d", EstimatedHours: 8, Priority: model.PriorityMedium, DependsOn: []string{"b", "c"}},
	})

	// b can slip two workdays without moving d.
	b := result.Nodes["b"]
	if b.TotalFloat != 2 {
		t.Errorf("b total float = %d, want 2", b.TotalFloat)
	}
	if b.FreeFloat != 2 {
		t.Errorf("b free float = %d, want 2", b.FreeFloat)
	}
	if b.OnCritical {
		t.Error("b should not be critical")
	}

	for _, id := range []string{"a", "c", "d"} {
		n := result.Nodes[id]
		if n.TotalFloat != 0 {
			t.Errorf("%s total float = %d, want 0", id, n.TotalFloat)
		}
		if !n.OnCritical {
			t.Errorf("%s should be critical", id)
		}
	}

	// Critical path ordered by early start: a, c, d.
	want := []string{"a", "c", "d"}
	if len(result.CriticalPath) != len(want) {
		t.Fatalf("critical path length = %d, want %d", len(result.CriticalPath), len(want))
	}
	for i, n := range result.CriticalPath {
		if n.TaskID != want[i] {
			t.Errorf("critical path[%d] = %s, want %s", i, n.TaskID, want[i])
		}
	}
}

func TestAnalyze_FloatNeverNegative(t *testing.T) {
	_, result := analyze(t, []model.Task{
		{ID: "a", Priority: model.PriorityHigh},
		{ID: "b", Priority: model.PriorityLow, DependsOn: []string{"a"}},
		{ID: "c", Priority: model.PriorityMedium},
		{ID: "d", EstimatedHours: 60, Priority: model.PriorityHigh, DependsOn: []string{"a", "c"}},
		{ID: "e", Priority: model.PriorityLow, DependsOn: []string{"d"}},
	})

	for id, n := range result.Nodes {
		if n.TotalFloat < 0 {
			t.Errorf("task %s: negative total float %d", id, n.TotalFloat)
		}
		if n.FreeFloat < 0 {
			t.Errorf("task %s: negative free float %d", id, n.FreeFloat)
		}
		if n.FreeFloat > n.TotalFloat {
			t.Errorf("task %s: free float %d exceeds total float %d", id, n.FreeFloat, n.TotalFloat)
		}
	}
}

func TestAnalyze_SlackRecordedForEveryTask(t *testing.T) {
	chart, result := analyze(t, []model.Task{
		{ID: "a", Priority: model.PriorityMedium},
		{ID: "b", Priority: model.PriorityMedium, DependsOn: []string{"a"}},
		{ID: "c", Priority: model.PriorityLow},
	})

	if len(result.Slack) != len(chart.Tasks) {
		t.Fatalf("slack map has %d entries, want %d", len(result.Slack), len(chart.Tasks))
	}
	for _, st := range chart.Tasks {
		if _, ok := result.Slack[st.TaskID]; !ok {
			t.Errorf("task %s missing from slack map", st.TaskID)
		}
	}
}

func TestAnalyze_CyclicTasksIsolated(t *testing.T) {
	_, result := analyze(t, []model.Task{
		{ID: "a", EstimatedHours: 8, Priority: model.PriorityMedium},
		{ID: "x", Priority: model.PriorityMedium, DependsOn: []string{"y"}},
		{ID: "y", Priority: model.PriorityMedium, DependsOn: []string{"x"}},
	})

	// Cycle members still get windows and float, anchored at project start.
	for _, id := range []string{"x", "y"} {
		n := result.Nodes[id]
		if n == nil {
			t.Fatalf("cyclic task %s missing from result", id)
		}
		if !n.EarlyStart.Equal(date(2024, time.January, 1)) {
			t.Errorf("cyclic task %s ES = %s, want project start", id, n.EarlyStart.Format("2006-01-02"))
		}
		if n.TotalFloat < 0 {
			t.Errorf("cyclic task %s: negative float", id)
		}
	}
}

// The critical path spans exactly the workdays between its earliest early
// start and latest late finish.
func TestAnalyze_CriticalPathDurationIdentity(t *testing.T) {
	_, result := analyze(t, []model.Task{
		{ID: "a", EstimatedHours: 16, Priority: model.PriorityMedium},
		{ID: "b", EstimatedHours: 24, Priority: model.PriorityMedium, DependsOn: []string{"a"}},
		{ID: "c", EstimatedHours: 8, Priority: model.PriorityMedium, DependsOn: []string{"b"}},
	})

	cal := calendar.Default()
	path := result.CriticalPath
	if len(path) == 0 {
		t.Fatal("expected a critical path")
	}
	minES := path[0].EarlyStart
	maxLF := path[0].LateFinish
	for _, n := range path[1:] {
		if n.EarlyStart.Before(minES) {
			minES = n.EarlyStart
		}
		if n.LateFinish.After(maxLF) {
			maxLF = n.LateFinish
		}
	}
	if got := cal.WorkdaysBetween(minES, maxLF); got != result.Metrics.DurationDays {
		t.Errorf("metrics duration = %d, span = %d", result.Metrics.DurationDays, got)
	}
}
