package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/joshharrison/ganttloom/internal/conflict"
	"github.com/joshharrison/ganttloom/internal/cpm"
	"github.com/joshharrison/ganttloom/internal/estimate"
	"github.com/joshharrison/ganttloom/internal/schedule"
	"github.com/joshharrison/ganttloom/internal/ui"
)

const dateFmt = "2006-01-02"

// ganttWidth is the bar column width in terminal output.
const ganttWidth = 40

// Reporter renders computed schedule results for the terminal and as JSON.
// Any section left nil is skipped.
type Reporter struct {
	Chart      *schedule.Chart
	CPM        *cpm.Result
	Conflicts  *conflict.Report
	Estimate   *estimate.Estimate
	Milestones *MilestoneReport
	Deadlines  *Alerts
	Narrative  string
}

// PrintSchedule writes the Gantt chart with per-task bars on the workday
// axis, marking critical-path tasks.
func (r *Reporter) PrintSchedule(w io.Writer) {
	if r.Chart == nil {
		return
	}
	tl := r.Chart.Timeline

	fmt.Fprintf(w, "%s %s\n", ui.BoldCyan("📅 Schedule"), ui.Dim(r.Chart.ProjectID))
	fmt.Fprintf(w, "%s %s → %s  %s\n\n",
		ui.Bold("Timeline:"),
		tl.Start.Format(dateFmt), tl.End.Format(dateFmt),
		ui.Dim(fmt.Sprintf("(%d workdays, %.1f weeks)", tl.Workdays, tl.Weeks)))

	span := tl.Workdays
	for _, st := range r.Chart.Tasks {
		critical := false
		if r.CPM != nil {
			if n, ok := r.CPM.Nodes[st.TaskID]; ok {
				critical = n.OnCritical
			}
		}

		// Proportional placement on the workday axis.
		offset, length := 0, ganttWidth
		if span > 0 {
			startDay := daysFromTimelineStart(r.Chart, st.TaskID)
			offset = startDay * ganttWidth / span
			length = st.DurationDays * ganttWidth / span
			if length < 1 {
				length = 1
			}
		}

		mark := " "
		if critical {
			mark = ui.BoldYellow("⚡")
		}
		title := st.Title
		if len(title) > 28 {
			title = title[:25] + "..."
		}
		fmt.Fprintf(w, "  %s %-10s %-28s %s|%s| %s → %s  %s\n",
			ui.StatusIcon(st.Status),
			ui.BoldMagenta(st.TaskID),
			title,
			mark,
			ui.GanttBar(offset, length, ganttWidth, critical),
			st.Start.Format(dateFmt), st.End.Format(dateFmt),
			ui.Dim(fmt.Sprintf("%3d%%", st.Progress)))
	}

	if len(r.Chart.Unresolved) > 0 {
		fmt.Fprintf(w, "\n  %s %s\n",
			ui.Red("⚠ unresolved (cycle fallback):"),
			strings.Join(r.Chart.Unresolved, ", "))
	}

	if r.CPM != nil && len(r.CPM.CriticalPath) > 0 {
		ids := make([]string, len(r.CPM.CriticalPath))
		for i, n := range r.CPM.CriticalPath {
			ids[i] = n.TaskID
		}
		m := r.CPM.Metrics
		fmt.Fprintf(w, "\n%s %s\n", ui.BoldYellow("⚡ Critical path:"), strings.Join(ids, " → "))
		fmt.Fprintf(w, "  %s\n", ui.Dim(fmt.Sprintf("%d tasks, %d workdays, %s → %s",
			m.Length, m.DurationDays, m.Start.Format(dateFmt), m.End.Format(dateFmt))))
	}

	if r.Narrative != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", ui.BoldCyan("💬 Narrative"), r.Narrative)
	}
}

// PrintConflicts writes the conflict report.
func (r *Reporter) PrintConflicts(w io.Writer) {
	if r.Conflicts == nil {
		return
	}
	s := r.Conflicts.Summary
	if s.Total == 0 {
		fmt.Fprintf(w, "%s no conflicts detected\n", ui.BoldGreen("✓"))
		return
	}
	fmt.Fprintf(w, "%s %d conflicts (%s, %s)\n",
		ui.BoldRed("⚠"), s.Total,
		ui.Red(fmt.Sprintf("%d high", s.High)),
		ui.Yellow(fmt.Sprintf("%d medium", s.Medium)))
	for _, c := range r.Conflicts.Conflicts {
		fmt.Fprintf(w, "  %s %-26s %s\n", ui.SeverityBadge(string(c.Severity)), c.Type, c.Description)
	}
}

// PrintEstimate writes the duration estimate block.
func (r *Reporter) PrintEstimate(w io.Writer) {
	if r.Estimate == nil {
		return
	}
	e := r.Estimate
	fmt.Fprintf(w, "%s\n", ui.BoldCyan("⏱  Duration estimate"))
	fmt.Fprintf(w, "  Hours:       %.1f", e.TotalEstimatedHours)
	if e.Degraded {
		fmt.Fprintf(w, " %s", ui.Yellow("(assumed, no estimates)"))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Workdays:    %s / %s / %s  %s\n",
		ui.Green(fmt.Sprintf("%.1f", e.WorkingDays.Optimistic)),
		ui.Bold(fmt.Sprintf("%.1f", e.WorkingDays.Realistic)),
		ui.Red(fmt.Sprintf("%.1f", e.WorkingDays.Pessimistic)),
		ui.Dim("(optimistic/realistic/pessimistic)"))
	fmt.Fprintf(w, "  Expected:    %s %s\n", ui.Bold(fmt.Sprintf("%.1f", e.WorkingDays.Expected)), ui.Dim("(PERT)"))
	fmt.Fprintf(w, "  Calendar:    %.1f days (%.1f weeks)\n", e.CalendarDays, e.Weeks)
	fmt.Fprintf(w, "  Dep. buffer: %.1f days\n", e.DependencyBufferDays)
}

// PrintMilestones writes the milestone report.
func (r *Reporter) PrintMilestones(w io.Writer) {
	if r.Milestones == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ui.BoldCyan("🏁 Milestones"), ui.Dim(r.Milestones.Summary))
	for _, m := range r.Milestones.Milestones {
		due := ""
		if m.DueDate != nil {
			due = ui.Dim("due " + m.DueDate.Format(dateFmt))
		}
		fmt.Fprintf(w, "  %s %-10s %-30s %s %s\n",
			ui.PriorityBadge(m.Priority), ui.BoldMagenta(m.TaskID), m.Title, ui.Dim(m.Reason), due)
	}
}

// PrintDeadlines writes the deadline alerts.
func (r *Reporter) PrintDeadlines(w io.Writer) {
	if r.Deadlines == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ui.BoldCyan("⏰ Deadlines"), ui.Dim(r.Deadlines.Summary))
	for _, a := range r.Deadlines.Alerts {
		when := fmt.Sprintf("in %d days", a.DaysRemaining)
		if a.Overdue {
			when = ui.Red(fmt.Sprintf("%d days overdue", -a.DaysRemaining))
		}
		fmt.Fprintf(w, "  %-8s %-10s %-30s due %s (%s)\n",
			ui.UrgencyBadge(a.Urgency), ui.BoldMagenta(a.TaskID), a.Title, a.DueDate.Format(dateFmt), when)
	}
}

// PrintAll writes every populated section.
func (r *Reporter) PrintAll(w io.Writer) {
	r.PrintSchedule(w)
	fmt.Fprintln(w)
	r.PrintConflicts(w)
	fmt.Fprintln(w)
	r.PrintEstimate(w)
	fmt.Fprintln(w)
	r.PrintMilestones(w)
	fmt.Fprintln(w)
	r.PrintDeadlines(w)
}

// JSON returns the machine-readable report with every populated section.
func (r *Reporter) JSON() ([]byte, error) {
	out := struct {
		Chart      *schedule.Chart  `json:"gantt,omitempty"`
		CPM        *cpm.Result      `json:"cpm,omitempty"`
		Conflicts  *conflict.Report `json:"conflict_report,omitempty"`
		Estimate   *estimate.Estimate `json:"duration_estimate,omitempty"`
		Milestones *MilestoneReport `json:"milestone_report,omitempty"`
		Deadlines  *Alerts          `json:"deadline_alerts,omitempty"`
		Narrative  string           `json:"narrative,omitempty"`
	}{r.Chart, r.CPM, r.Conflicts, r.Estimate, r.Milestones, r.Deadlines, r.Narrative}
	return json.MarshalIndent(out, "", "  ")
}

// daysFromTimelineStart returns the calendar-day offset of a task from the
// chart timeline start. Good enough for proportional bar placement.
func daysFromTimelineStart(c *schedule.Chart, taskID string) int {
	st := c.Task(taskID)
	if st == nil {
		return 0
	}
	d := c.Timeline.Start
	days := 0
	for d.Before(st.Start) {
		d = d.AddDate(0, 0, 1)
		days++
	}
	return days
}
