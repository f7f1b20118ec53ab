// Package ui holds the terminal color palette and schedule display helpers.
package ui

import (
	"strings"

	"github.com/fatih/color"

	"github.com/joshharrison/ganttloom/internal/model"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// StatusIcon returns a colored icon for a task status.
func StatusIcon(s model.Status) string {
	switch s {
	case model.StatusDone:
		return Green("✓")
	case model.StatusInProgress:
		return Cyan("▶")
	case model.StatusReview:
		return Yellow("◆")
	case model.StatusBlocked:
		return Red("✗")
	default:
		return Dim("○")
	}
}

// PriorityBadge returns a colored priority marker.
func PriorityBadge(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return BoldRed("HIGH")
	case model.PriorityLow:
		return Dim("low ")
	default:
		return Yellow("med ")
	}
}

// UrgencyBadge returns a colored deadline urgency marker.
func UrgencyBadge(urgency string) string {
	switch urgency {
	case "critical":
		return BoldRed("CRITICAL")
	case "high":
		return Red("high")
	case "medium":
		return Yellow("medium")
	default:
		return Dim("low")
	}
}

// SeverityBadge returns a colored conflict severity marker.
func SeverityBadge(severity string) string {
	if severity == "high" {
		return BoldRed("high")
	}
	return Yellow("medium")
}

// GanttBar renders a proportional bar for a task spanning [offset,
// offset+length) on a timeline width cells wide. Critical tasks render
// solid, others hollow.
func GanttBar(offset, length, width int, critical bool) string {
	if width <= 0 || length <= 0 {
		return ""
	}
	if offset < 0 {
		offset = 0
	}
	if offset+length > width {
		length = width - offset
	}
	fill := "░"
	if critical {
		fill = "█"
	}
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", offset))
	b.WriteString(strings.Repeat(fill, length))
	b.WriteString(strings.Repeat(" ", width-offset-length))
	if critical {
		return BoldYellow(b.String())
	}
	return Cyan(b.String())
}
