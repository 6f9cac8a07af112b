// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskflow/internal/service"
	"taskflow/internal/tasks"
)

// TranslateFunc resolves a localization key.
type TranslateFunc func(key string, vars map[string]string) string

const (
	// Untitled replaces empty titles.
	Untitled = "(untitled)"

	maxTitleWidth = 48
	detailLayout  = "2006-01-02 15:04"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))

	statusStyles = map[service.Status]lipgloss.Style{
		service.StatusTodo:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		service.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		service.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	}

	priorityStyles = map[service.Priority]lipgloss.Style{
		service.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		service.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		service.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
)

// TaskTable writes one row per task under a header. Overdue due dates are
// marked with a trailing "!".
func TaskTable(w io.Writer, list []service.Task, today service.Date) {
	const pad = 2
	idW, statusW, prioW, dueW, titleW := 2+pad, 6+pad, 8+pad, 3+pad, 5+pad
	for _, t := range list {
		idW = max(idW, len(t.ID)+pad)
		statusW = max(statusW, len(t.Status)+pad)
		prioW = max(prioW, len(t.Priority)+pad)
		dueW = max(dueW, len(dueText(t, today))+pad)
		titleW = max(titleW, min(lipgloss.Width(displayTitle(t.Title))+pad, maxTitleWidth+pad))
	}

	header := fmt.Sprintf("%-*s%-*s%-*s%-*s%-*s%s",
		idW, "ID", statusW, "STATUS", prioW, "PRIORITY", dueW, "DUE", titleW, "TITLE", "TAGS")
	fmt.Fprintln(w, headerStyle.Render(header))

	for _, t := range list {
		due := dueText(t, today)
		switch {
		case due == "--":
			due = dimStyle.Render(due)
		case isOverdue(t, today):
			due = overdueStyle.Render(due)
		}

		row := padRight(t.ID, idW) +
			padRight(styleStatus(t.Status), statusW) +
			padRight(stylePriority(t.Priority), prioW) +
			padRight(due, dueW) +
			padRight(truncate(displayTitle(t.Title), maxTitleWidth), titleW) +
			formatTags(t.Tags)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail writes every field of a task. The description is written as
// given; render it first with Markdown when the output is a terminal.
func TaskDetail(w io.Writer, t service.Task, description string, tr TranslateFunc) {
	fmt.Fprintln(w, titleStyle.Render(displayTitle(t.Title)))

	printField(w, "ID", t.ID)
	printField(w, tr("fields.status", nil), styleStatus(t.Status)+" "+dimStyle.Render("("+tr("status."+string(t.Status), nil)+")"))
	printField(w, tr("fields.priority", nil), stylePriority(t.Priority))
	if t.DueDate.IsZero() {
		printField(w, tr("fields.dueDate", nil), dimStyle.Render("--"))
	} else {
		printField(w, tr("fields.dueDate", nil), t.DueDate.String())
	}
	if !t.CreatedAt.IsZero() {
		printField(w, tr("fields.createdAt", nil), t.CreatedAt.Local().Format(detailLayout))
	}
	if len(t.Tags) > 0 {
		printField(w, tr("fields.tags", nil), tagStyle.Render(strings.Join(t.Tags, ", ")))
	}

	if description = strings.TrimRight(description, "\n"); description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, description)
	}
}

// StatsSummary writes the dashboard counters.
func StatsSummary(w io.Writer, s tasks.Stats, tr TranslateFunc) {
	rows := []struct {
		label string
		n     int
	}{
		{tr("tasks.total", nil), s.Total},
		{tr("status.TODO", nil), s.Todo},
		{tr("status.IN_PROGRESS", nil), s.InProgress},
		{tr("status.COMPLETED", nil), s.Completed},
		{tr("tasks.overdue", nil), s.Overdue},
	}
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.label)+1)
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s %d\n", padRight(r.label+":", width), r.n)
	}
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s %s\n", padRight(label+":", 12), value)
}

func dueText(t service.Task, today service.Date) string {
	if t.DueDate.IsZero() {
		return "--"
	}
	if isOverdue(t, today) {
		return t.DueDate.String() + "!"
	}
	return t.DueDate.String()
}

func isOverdue(t service.Task, today service.Date) bool {
	return !t.DueDate.IsZero() && t.DueDate.Before(today) && t.Status != service.StatusCompleted
}

func styleStatus(s service.Status) string {
	if st, ok := statusStyles[s]; ok {
		return st.Render(string(s))
	}
	return string(s)
}

func stylePriority(p service.Priority) string {
	if st, ok := priorityStyles[p]; ok {
		return st.Render(string(p))
	}
	return string(p)
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = "#" + tag
	}
	return tagStyle.Render(strings.Join(out, " "))
}

// displayTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func displayTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return Untitled
	}
	return title
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
