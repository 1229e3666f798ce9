package view

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/horario/internal/timetable"
)

// TimeColumnLabel heads the time column of the grid.
const TimeColumnLabel = "Time"

// HeaderLabels returns the grid column labels: the time column followed by
// one label per working day. Full day names are used when they fit in
// colWidth, short names otherwise.
func HeaderLabels(days []timetable.Weekday, colWidth int) []string {
	labels := make([]string, 0, len(days)+1)
	labels = append(labels, TimeColumnLabel)
	for _, d := range days {
		name := d.String()
		if lipgloss.Width(name) > colWidth {
			name = d.Short()
		}
		labels = append(labels, name)
	}
	return labels
}

// TitleState holds the parts of the title bar.
type TitleState struct {
	Width   int
	Section string
	Pending int
	Busy    string // e.g. "saving…", empty when idle
}

// RenderTitle renders the title bar: the section name on the left and the
// pending count (or the running job) on the right.
func RenderTitle(state TitleState, titleStyle, infoStyle lipgloss.Style) string {
	left := titleStyle.Render(" " + state.Section + " ")

	info := "saved"
	switch {
	case state.Busy != "":
		info = state.Busy
	case state.Pending == 1:
		info = "1 unsaved change"
	case state.Pending > 1:
		info = itoa(state.Pending) + " unsaved changes"
	}
	right := infoStyle.Render(info)

	gap := state.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + spaces(gap) + right
}
