package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/horario/internal/llm"
	"github.com/javiermolinar/horario/internal/scheduler"
	"github.com/javiermolinar/horario/internal/session"
	"github.com/javiermolinar/horario/internal/summary"
	"github.com/javiermolinar/horario/internal/timetable"
)

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	return llm.FormatDuration(minutes)
}

// pad right-pads s to width display columns, truncating when longer.
func pad(s string, width int) string {
	if w := ansi.StringWidth(s); w > width {
		s = ansi.Truncate(s, width, "…")
	}
	return s + strings.Repeat(" ", max(0, width-ansi.StringWidth(s)))
}

// LoadBar draws scheduled against target minutes. Minutes past the target
// are drawn in the warning color.
func LoadBar(scheduled, target, width int) string {
	if target <= 0 {
		return "[" + strings.Repeat("·", width) + "]"
	}
	filled := min(width, scheduled*width/target)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case scheduled > target:
		return "[" + formatWarn(bar) + "]"
	case scheduled == target:
		return "[" + formatOK(bar) + "]"
	default:
		return "[" + formatClass(bar) + "]"
	}
}

func statusLabel(st summary.Status) string {
	switch st {
	case summary.StatusShort:
		return formatWarn("short")
	case summary.StatusOver:
		return formatWarn("over")
	case summary.StatusMet:
		return formatOK("met")
	default:
		return formatMuted("-")
	}
}

// gridOptions controls grid rendering.
type gridOptions struct {
	CellWidth int // 0 picks a width from the terminal
	Plain     bool
}

// renderGrid draws the section's week with the time axis down the left and
// one column per working day.
func renderGrid(s *session.Session, opts gridOptions) string {
	sched := s.Scheduler()
	days := sched.Config().WorkingDays
	rows := scheduler.BuildAxis(sched.Week())
	idx := s.Index()

	const timeWidth = 11
	width := opts.CellWidth
	if width <= 0 {
		width = max(10, min(22, (termWidth()-timeWidth)/max(1, len(days))-1))
	}
	style := func(f func(string) string, text string) string {
		if opts.Plain {
			return text
		}
		return f(text)
	}

	var sb strings.Builder
	sb.WriteString(pad("", timeWidth))
	for _, d := range days {
		sb.WriteString(" " + style(formatHeader, pad(d.String(), width)))
	}
	sb.WriteString("\n")

	for _, row := range rows {
		sb.WriteString(pad(row.Start+"-"+row.End, timeWidth))
		if row.IsBreak() {
			label := row.Label()
			if label == "" {
				label = "break"
			}
			band := pad("── "+label+" ", len(days)*(width+1)-1)
			sb.WriteString(" " + style(formatBreak, band) + "\n")
			continue
		}
		for _, d := range days {
			sb.WriteString(" ")
			slot, ok := row.Cell(d)
			switch {
			case !ok:
				sb.WriteString(style(formatMuted, pad("", width)))
			case slot.IsBreak:
				sb.WriteString(style(formatBreak, pad(slot.Label, width)))
			default:
				sb.WriteString(cellText(s, idx.CellsFor(d, slot), width, style))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func cellText(s *session.Session, cells []timetable.Schedule, width int, style func(func(string) string, string) string) string {
	if len(cells) == 0 {
		return style(formatMuted, pad("·", width))
	}
	names := make([]string, 0, len(cells))
	pending := false
	for _, c := range cells {
		name := fmt.Sprintf("#%d", c.CourseAssignmentID)
		if a, ok := s.Assignment(c.CourseAssignmentID); ok {
			name = a.Label()
		}
		if c.IsPending {
			pending = true
			name += "*"
		}
		names = append(names, name)
	}
	text := pad(strings.Join(names, "/"), width)
	if pending {
		return style(formatPending, text)
	}
	return style(formatClass, text)
}

// printLoad writes the per-assignment and per-teacher tables of a summary.
func printLoad(w io.Writer, sum *summary.Summary) {
	fmt.Fprintln(w, formatHeader("Courses"))
	if len(sum.Assignments) == 0 {
		fmt.Fprintln(w, formatMuted("  no course assignments"))
	}
	for _, l := range sum.Assignments {
		fmt.Fprintf(w, "  %s %s %s %s/%s %s\n",
			pad(fmt.Sprintf("%d", l.Assignment.ID), 4),
			pad(l.Assignment.CourseName, 18),
			pad(l.Assignment.TeacherName, 16),
			FormatDuration(l.Scheduled), FormatDuration(l.Target()),
			statusLabel(l.Status()))
		if l.Target() > 0 {
			fmt.Fprintf(w, "       %s\n", LoadBar(l.Scheduled, l.Target(), 24))
		}
	}

	if len(sum.Teachers) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, formatHeader("Teachers"))
		for _, t := range sum.Teachers {
			fmt.Fprintf(w, "  %s %d course(s)  %s/%s\n",
				pad(t.Name, 22), t.Courses, FormatDuration(t.Scheduled), FormatDuration(t.Target))
		}
	}

	scheduled, target := sum.Totals()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Scheduled %s of %s  |  Free class slots: %d\n",
		FormatDuration(scheduled), FormatDuration(target), len(sum.Free))

	if len(sum.Orphans) > 0 {
		fmt.Fprintf(w, "%s\n", formatWarn(fmt.Sprintf("%d schedule(s) reference assignments outside this section", len(sum.Orphans))))
	}
	for _, issue := range sum.Issues {
		fmt.Fprintf(w, "%s\n", formatWarn(fmt.Sprintf("! %d schedules share %s %s",
			len(issue.Schedules), issue.Key.Day, issue.Key.Start)))
	}
}

// printInsight writes LLM text, wrapped to width and without code fences.
func printInsight(w io.Writer, text string, width int) {
	text = stripMarkdownCodeBlocks(text)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			fmt.Fprintln(w)
			continue
		}

		prefix, content, contentWidth, isHeader := parseInsightLine(trimmed, width)
		if isHeader {
			fmt.Fprintln(w)
			fmt.Fprintln(w, formatHeader("  "+content))
			continue
		}
		wrapAndPrint(w, content, prefix, contentWidth)
	}
}

// parseInsightLine returns the prefix, content and wrap width of a line.
func parseInsightLine(trimmed string, width int) (prefix, content string, contentWidth int, isHeader bool) {
	prefix = "  "
	content = trimmed
	contentWidth = width - 2

	switch {
	case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
		prefix = "    • "
		content = strings.TrimPrefix(strings.TrimPrefix(trimmed, "- "), "* ")
		contentWidth = width - 6

	case strings.HasPrefix(trimmed, "#"):
		content = strings.TrimLeft(trimmed, "# ")
		isHeader = true

	case isNumberedItem(trimmed):
		idx := strings.Index(trimmed, ".")
		prefix = "  " + trimmed[:idx+1] + " "
		content = strings.TrimSpace(trimmed[idx+1:])
		contentWidth = width - len(prefix)
	}

	return prefix, content, contentWidth, isHeader
}

// isNumberedItem checks if a line starts with a number followed by a period.
func isNumberedItem(s string) bool {
	if len(s) < 3 {
		return false
	}
	if s[0] < '1' || s[0] > '9' {
		return false
	}
	if s[1] == '.' {
		return true
	}
	return s[1] >= '0' && s[1] <= '9' && len(s) > 3 && s[2] == '.'
}

func wrapAndPrint(w io.Writer, text, prefix string, width int) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return
	}

	line := ""
	current := prefix
	for _, word := range words {
		switch {
		case line == "":
			line = word
		case ansi.StringWidth(line)+1+ansi.StringWidth(word) <= width:
			line += " " + word
		default:
			fmt.Fprintln(w, formatInsight(current+line))
			current = strings.Repeat(" ", ansi.StringWidth(prefix))
			line = word
		}
	}
	fmt.Fprintln(w, formatInsight(current+line))
}

// stripMarkdownCodeBlocks removes ``` fence lines, keeping their content.
func stripMarkdownCodeBlocks(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func colored(f func(string) string, text string) string {
	return f(text)
}
