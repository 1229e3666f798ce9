package tui

import (
	"fmt"
	"strings"

	"github.com/javiermolinar/horario/internal/llm"
	"github.com/javiermolinar/horario/internal/summary"
	"github.com/javiermolinar/horario/internal/tui/view"
)

const modalWidth = 44

// renderModal renders the current modal, or the class list in ModePick.
func (m Model) renderModal() string {
	styles := m.styles.Modal
	if m.mode == ModePick {
		return m.renderPickModal()
	}

	switch m.modalType {
	case ModalHelp:
		return view.RenderModalFrame("Keys", m.helpBody(), "esc close", styles)
	case ModalSummary:
		return view.RenderModalFrame("Weekly load", m.summaryBody(), "y copy · esc close", styles)
	case ModalFillResult:
		return view.RenderModalFrame("Autofill", m.fillBody(),
			view.RenderModalButtons(styles, "[enter] Keep", "[s] Keep and save", "[r] Reject"), styles)
	case ModalConfirmQuit:
		n := m.session.Counts().Total
		body := styles.ModalBodyStyle.Render(fmt.Sprintf("%d unsaved change(s) will be lost.", n))
		return view.RenderModalFrame("Quit without saving?", body,
			view.RenderModalButtons(styles, "[n] Stay", "[y] Quit"), styles)
	case ModalConfirmDiscard:
		n := m.session.Counts().Total
		body := styles.ModalBodyStyle.Render(fmt.Sprintf("Drop %d unsaved change(s)? This cannot be undone.", n))
		return view.RenderModalFrame("Discard changes?", body,
			view.RenderModalButtons(styles, "[n] Keep", "[y] Discard"), styles)
	default:
		return ""
	}
}

func (m Model) renderPickModal() string {
	items := make([]view.ListItem, 0, len(m.summary.Assignments))
	for _, l := range m.summary.Assignments {
		label := l.Assignment.CourseName
		if l.Assignment.TeacherName != "" {
			label += " · " + l.Assignment.TeacherName
		}
		items = append(items, view.ListItem{Label: label, Detail: loadDetail(l)})
	}
	title := "Place"
	if day, slot, err := m.cursorSlot(); err == nil {
		title = fmt.Sprintf("Place on %s %s", day, slot)
	}
	rows := max(3, min(10, m.height/2))
	body := view.RenderModalList(items, m.pick, rows, modalWidth, m.styles.Modal)
	return view.RenderModalFrame(title, body, "enter place · esc cancel", m.styles.Modal)
}

// loadDetail is the short load annotation of an assignment.
func loadDetail(l summary.AssignmentLoad) string {
	switch l.Status() {
	case summary.StatusUntracked:
		return llm.FormatDuration(l.Scheduled) + " placed"
	case summary.StatusShort:
		return llm.FormatDuration(l.Missing()) + " left"
	case summary.StatusOver:
		return llm.FormatDuration(l.Scheduled-l.Target()) + " over"
	default:
		return "done"
	}
}

func (m Model) helpBody() string {
	s := m.styles.Modal
	entries := []keyHelp{
		{"h j k l / arrows", "move the cursor"},
		{"g / G", "first / last period"},
		{"p, enter", "place a class in the slot"},
		{"m, enter", "move the class in the slot"},
		{"d, x", "remove the class in the slot"},
		{"u", "undo the last edit"},
		{"s", "save changes"},
		{"D", "discard unsaved changes"},
		{"a", "autofill with the LLM"},
		{"i", "weekly load summary"},
		{"y", "copy the timetable"},
		{"q", "quit"},
	}
	lines := make([]string, 0, len(entries)+2)
	for _, e := range entries {
		lines = append(lines, s.ModalSelectedStyle.Render(fmt.Sprintf("%-17s", e.key))+s.ModalBodyStyle.Render(" "+e.desc))
	}
	lines = append(lines, "", s.ModalMutedStyle.Render("Cells marked * are not saved yet."))
	return strings.Join(lines, "\n")
}

func (m Model) summaryBody() string {
	s := m.styles.Modal
	sum := m.summary
	if sum == nil {
		return ""
	}
	var lines []string
	if len(sum.Assignments) == 0 {
		lines = append(lines, s.ModalMutedStyle.Render("No courses assigned."))
	}
	for _, l := range sum.Assignments {
		name := view.Truncate(l.Assignment.CourseName, 18)
		load := llm.FormatDuration(l.Scheduled)
		if l.Target() > 0 {
			load += "/" + llm.FormatDuration(l.Target())
		}
		line := fmt.Sprintf("%-18s %-10s %s", name, load, l.Status())
		if l.Status() == summary.StatusShort || l.Status() == summary.StatusOver {
			lines = append(lines, s.ModalBodyStyle.Render(line))
			continue
		}
		lines = append(lines, s.ModalMutedStyle.Render(line))
	}

	scheduled, target := sum.Totals()
	lines = append(lines, "",
		s.ModalBodyStyle.Render(fmt.Sprintf("Total %s of %s · %d free slot(s)",
			llm.FormatDuration(scheduled), llm.FormatDuration(target), len(sum.Free))))
	for _, issue := range sum.Issues {
		lines = append(lines, s.ModalBodyStyle.Render(fmt.Sprintf("! %d classes share %s %s",
			len(issue.Schedules), issue.Key.Day, issue.Key.Start)))
	}
	if len(sum.Orphans) > 0 {
		lines = append(lines, s.ModalMutedStyle.Render(fmt.Sprintf("%d placement(s) of removed courses", len(sum.Orphans))))
	}
	return strings.Join(lines, "\n")
}

func (m Model) fillBody() string {
	s := m.styles.Modal
	r := m.fillResult
	if r == nil {
		return ""
	}
	lines := []string{s.ModalBodyStyle.Render(fmt.Sprintf("%d class(es) proposed in %d attempt(s):", len(r.Accepted), r.Attempts))}
	for _, p := range r.Accepted {
		lines = append(lines, s.ModalBodyStyle.Render(fmt.Sprintf("  + %s  %s %s", p.Course, p.Schedule.DayOfWeek.Short(), p.Schedule.Slot())))
	}
	if len(r.Rejected) > 0 {
		lines = append(lines, "", s.ModalMutedStyle.Render("Could not place:"))
		for _, rej := range r.Rejected {
			for _, l := range view.WrapText(rej.String(), modalWidth) {
				lines = append(lines, s.ModalMutedStyle.Render("  "+l))
			}
		}
	}
	for _, w := range r.Warnings {
		for _, l := range view.WrapText("! "+w, modalWidth) {
			lines = append(lines, s.ModalMutedStyle.Render(l))
		}
	}
	return strings.Join(lines, "\n")
}

// summaryText is the plain text copied from the summary modal.
func summaryText(sum *summary.Summary, section string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", section)
	for _, l := range sum.Assignments {
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\t%s\n",
			l.Assignment.CourseName, l.Assignment.TeacherName,
			llm.FormatDuration(l.Scheduled), llm.FormatDuration(l.Target()), l.Status())
	}
	scheduled, target := sum.Totals()
	fmt.Fprintf(&sb, "Total\t\t%s\t%s\n", llm.FormatDuration(scheduled), llm.FormatDuration(target))
	return sb.String()
}
