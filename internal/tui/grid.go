package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/horario/internal/grid"
	"github.com/javiermolinar/horario/internal/timetable"
	"github.com/javiermolinar/horario/internal/tui/view"
)

// nextClassRow returns the first non-break row after from in direction dir
// (+1 or -1), or from when there is none.
func (m Model) nextClassRow(from, dir int) int {
	for r := from + dir; r >= 0 && r < len(m.rows); r += dir {
		if !m.rows[r].IsBreak() {
			return r
		}
	}
	if from < 0 {
		return 0
	}
	return from
}

func (m Model) cursorDay() (timetable.Weekday, bool) {
	if m.cursor.Day < 0 || m.cursor.Day >= len(m.days) {
		return 0, false
	}
	return m.days[m.cursor.Day], true
}

// cursorSlot returns the day and class slot under the cursor.
func (m Model) cursorSlot() (timetable.Weekday, timetable.TimeSlot, error) {
	day, ok := m.cursorDay()
	if !ok || m.cursor.Row < 0 || m.cursor.Row >= len(m.rows) {
		return 0, timetable.TimeSlot{}, fmt.Errorf("no slot under the cursor")
	}
	row := m.rows[m.cursor.Row]
	slot, ok := row.Cell(day)
	if !ok {
		return day, timetable.TimeSlot{}, fmt.Errorf("no class slot on %s at %s", day, row.Start)
	}
	return day, slot, nil
}

// cursorCells returns the schedules placed in the cursor cell.
func (m Model) cursorCells() []timetable.Schedule {
	day, ok := m.cursorDay()
	if !ok || m.cursor.Row < 0 || m.cursor.Row >= len(m.rows) {
		return nil
	}
	return m.session.Index().At(day, m.rows[m.cursor.Row].Start)
}

func (m Model) courseName(s timetable.Schedule) string {
	if a, ok := m.session.Assignment(s.CourseAssignmentID); ok {
		return a.Label()
	}
	return fmt.Sprintf("#%d", s.CourseAssignmentID)
}

// cellText is the text of one grid cell, without styling.
func (m Model) cellText(cells []timetable.Schedule) (string, bool) {
	if len(cells) == 0 {
		return "·", false
	}
	names := make([]string, 0, len(cells))
	pending := false
	for _, c := range cells {
		name := m.courseName(c)
		if c.IsPending {
			name += "*"
			pending = true
		}
		names = append(names, name)
	}
	return strings.Join(names, "/"), pending
}

// visibleRows is the number of axis rows the grid can show at once.
func (m Model) visibleRows() int {
	// title, table borders, header and its separator
	return max(1, m.gridHeight()-4)
}

func (m Model) gridHeight() int {
	return max(0, m.height-1-view.FooterHeight)
}

// scrollToCursor keeps the cursor row inside the visible window.
func (m *Model) scrollToCursor() {
	visible := m.visibleRows()
	if m.cursor.Row < m.scrollOffset {
		m.scrollOffset = m.cursor.Row
	}
	if m.cursor.Row >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor.Row - visible + 1
	}
	m.scrollOffset = max(0, min(m.scrollOffset, len(m.rows)-visible))
}

// calculateColWidth spreads the terminal width over the working days.
func (m Model) calculateColWidth() int {
	if len(m.days) == 0 || m.width == 0 {
		return defaultColWidth
	}
	borders := len(m.days) + 2
	return max(minColWidth, (m.width-timeColWidth-borders)/len(m.days))
}

// tableContent builds the rows and styles of the grid.
func (m Model) tableContent() view.TableContent {
	idx := m.session.Index()
	textW := max(1, m.colWidth-2)
	conflicts := make(map[grid.Key]bool)
	for _, issue := range idx.Integrity() {
		conflicts[issue.Key] = true
	}

	content := view.TableContent{
		Rows:       make([][]string, 0, len(m.rows)),
		CellStyles: make([][]lipgloss.Style, 0, len(m.rows)),
	}
	for r, row := range m.rows {
		cells := make([]string, 0, len(m.days)+1)
		styles := make([]lipgloss.Style, 0, len(m.days)+1)

		timeStyle := m.styles.TimeStyle
		if r == m.cursor.Row {
			timeStyle = m.styles.TimeCursorStyle
		}
		cells = append(cells, row.Start+"-"+row.End)
		styles = append(styles, timeStyle)

		if row.IsBreak() {
			label := row.Label()
			if label == "" {
				label = "break"
			}
			for i := range m.days {
				text := ""
				if i == 0 {
					text = view.Truncate(label, textW)
				}
				cells = append(cells, text)
				styles = append(styles, m.styles.BreakStyle)
			}
			content.Rows = append(content.Rows, cells)
			content.CellStyles = append(content.CellStyles, styles)
			continue
		}

		for col, day := range m.days {
			style := m.styles.NoSlotStyle
			text := ""
			if _, ok := row.Cell(day); ok {
				placed := idx.At(day, row.Start)
				var pending bool
				text, pending = m.cellText(placed)
				switch {
				case conflicts[grid.Key{Day: day, Start: row.Start}]:
					style = m.styles.ConflictStyle
				case len(placed) > 0:
					style = m.styles.cellStyle(col, pending)
				default:
					style = m.styles.EmptyCellStyle
				}
			}
			if r == m.cursor.Row && col == m.cursor.Day {
				style = m.styles.CursorStyle
				if m.mode == ModeMove {
					style = m.styles.MoveTargetStyle
				}
			}
			cells = append(cells, view.Truncate(text, textW))
			styles = append(styles, style)
		}
		content.Rows = append(content.Rows, cells)
		content.CellStyles = append(content.CellStyles, styles)
	}
	return content
}

// plainGrid renders the grid as tab-separated text for the clipboard.
func (m Model) plainGrid() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(view.HeaderLabels(m.days, 1<<10), "\t"))
	sb.WriteString("\n")

	idx := m.session.Index()
	for _, row := range m.rows {
		sb.WriteString(row.Start + "-" + row.End)
		for i, day := range m.days {
			sb.WriteString("\t")
			switch {
			case row.IsBreak():
				if i == 0 {
					sb.WriteString(row.Label())
				}
			default:
				if _, ok := row.Cell(day); ok {
					if placed := idx.At(day, row.Start); len(placed) > 0 {
						names := make([]string, 0, len(placed))
						for _, p := range placed {
							names = append(names, m.courseName(p))
						}
						sb.WriteString(strings.Join(names, "/"))
					}
				}
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
