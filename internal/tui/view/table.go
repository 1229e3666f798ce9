package view

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// TableContent contains table rows and cell styles.
type TableContent struct {
	Rows       [][]string
	CellStyles [][]lipgloss.Style
}

// TableViewState holds data needed to render the timetable grid.
type TableViewState struct {
	InnerW       int
	GridH        int
	Headers      []string
	HeaderStyles []lipgloss.Style
	Content      TableContent
	Offset       int // first visible row
	BorderStyle  lipgloss.Style
	VAlign       lipgloss.Position
	Bg           lipgloss.Color
}

// RenderTable renders the visible rows of the grid as a lipgloss table.
func RenderTable(state TableViewState) string {
	if state.GridH <= 0 {
		return ""
	}

	offset := min(max(state.Offset, 0), len(state.Content.Rows))
	rows := state.Content.Rows[offset:]
	styles := state.Content.CellStyles[min(offset, len(state.Content.CellStyles)):]

	t := table.New().
		Headers(state.Headers...).
		Width(max(state.InnerW-2, 0)).
		Height(state.GridH).
		Border(lipgloss.RoundedBorder()).
		BorderHeader(true).
		BorderColumn(true).
		BorderRow(false).
		BorderStyle(state.BorderStyle).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				if col >= 0 && col < len(state.HeaderStyles) {
					return state.HeaderStyles[col]
				}
				return lipgloss.NewStyle()
			}
			if row < 0 || row >= len(styles) || col < 0 || col >= len(styles[row]) {
				return lipgloss.NewStyle()
			}
			return styles[row][col]
		})

	return PlaceBox(state.InnerW, state.GridH, state.VAlign, t.Render(), state.Bg)
}
