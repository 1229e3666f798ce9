package view

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/horario/internal/timetable"
)

func tableState(rows ...string) TableViewState {
	content := TableContent{}
	for _, r := range rows {
		content.Rows = append(content.Rows, []string{r})
		content.CellStyles = append(content.CellStyles, []lipgloss.Style{lipgloss.NewStyle()})
	}
	return TableViewState{
		InnerW:       20,
		GridH:        8,
		Headers:      []string{"Hdr"},
		HeaderStyles: []lipgloss.Style{lipgloss.NewStyle()},
		Content:      content,
		VAlign:       lipgloss.Top,
	}
}

func TestRenderTableIncludesHeader(t *testing.T) {
	out := RenderTable(tableState("Cell"))
	if !strings.Contains(out, "Hdr") || !strings.Contains(out, "Cell") {
		t.Fatalf("expected header and cell in output: %q", out)
	}
}

func TestRenderTableOffsetSkipsRows(t *testing.T) {
	state := tableState("07:00", "07:45", "08:30")
	state.Offset = 2
	out := RenderTable(state)
	if strings.Contains(out, "07:00") || !strings.Contains(out, "08:30") {
		t.Fatalf("offset 2 output = %q", out)
	}
}

func TestHeaderLabels(t *testing.T) {
	days := []timetable.Weekday{timetable.Monday, timetable.Wednesday}

	wide := HeaderLabels(days, 12)
	if want := []string{TimeColumnLabel, "Monday", "Wednesday"}; strings.Join(wide, ",") != strings.Join(want, ",") {
		t.Errorf("HeaderLabels(12) = %v, want %v", wide, want)
	}

	narrow := HeaderLabels(days, 6)
	if narrow[1] != timetable.Monday.String() || narrow[2] != timetable.Wednesday.Short() {
		t.Errorf("HeaderLabels(6) = %v, want full Monday and short Wednesday", narrow)
	}
}
