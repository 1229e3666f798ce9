package view

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func TestRenderModalButtons_UsesModalBodySeparator(t *testing.T) {
	styles := ModalStyles{
		ModalBodyStyle:         lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		ModalButtonStyle:       lipgloss.NewStyle(),
		ModalButtonActiveStyle: lipgloss.NewStyle(),
	}

	view := RenderModalButtons(styles, "[y] Quit", "[n] Stay")
	sep := styles.ModalBodyStyle.Render(" ")
	if !strings.Contains(view, sep) {
		t.Fatalf("expected modal button separator to use modal body style")
	}
}

func TestRenderModalList(t *testing.T) {
	items := []ListItem{
		{Label: "Math", Detail: "1h30m left"},
		{Label: "History", Detail: "45m left"},
		{Label: "Art", Detail: "done"},
		{Label: "Music", Detail: "untracked"},
	}

	tests := []struct {
		name     string
		selected int
		maxRows  int
		want     []string
		notWant  []string
	}{
		{name: "all rows", selected: 0, maxRows: 0, want: []string{"› Math", "History", "Music"}, notWant: []string{"more"}},
		{name: "scrolled to selection", selected: 3, maxRows: 2, want: []string{"↑ more", "Art", "› Music"}, notWant: []string{"Math", "↓ more"}},
		{name: "top of a long list", selected: 0, maxRows: 2, want: []string{"› Math", "↓ more"}, notWant: []string{"Art"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ansi.Strip(RenderModalList(items, tt.selected, tt.maxRows, 30, ModalStyles{}))
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestRenderModalList_Empty(t *testing.T) {
	out := RenderModalList(nil, 0, 5, 20, ModalStyles{})
	if !strings.Contains(out, "nothing to show") {
		t.Fatalf("empty list output = %q", out)
	}
}
