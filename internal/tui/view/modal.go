package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ModalStyles groups the styles needed to render modal frames and buttons.
type ModalStyles struct {
	ModalHeaderStyle       lipgloss.Style
	ModalTitleStyle        lipgloss.Style
	ModalFooterStyle       lipgloss.Style
	ModalStyle             lipgloss.Style
	ModalButtonStyle       lipgloss.Style
	ModalButtonActiveStyle lipgloss.Style
	ModalBodyStyle         lipgloss.Style
	ModalMutedStyle        lipgloss.Style
	ModalSelectedStyle     lipgloss.Style
}

// RenderModalFrame renders a modal with the provided title, body, and footer.
func RenderModalFrame(title, body, footer string, styles ModalStyles) string {
	var b strings.Builder

	header := styles.ModalHeaderStyle.Render(styles.ModalTitleStyle.Render(title))
	b.WriteString(header)
	if body != "" {
		b.WriteString("\n\n")
		b.WriteString(body)
	}
	if footer != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.ModalFooterStyle.Render(footer))
	}

	return styles.ModalStyle.Render(b.String())
}

// RenderModalButtons renders a row of modal buttons with the first one active.
func RenderModalButtons(styles ModalStyles, labels ...string) string {
	parts := make([]string, 0, len(labels))
	for i, label := range labels {
		style := styles.ModalButtonStyle
		if i == 0 {
			style = styles.ModalButtonActiveStyle
		}
		parts = append(parts, style.Render(label))
	}
	sep := styles.ModalBodyStyle.Render(" ")
	return strings.Join(parts, sep)
}

// ListItem is one row of a modal list.
type ListItem struct {
	Label  string
	Detail string // right-hand annotation, rendered muted
}

// RenderModalList renders at most maxRows items of a list, scrolled so the
// selected item is visible, each padded to width.
func RenderModalList(items []ListItem, selected, maxRows, width int, styles ModalStyles) string {
	if len(items) == 0 {
		return styles.ModalMutedStyle.Render("nothing to show")
	}
	if maxRows <= 0 || maxRows > len(items) {
		maxRows = len(items)
	}
	first := 0
	if selected >= maxRows {
		first = selected - maxRows + 1
	}

	lines := make([]string, 0, maxRows+2)
	if first > 0 {
		lines = append(lines, styles.ModalMutedStyle.Render("  ↑ more"))
	}
	for i := first; i < first+maxRows && i < len(items); i++ {
		item := items[i]
		detailW := lipgloss.Width(item.Detail)
		labelW := width - detailW - 3
		label := Truncate(item.Label, labelW)
		gap := spaces(width - 2 - lipgloss.Width(label) - detailW)

		if i == selected {
			lines = append(lines, styles.ModalSelectedStyle.Render("› "+label+gap+item.Detail))
			continue
		}
		lines = append(lines, styles.ModalBodyStyle.Render("  "+label+gap)+styles.ModalMutedStyle.Render(item.Detail))
	}
	if first+maxRows < len(items) {
		lines = append(lines, styles.ModalMutedStyle.Render("  ↓ more"))
	}
	return strings.Join(lines, "\n")
}
