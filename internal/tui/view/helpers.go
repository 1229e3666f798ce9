package view

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// PlaceBox renders content in a lipgloss.Place box with background fill.
func PlaceBox(w, h int, vAlign lipgloss.Position, content string, bg lipgloss.Color) string {
	placed := lipgloss.Place(
		w,
		h,
		lipgloss.Left,
		vAlign,
		content,
		lipgloss.WithWhitespaceBackground(bg),
	)
	return PadLinesWithBackground(placed, w, h, bg)
}

// PadLinesWithBackground pads content to width/height with a background color.
func PadLinesWithBackground(content string, width, height int, bg lipgloss.Color) string {
	if width <= 0 || height <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	paddingStyle := lipgloss.NewStyle().Background(bg)
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := 0; i < height; i++ {
		line := lines[i]
		lineWidth := lipgloss.Width(line)
		if lineWidth > width {
			lines[i] = ansi.Truncate(line, width, "")
			continue
		}
		lines[i] = line + paddingStyle.Render(strings.Repeat(" ", width-lineWidth))
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// WrapText breaks s into lines no wider than width, splitting on spaces
// where possible.
func WrapText(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		runes := []rune(para)
		if len(runes) == 0 {
			lines = append(lines, "")
			continue
		}
		lineStart, lastSpace, lineWidth := 0, -1, 0
		for i := 0; i < len(runes); i++ {
			r := runes[i]
			if r == ' ' {
				lastSpace = i
			}
			rw := runewidth.RuneWidth(r)
			if lineWidth+rw > width {
				if lastSpace >= lineStart {
					lines = append(lines, string(runes[lineStart:lastSpace]))
					i = lastSpace
					lineStart = lastSpace + 1
				} else {
					lines = append(lines, string(runes[lineStart:i]))
					lineStart = i
					i--
				}
				lastSpace = -1
				lineWidth = 0
				continue
			}
			lineWidth += rw
		}
		lines = append(lines, string(runes[lineStart:]))
	}
	return lines
}

// Truncate shortens s to width cells, ending in an ellipsis when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
