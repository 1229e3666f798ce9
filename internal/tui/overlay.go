package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Bounds of the backdrop box. Larger content grows the box up to the screen.
const (
	overlayMinWidth  = 18
	overlayMinHeight = 5
	overlayMaxWidth  = 48
	overlayMaxHeight = 12
)

// OverlayModel draws an opaque box in the middle of the screen, used as the
// backdrop of modals.
type OverlayModel struct {
	active  bool
	bgColor lipgloss.Color
}

// NewOverlayModel initializes an overlay model.
func NewOverlayModel() OverlayModel {
	return OverlayModel{}
}

// SetActive shows or hides the overlay.
func (o *OverlayModel) SetActive(active bool) {
	o.active = active
}

// Active reports whether the overlay is visible.
func (o OverlayModel) Active() bool {
	return o.active
}

// SetBackground updates the overlay background color.
func (o *OverlayModel) SetBackground(color lipgloss.Color) {
	o.bgColor = color
}

// Render draws content centred in the backdrop box on top of base.
func (o OverlayModel) Render(base string, width, height int, content string) string {
	if !o.active || width <= 0 || height <= 0 {
		return base
	}

	body := splitContent(content)
	bodyW, bodyH := blockSize(body)
	boxW := min(max(clamp(width/2, overlayMinWidth, overlayMaxWidth), bodyW), width)
	boxH := min(max(clamp(height/3, overlayMinHeight, overlayMaxHeight), bodyH), height)
	bodyW, bodyH = min(bodyW, boxW), min(bodyH, boxH)

	bg := o.backgroundSeq()
	box := make([]string, boxH)
	for i := range box {
		box[i] = bg + strings.Repeat(" ", boxW) + ansi.ResetStyle
	}
	bodyTop, bodyLeft := (boxH-bodyH)/2, (boxW-bodyW)/2
	for i := 0; i < bodyH; i++ {
		line := fitWidth(body[i], bodyW)
		if bg != "" {
			line = reapplyBackground(line, bg)
		}
		box[bodyTop+i] = bg + strings.Repeat(" ", bodyLeft) + line +
			bg + strings.Repeat(" ", boxW-bodyLeft-bodyW) + ansi.ResetStyle
	}

	lines := baseLines(base, width, height)
	top, left := (height-boxH)/2, (width-boxW)/2
	for i, line := range box {
		row := top + i
		lines[row] = ansi.Cut(lines[row], 0, left) + line + ansi.Cut(lines[row], left+boxW, width)
	}
	return strings.Join(lines, "\n")
}

func (o OverlayModel) backgroundSeq() string {
	if o.bgColor == "" {
		return ""
	}
	return ansi.Style{}.BackgroundColor(ansi.HexColor(string(o.bgColor))).String()
}

// reapplyBackground restores the box background after every reset inside
// a styled line, so styled text does not punch holes in the box.
func reapplyBackground(line, bg string) string {
	for _, reset := range []string{ansi.ResetStyle, "\x1b[0m", "\x1b[49m"} {
		line = strings.ReplaceAll(line, reset, reset+bg)
	}
	return line
}

func splitContent(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(content, "\n"), "\n")
}

func blockSize(lines []string) (int, int) {
	w := 0
	for _, l := range lines {
		w = max(w, lipgloss.Width(l))
	}
	return w, len(lines)
}

// fitWidth cuts or pads line to exactly width cells.
func fitWidth(line string, width int) string {
	w := lipgloss.Width(line)
	if w > width {
		return ansi.Cut(line, 0, width)
	}
	return line + strings.Repeat(" ", width-w)
}

// baseLines normalizes base to height lines of width cells each.
func baseLines(base string, width, height int) []string {
	lines := strings.Split(base, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]
	for i, l := range lines {
		lines[i] = fitWidth(l, width)
	}
	return lines
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
