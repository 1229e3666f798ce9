package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/horario/internal/tui/theme"
	"github.com/javiermolinar/horario/internal/tui/view"
)

const (
	defaultColWidth = 14
	minColWidth     = 6
	timeColWidth    = 11
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	TitleStyle lipgloss.Style
	InfoStyle  lipgloss.Style

	HeaderStyle       lipgloss.Style
	HeaderCursorStyle lipgloss.Style
	TimeStyle         lipgloss.Style
	TimeCursorStyle   lipgloss.Style
	BorderStyle       lipgloss.Style

	// Cells. Alt shades alternate between neighbouring days.
	EmptyCellStyle  lipgloss.Style
	NoSlotStyle     lipgloss.Style
	ClassStyle      lipgloss.Style
	ClassAltStyle   lipgloss.Style
	PendingStyle    lipgloss.Style
	PendingAltStyle lipgloss.Style
	BreakStyle      lipgloss.Style
	ConflictStyle   lipgloss.Style
	CursorStyle     lipgloss.Style
	MoveTargetStyle lipgloss.Style

	ModeStyle      lipgloss.Style
	MoveModeStyle  lipgloss.Style
	StatusStyle    lipgloss.Style
	ErrorStyle     lipgloss.Style
	HelpKeyStyle   lipgloss.Style
	HelpDescStyle  lipgloss.Style
	PromptStyle    lipgloss.Style
	FooterBg       lipgloss.Color
	SummaryOKStyle lipgloss.Style

	Modal view.ModalStyles
}

// NewStyles creates styles from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	cell := lipgloss.NewStyle().Padding(0, 1)

	s := &Styles{palette: p}

	s.TitleStyle = lipgloss.NewStyle().Bold(true).Background(p.Accent).Foreground(p.TextOnAccent)
	s.InfoStyle = lipgloss.NewStyle().Foreground(p.FgMuted)

	s.HeaderStyle = cell.Bold(true).Foreground(p.Accent)
	s.HeaderCursorStyle = cell.Bold(true).Underline(true).Foreground(p.Fg)
	s.TimeStyle = cell.Foreground(p.FgMuted)
	s.TimeCursorStyle = cell.Bold(true).Foreground(p.Fg)
	s.BorderStyle = lipgloss.NewStyle().Foreground(p.BgSelection)

	s.EmptyCellStyle = cell.Foreground(p.FgMuted)
	s.NoSlotStyle = cell.Foreground(p.BgSelection)
	s.ClassStyle = cell.Background(p.ClassBg).Foreground(p.TextOnClass)
	s.ClassAltStyle = cell.Background(p.ClassBgAlt).Foreground(p.TextOnClass)
	s.PendingStyle = cell.Italic(true).Background(p.PendingBg).Foreground(p.TextOnPending)
	s.PendingAltStyle = cell.Italic(true).Background(p.PendingBgAlt).Foreground(p.TextOnPending)
	s.BreakStyle = cell.Background(p.BreakBg).Foreground(p.TextOnBreak)
	s.ConflictStyle = cell.Bold(true).Background(p.Warning).Foreground(p.TextOnWarning)
	s.CursorStyle = cell.Bold(true).Background(p.BgSelection).Foreground(p.Fg)
	s.MoveTargetStyle = cell.Bold(true).Background(p.Warning).Foreground(p.TextOnWarning)

	s.ModeStyle = lipgloss.NewStyle().Bold(true).Background(p.Accent).Foreground(p.TextOnAccent).Padding(0, 1)
	s.MoveModeStyle = lipgloss.NewStyle().Bold(true).Background(p.Warning).Foreground(p.TextOnWarning).Padding(0, 1)
	s.StatusStyle = lipgloss.NewStyle().Foreground(p.Fg)
	s.ErrorStyle = lipgloss.NewStyle().Foreground(p.Warning)
	s.HelpKeyStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	s.HelpDescStyle = lipgloss.NewStyle().Foreground(p.FgMuted)
	s.PromptStyle = lipgloss.NewStyle().Foreground(p.Fg)
	s.FooterBg = p.Bg
	s.SummaryOKStyle = lipgloss.NewStyle().Foreground(p.Class)

	m := p.Modal
	body := lipgloss.NewStyle().Background(m.Bg).Foreground(m.Text)
	s.Modal = view.ModalStyles{
		ModalStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(m.Border).
			BorderBackground(m.Bg).
			Background(m.Bg).
			Padding(1, 2),
		ModalHeaderStyle:       body,
		ModalTitleStyle:        body.Bold(true).Foreground(m.Border),
		ModalFooterStyle:       body.Foreground(m.Muted),
		ModalBodyStyle:         body,
		ModalMutedStyle:        body.Foreground(m.Muted),
		ModalButtonStyle:       body.Foreground(m.Muted).Padding(0, 1),
		ModalButtonActiveStyle: lipgloss.NewStyle().Bold(true).Background(m.Highlight).Foreground(m.ReverseText).Padding(0, 1),
		ModalSelectedStyle:     lipgloss.NewStyle().Bold(true).Background(m.Highlight).Foreground(m.ReverseText),
	}

	return s
}

// Palette returns the colors the styles were built from.
func (s *Styles) Palette() *theme.Palette {
	return s.palette
}

// cellStyle picks the style of a class cell. Odd day columns use the
// alternate shade.
func (s *Styles) cellStyle(col int, pending bool) lipgloss.Style {
	alt := col%2 == 1
	switch {
	case pending && alt:
		return s.PendingAltStyle
	case pending:
		return s.PendingStyle
	case alt:
		return s.ClassAltStyle
	default:
		return s.ClassStyle
	}
}
