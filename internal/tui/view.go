package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/horario/internal/tui/view"
)

// View renders the editor.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return view.Render(m.viewState())
}

func (m Model) viewState() view.ViewState {
	showModal := m.mode == ModePick || (m.mode == ModeModal && m.modalType != ModalNone)
	modal := ""
	if showModal {
		modal = m.renderModal()
	}
	m.overlay.SetActive(showModal)

	state := view.ViewState{
		Width:            m.width,
		Height:           m.height,
		ModalContent:     modal,
		ShowModal:        showModal,
		Overlay:          m.overlay,
		EmptyPlaceholder: "Loading...",
	}
	if m.width <= 0 || m.height <= 0 {
		return state
	}
	if m.gridHeight() < 6 || m.width < timeColWidth+minColWidth+4 {
		state.Body = "Terminal too small"
		return state
	}

	state.Header = view.RenderTitle(view.TitleState{
		Width:   m.width,
		Section: m.section,
		Pending: m.session.Counts().Total,
		Busy:    m.busy,
	}, m.styles.TitleStyle, m.styles.InfoStyle)
	state.Body = view.RenderTable(m.tableViewState())
	state.Footer = view.RenderFooter(view.FooterViewState{
		Width:      m.width,
		ModeLine:   m.modeLine(),
		StatusLine: m.statusLine(),
		HelpLine:   m.helpLine(),
		Bg:         m.styles.FooterBg,
	})
	return state
}

func (m Model) tableViewState() view.TableViewState {
	headers := view.HeaderLabels(m.days, m.colWidth-2)
	headerStyles := make([]lipgloss.Style, len(headers))
	for i := range headers {
		headerStyles[i] = m.styles.HeaderStyle
		if i == m.cursor.Day+1 {
			headerStyles[i] = m.styles.HeaderCursorStyle
		}
	}

	content := m.tableContent()
	return view.TableViewState{
		InnerW:       m.width,
		GridH:        m.gridHeight(),
		Headers:      headers,
		HeaderStyles: headerStyles,
		Content:      content,
		Offset:       m.scrollOffset,
		BorderStyle:  m.styles.BorderStyle,
		VAlign:       lipgloss.Top,
		Bg:           m.styles.palette.Bg,
	}
}

func (m Model) modeLine() string {
	style := m.styles.ModeStyle
	if m.mode == ModeMove {
		style = m.styles.MoveModeStyle
	}
	mode := m.mode
	if mode == ModeModal {
		mode = ModeNormal
	}

	text := m.describeCursor()
	switch m.mode {
	case ModeMove:
		if m.moving != nil {
			text = m.courseName(*m.moving) + " from " + m.moving.DayOfWeek.String() + " " + m.moving.StartTime + " → " + text
		}
	case ModePrompt:
		text = m.prompt.View()
	}
	return style.Render(mode.String()) + " " + m.styles.StatusStyle.Render(text)
}

func (m Model) statusLine() string {
	if m.statusMsg == "" {
		return ""
	}
	if m.err != nil {
		return m.styles.ErrorStyle.Render(m.statusMsg)
	}
	return m.styles.StatusStyle.Render(m.statusMsg)
}

type keyHelp struct {
	key  string
	desc string
}

var helpByMode = map[Mode][]keyHelp{
	ModeNormal: {
		{"←↓↑→", "move"}, {"p", "place"}, {"m", "move class"}, {"d", "remove"},
		{"u", "undo"}, {"s", "save"}, {"a", "autofill"}, {"i", "summary"},
		{"?", "help"}, {"q", "quit"},
	},
	ModePick:   {{"↑↓", "choose"}, {"enter", "place"}, {"esc", "cancel"}},
	ModeMove:   {{"←↓↑→", "target"}, {"enter", "drop"}, {"esc", "cancel"}},
	ModePrompt: {{"enter", "run autofill"}, {"esc", "cancel"}},
	ModeModal:  {{"esc", "close"}},
}

func (m Model) helpLine() string {
	parts := make([]string, 0, len(helpByMode[m.mode]))
	for _, h := range helpByMode[m.mode] {
		parts = append(parts, m.styles.HelpKeyStyle.Render(h.key)+" "+m.styles.HelpDescStyle.Render(h.desc))
	}
	return strings.Join(parts, "  ")
}
