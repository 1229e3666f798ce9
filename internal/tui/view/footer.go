package view

import "github.com/charmbracelet/lipgloss"

// FooterHeight is the number of lines RenderFooter produces.
const FooterHeight = 3

// FooterViewState holds the strings needed to render the footer section.
type FooterViewState struct {
	Width      int
	ModeLine   string
	StatusLine string
	HelpLine   string
	Bg         lipgloss.Color
}

// RenderFooter renders the mode, status and help lines.
func RenderFooter(state FooterViewState) string {
	s := state.ModeLine + "\n" + state.StatusLine + "\n" + state.HelpLine
	return PlaceBox(state.Width, FooterHeight, lipgloss.Bottom, s, state.Bg)
}
