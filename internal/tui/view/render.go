// Package view composes the editor screen from pre-rendered parts.
package view

import (
	"strings"
)

// OverlayRenderer renders modal overlays on top of base content.
type OverlayRenderer interface {
	Render(base string, width, height int, content string) string
}

// ViewState contains the rendered parts of one frame.
type ViewState struct {
	Width            int
	Height           int
	Header           string
	Body             string
	Footer           string
	ModalContent     string
	ShowModal        bool
	Overlay          OverlayRenderer
	EmptyPlaceholder string
}

// Render stacks header, body and footer and draws the modal over them.
func Render(state ViewState) string {
	if state.Width == 0 || state.Height == 0 {
		if state.EmptyPlaceholder != "" {
			return state.EmptyPlaceholder
		}
		return "Loading..."
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{state.Header, state.Body, state.Footer} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	base := strings.Join(parts, "\n")

	if state.ShowModal && state.Overlay != nil {
		return state.Overlay.Render(base, state.Width, state.Height, state.ModalContent)
	}
	return base
}
