package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	// Classes: bold cyan
	colorClass = color.New(color.FgCyan, color.Bold)

	// Breaks and recess rows: dim
	colorBreak = color.New(color.FgWhite, color.Faint)

	// Placements not saved yet
	colorPending = color.New(color.FgMagenta)

	// Insight/results: yellow to make it pop
	colorInsight = color.New(color.FgYellow)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Targets met
	colorOK = color.New(color.FgGreen)

	// Short or over target
	colorWarn = color.New(color.FgRed)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

func formatClass(s string) string {
	return colorClass.Sprint(s)
}

func formatBreak(s string) string {
	return colorBreak.Sprint(s)
}

func formatPending(s string) string {
	return colorPending.Sprint(s)
}

func formatInsight(s string) string {
	return colorInsight.Sprint(s)
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatOK(s string) string {
	return colorOK.Sprint(s)
}

func formatWarn(s string) string {
	return colorWarn.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
