package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds the colors the editor renders with, derived once from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Class       lipgloss.Color
	Pending     lipgloss.Color
	Break       lipgloss.Color
	Warning     lipgloss.Color

	// Cell backgrounds. Alt shades alternate between neighbouring days.
	ClassBg      lipgloss.Color
	ClassBgAlt   lipgloss.Color
	PendingBg    lipgloss.Color
	PendingBgAlt lipgloss.Color
	BreakBg      lipgloss.Color

	TextOnAccent  lipgloss.Color
	TextOnWarning lipgloss.Color
	TextOnClass   lipgloss.Color
	TextOnPending lipgloss.Color
	TextOnBreak   lipgloss.Color

	Modal ModalColors
}

// ModalColors holds modal-specific colors derived from a Theme.
type ModalColors struct {
	Bg          lipgloss.Color
	Border      lipgloss.AdaptiveColor
	Text        lipgloss.AdaptiveColor
	Muted       lipgloss.AdaptiveColor
	Highlight   lipgloss.AdaptiveColor
	Panel       lipgloss.AdaptiveColor
	ReverseText lipgloss.AdaptiveColor
	Backdrop    lipgloss.Color
}

// NewPalette derives a Palette from t. A nil theme means mocha.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load("mocha")
	}

	isLight := isLightTheme(t.Bg)
	classBg := cellBg(t.Class, t.Bg, isLight)
	pendingBg := cellBg(t.Pending, t.Bg, isLight)
	breakBg := bandBg(t.Break, t.Bg, isLight)

	modalBgHex := coalesce(t.BaseBg, t.BgHighlight, t.Bg)
	modalTextHex := coalesce(t.TextPrimary, t.Fg)
	modalPanelHex := coalesce(t.BgSelection, t.BgHighlight, t.Bg)

	return &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Class:       lipgloss.Color(t.Class),
		Pending:     lipgloss.Color(t.Pending),
		Break:       lipgloss.Color(t.Break),
		Warning:     lipgloss.Color(t.Warning),

		ClassBg:      lipgloss.Color(classBg),
		ClassBgAlt:   lipgloss.Color(alternateShade(classBg, isLight)),
		PendingBg:    lipgloss.Color(pendingBg),
		PendingBgAlt: lipgloss.Color(alternateShade(pendingBg, isLight)),
		BreakBg:      lipgloss.Color(breakBg),

		TextOnAccent:  lipgloss.Color(chooseTextColor(t.Accent, t.Bg, t.Fg)),
		TextOnWarning: lipgloss.Color(chooseTextColor(t.Warning, t.Bg, t.Fg)),
		TextOnClass:   lipgloss.Color(chooseTextColor(classBg, t.Bg, t.Fg)),
		TextOnPending: lipgloss.Color(chooseTextColor(pendingBg, t.Bg, t.Fg)),
		TextOnBreak:   lipgloss.Color(chooseTextColor(breakBg, t.Bg, t.Fg)),

		Modal: ModalColors{
			Bg:          lipgloss.Color(modalBgHex),
			Border:      adaptiveColor(coalesce(t.ModalBorder, t.Accent)),
			Text:        adaptiveColor(modalTextHex),
			Muted:       adaptiveColor(coalesce(t.TextMuted, t.FgMuted)),
			Highlight:   adaptiveColor(coalesce(t.Highlight, t.BgSelection, t.Accent)),
			Panel:       adaptiveColor(modalPanelHex),
			ReverseText: reverseTextColor(modalBgHex, modalTextHex),
			Backdrop:    lipgloss.Color(modalPanelHex),
		},
	}
}

func isLightTheme(bg string) bool {
	return relativeLuminance(bg) > 0.55
}

func cellBg(accent, bg string, isLight bool) string {
	if isLight {
		return blendColors(accent, bg, 0.75)
	}
	return darkenColor(accent)
}

// bandBg is the background of a break row, quieter than a class cell.
func bandBg(accent, bg string, isLight bool) string {
	if isLight {
		return blendColors(accent, bg, 0.88)
	}
	return muteColor(accent)
}

// darkenColor halves the brightness of hex, keeping each channel above a
// floor so cells stay visible on dark themes.
func darkenColor(hex string) string {
	return scaleColor(hex, 0.50, 40)
}

// muteColor darkens hex further than darkenColor.
func muteColor(hex string) string {
	return scaleColor(hex, 0.30, 30)
}

// scaleColor multiplies every channel of hex by factor, with floor as the
// lowest channel value.
func scaleColor(hex string, factor float64, floor uint8) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	r, g, b := c.RGB255()
	scale := func(v uint8) float64 {
		return float64(max(floor, uint8(float64(v)*factor))) / 255
	}
	return colorful.Color{R: scale(r), G: scale(g), B: scale(b)}.Hex()
}

// alternateShade returns a slightly different shade for adjacent days.
func alternateShade(hex string, isLight bool) string {
	if isLight {
		return blendColors(hex, "#000000", 0.10)
	}
	return blendColors(hex, "#ffffff", 0.30)
}

func adaptiveColor(hex string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{
		Dark:  hex,
		Light: hex,
	}
}

func reverseTextColor(darkBg, lightText string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{
		Dark:  darkBg,
		Light: lightText,
	}
}

func chooseTextColor(bg, lightText, darkText string) string {
	lightContrast := contrastRatio(bg, lightText)
	darkContrast := contrastRatio(bg, darkText)
	if lightContrast >= darkContrast {
		return lightText
	}
	return darkText
}

func contrastRatio(a, b string) float64 {
	l1 := relativeLuminance(a)
	l2 := relativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(hex string) float64 {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// blendColors mixes ratio of b into a.
func blendColors(a, b string, ratio float64) string {
	ca, errA := colorful.Hex(a)
	cb, errB := colorful.Hex(b)
	if errA != nil || errB != nil {
		return a
	}
	return ca.BlendRgb(cb, max(0, min(ratio, 1))).Clamped().Hex()
}
