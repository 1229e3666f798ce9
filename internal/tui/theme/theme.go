// Package theme provides the color themes of the timetable editor.
package theme

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultName is the theme used when none is configured or the configured
// one does not exist.
const DefaultName = "mocha"

//go:embed embedded/*.toml
var embeddedThemes embed.FS

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Theme holds all colors for a TUI theme.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`           // Base background
	BgHighlight string `toml:"bg_highlight"` // Empty class cells
	BgSelection string `toml:"bg_selection"` // Cursor
	Fg          string `toml:"fg"`
	FgMuted     string `toml:"fg_muted"` // Time column, hints
	Accent      string `toml:"accent"`   // Title, borders
	Class       string `toml:"class"`    // Saved placements
	Pending     string `toml:"pending"`  // Unsaved placements
	Break       string `toml:"break"`    // Break bands
	Warning     string `toml:"warning"`  // Conflicts, move mode

	// Modal overrides. Empty values are derived from the colors above.
	BaseBg      string `toml:"base_bg"`
	ModalBorder string `toml:"modal_border"`
	TextPrimary string `toml:"text_primary"`
	TextMuted   string `toml:"text_muted"`
	Highlight   string `toml:"highlight"`
}

// Load returns the named built-in theme, or reads a user theme when name is
// a path to a .toml file. A user theme only needs the colors it changes;
// the rest come from mocha. Unknown built-in names fall back to mocha.
func Load(name string) (*Theme, error) {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(strings.ToLower(name), ".toml") {
		return loadFile(name)
	}

	name = strings.ToLower(name)
	if !IsAvailable(name) {
		name = DefaultName
	}
	t, err := decode(embeddedThemes.ReadFile("embedded/" + name + ".toml"))
	if err != nil {
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}
	t.applyDefaults()
	return t, nil
}

func loadFile(file string) (*Theme, error) {
	base, err := Load(DefaultName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("loading theme file: %w", err)
	}
	user, err := decode(data, nil)
	if err != nil {
		return nil, fmt.Errorf("theme file %s: %w", file, err)
	}

	t := user.over(base)
	if t.Name == "" || t.Name == DefaultName {
		t.Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("theme file %s: %w", file, err)
	}
	return t, nil
}

func decode(data []byte, err error) (*Theme, error) {
	if err != nil {
		return nil, err
	}
	var t Theme
	if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// over fills the empty colors of t from base. Modal overrides are derived
// again so a user theme with a new accent gets a matching modal border.
func (t *Theme) over(base *Theme) *Theme {
	out := *t
	out.Bg = coalesce(t.Bg, base.Bg)
	out.BgHighlight = coalesce(t.BgHighlight, base.BgHighlight)
	out.BgSelection = coalesce(t.BgSelection, base.BgSelection)
	out.Fg = coalesce(t.Fg, base.Fg)
	out.FgMuted = coalesce(t.FgMuted, base.FgMuted)
	out.Accent = coalesce(t.Accent, base.Accent)
	out.Class = coalesce(t.Class, base.Class)
	out.Pending = coalesce(t.Pending, base.Pending)
	out.Break = coalesce(t.Break, base.Break)
	out.Warning = coalesce(t.Warning, base.Warning)
	out.applyDefaults()
	return &out
}

// Validate reports every color that is not a #rrggbb value.
func (t *Theme) Validate() error {
	fields := []struct{ name, value string }{
		{"bg", t.Bg}, {"bg_highlight", t.BgHighlight}, {"bg_selection", t.BgSelection},
		{"fg", t.Fg}, {"fg_muted", t.FgMuted}, {"accent", t.Accent},
		{"class", t.Class}, {"pending", t.Pending}, {"break", t.Break}, {"warning", t.Warning},
		{"base_bg", t.BaseBg}, {"modal_border", t.ModalBorder}, {"text_primary", t.TextPrimary},
		{"text_muted", t.TextMuted}, {"highlight", t.Highlight},
	}
	var errs []error
	for _, f := range fields {
		if !hexColor.MatchString(f.value) {
			errs = append(errs, fmt.Errorf("%s: %q is not a #rrggbb color", f.name, f.value))
		}
	}
	return errors.Join(errs...)
}

func (t *Theme) applyDefaults() {
	t.BaseBg = coalesce(t.BaseBg, t.BgHighlight, t.Bg)
	t.ModalBorder = coalesce(t.ModalBorder, t.Accent)
	t.TextPrimary = coalesce(t.TextPrimary, t.Fg)
	t.TextMuted = coalesce(t.TextMuted, t.FgMuted)
	t.Highlight = coalesce(t.Highlight, t.BgSelection, t.Accent)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns the names of the built-in themes, sorted.
func Available() []string {
	entries, err := fs.ReadDir(embeddedThemes, "embedded")
	if err != nil {
		return []string{DefaultName}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if n, ok := strings.CutSuffix(e.Name(), ".toml"); ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// IsAvailable reports whether name is a built-in theme.
func IsAvailable(name string) bool {
	name = strings.ToLower(name)
	for _, n := range Available() {
		if n == name {
			return true
		}
	}
	return false
}
