package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		themeName string
		wantName  string
	}{
		{name: "mocha", themeName: "mocha", wantName: "mocha"},
		{name: "upper case name", themeName: "LATTE", wantName: "latte"},
		{name: "empty name defaults to mocha", themeName: "", wantName: "mocha"},
		{name: "unknown name falls back to mocha", themeName: "solarized", wantName: "mocha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme, err := Load(tt.themeName)
			if err != nil {
				t.Fatalf("Load(%q) unexpected error: %v", tt.themeName, err)
			}
			if theme.Name != tt.wantName {
				t.Errorf("Load(%q).Name = %q, want %q", tt.themeName, theme.Name, tt.wantName)
			}
		})
	}
}

func TestLoad_EveryThemeIsComplete(t *testing.T) {
	for _, name := range Available() {
		t.Run(name, func(t *testing.T) {
			theme, err := Load(name)
			if err != nil {
				t.Fatalf("Load(%q): %v", name, err)
			}
			if theme.Name != name {
				t.Fatalf("Name = %q, want %q", theme.Name, name)
			}

			colors := map[string]string{
				"Bg":          theme.Bg,
				"BgHighlight": theme.BgHighlight,
				"BgSelection": theme.BgSelection,
				"Fg":          theme.Fg,
				"FgMuted":     theme.FgMuted,
				"Accent":      theme.Accent,
				"Class":       theme.Class,
				"Pending":     theme.Pending,
				"Break":       theme.Break,
				"Warning":     theme.Warning,
				"BaseBg":      theme.BaseBg,
				"ModalBorder": theme.ModalBorder,
				"TextPrimary": theme.TextPrimary,
				"TextMuted":   theme.TextMuted,
				"Highlight":   theme.Highlight,
			}
			for field, hex := range colors {
				if len(hex) != 7 || hex[0] != '#' {
					t.Errorf("%s = %q, want #rrggbb", field, hex)
				}
			}
		})
	}
}

func TestLoad_ModalOverrides(t *testing.T) {
	light, err := Load("light")
	if err != nil {
		t.Fatal(err)
	}
	if light.BaseBg != "#f7f7f7" {
		t.Errorf("light BaseBg = %q, want the explicit override", light.BaseBg)
	}

	mocha, err := Load("mocha")
	if err != nil {
		t.Fatal(err)
	}
	if mocha.BaseBg != mocha.BgHighlight {
		t.Errorf("mocha BaseBg = %q, want BgHighlight %q", mocha.BaseBg, mocha.BgHighlight)
	}
	if mocha.ModalBorder != mocha.Accent {
		t.Errorf("ModalBorder = %q, want Accent %q", mocha.ModalBorder, mocha.Accent)
	}
}

func TestLoad_UserFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "school.toml")
	if err := os.WriteFile(file, []byte("accent = \"#123456\"\nclass = \"#abcdef\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(file)
	if err != nil {
		t.Fatalf("Load(%q): %v", file, err)
	}
	mocha, _ := Load(DefaultName)
	if got.Name != "school" {
		t.Errorf("Name = %q, want the file name", got.Name)
	}
	if got.Accent != "#123456" || got.Class != "#abcdef" {
		t.Errorf("overrides not applied: accent %q class %q", got.Accent, got.Class)
	}
	if got.Bg != mocha.Bg || got.Pending != mocha.Pending {
		t.Errorf("missing colors must come from mocha, got bg %q pending %q", got.Bg, got.Pending)
	}
	if got.ModalBorder != "#123456" {
		t.Errorf("ModalBorder = %q, want the new accent", got.ModalBorder)
	}
}

func TestLoad_UserFileErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "bad color", content: "class = \"blue\"\nwarning = \"#12\"\n", want: "class"},
		{name: "unknown key", content: "accnet = \"#123456\"\n", want: "strict mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".toml")
			if err := os.WriteFile(file, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(file)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected an error for a missing theme file")
	}
}

func TestAvailable(t *testing.T) {
	got := strings.Join(Available(), ",")
	if got != "frappe,latte,light,macchiato,mocha" {
		t.Errorf("Available() = %s", got)
	}
}

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		theme    string
		expected bool
	}{
		{theme: "mocha", expected: true},
		{theme: "Frappe", expected: true},
		{theme: "unknown", expected: false},
	}

	for _, tt := range tests {
		if got := IsAvailable(tt.theme); got != tt.expected {
			t.Errorf("IsAvailable(%q) = %t, want %t", tt.theme, got, tt.expected)
		}
	}
}
