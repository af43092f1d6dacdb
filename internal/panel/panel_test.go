package panel

import (
	"strings"
	"testing"

	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/coordinator"
	"github.com/1broseidon/quickgerman/internal/settings"
	"github.com/1broseidon/quickgerman/internal/translate"
)

func TestEditorTranslationKeys(t *testing.T) {
	var e Editor
	cur := settings.Defaults()
	typeKeys := func(names ...string) Action {
		var last Action
		for _, n := range names {
			last = e.Handle(KeyInput{Name: n}, bounds.ModeTranslation, cur)
		}
		return last
	}

	a := typeKeys("H", "a", "l", "l", "o", "space", "W", "udiaeresis")
	if a.Kind != ActionInputChanged || a.Input != "Hallo Wü" {
		t.Fatalf("after typing: %+v", a)
	}

	a = typeKeys("BackSpace")
	if a.Input != "Hallo W" {
		t.Fatalf("after BackSpace: %q", a.Input)
	}

	a = e.Handle(KeyInput{Name: "w", Ctrl: true}, bounds.ModeTranslation, cur)
	if a.Input != "Hallo " {
		t.Fatalf("after Ctrl+W: %q", a.Input)
	}

	a = e.Handle(KeyInput{Name: "u", Ctrl: true}, bounds.ModeTranslation, cur)
	if a.Kind != ActionInputChanged || a.Input != "" {
		t.Fatalf("after Ctrl+U: %+v", a)
	}
	if a := typeKeys("BackSpace"); a.Kind != ActionNone {
		t.Fatalf("BackSpace on empty = %+v", a)
	}
}

func TestEditorCommands(t *testing.T) {
	tests := []struct {
		name string
		key  KeyInput
		mode bounds.Mode
		want Action
	}{
		{"escape hides", KeyInput{Name: "Escape"}, bounds.ModeTranslation, Action{Kind: ActionHide}},
		{"escape hides in settings", KeyInput{Name: "Escape"}, bounds.ModeSettings, Action{Kind: ActionHide}},
		{"ctrl-s swaps", KeyInput{Name: "s", Ctrl: true}, bounds.ModeTranslation, Action{Kind: ActionSwap}},
		{"f2 to settings", KeyInput{Name: "F2"}, bounds.ModeTranslation, Action{Kind: ActionSetMode, Mode: bounds.ModeSettings}},
		{"f2 back", KeyInput{Name: "F2"}, bounds.ModeSettings, Action{Kind: ActionSetMode, Mode: bounds.ModeTranslation}},
		{"ctrl-comma", KeyInput{Name: "comma", Ctrl: true}, bounds.ModeTranslation, Action{Kind: ActionSetMode, Mode: bounds.ModeSettings}},
		{"ctrl-q quits", KeyInput{Name: "q", Ctrl: true}, bounds.ModeSettings, Action{Kind: ActionQuit}},
		{"ctrl letter not typed", KeyInput{Name: "x", Ctrl: true}, bounds.ModeTranslation, Action{}},
		{"unknown key ignored", KeyInput{Name: "F7"}, bounds.ModeTranslation, Action{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Editor
			got := e.Handle(tt.key, tt.mode, settings.Defaults())
			if got != tt.want {
				t.Fatalf("Handle() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEditorSettingsRows(t *testing.T) {
	var e Editor
	cur := settings.Defaults()

	a := e.Handle(KeyInput{Name: "space"}, bounds.ModeSettings, cur)
	if a.Kind != ActionSettingsChanged || a.Settings.Spellcheck == cur.Spellcheck {
		t.Fatalf("toggle spellcheck: %+v", a)
	}

	e.Handle(KeyInput{Name: "Down"}, bounds.ModeSettings, cur)
	a = e.Handle(KeyInput{Name: "Return"}, bounds.ModeSettings, cur)
	if !a.Settings.StartOnStartup {
		t.Fatalf("toggle start on startup: %+v", a)
	}

	e.Handle(KeyInput{Name: "Down"}, bounds.ModeSettings, cur)
	a = e.Handle(KeyInput{Name: "space"}, bounds.ModeSettings, cur)
	if a.Settings.Theme != cur.Theme.Next() {
		t.Fatalf("cycle theme: %+v", a)
	}

	e.Handle(KeyInput{Name: "Down"}, bounds.ModeSettings, cur)
	if e.Cursor() != RowSpellcheck {
		t.Fatalf("cursor did not wrap: %d", e.Cursor())
	}
	e.Handle(KeyInput{Name: "Up"}, bounds.ModeSettings, cur)
	if e.Cursor() != RowTheme {
		t.Fatalf("cursor did not wrap upward: %d", e.Cursor())
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		in   string
		cols int
		want []string
	}{
		{"Guten Morgen liebe Sorgen", 12, []string{"Guten Morgen", "liebe Sorgen"}},
		{"Donaudampfschifffahrt", 8, []string{"Donaudam", "pfschiff", "fahrt"}},
		{"a\nb", 10, []string{"a", "b"}},
		{"", 10, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Wrap(tt.in, tt.cols)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("Wrap(%q, %d) = %q, want %q", tt.in, tt.cols, got, tt.want)
			}
		})
	}
}

func TestTranslationLines(t *testing.T) {
	st := coordinator.State{
		Input:     "Hallo",
		Direction: translate.GermanToEnglish,
		Display:   coordinator.Display{Kind: coordinator.DisplayError, Text: coordinator.ErrorText},
		Loading:   true,
	}
	lines := TranslationLines(st, 40, 10)
	if len(lines) != 10 {
		t.Fatalf("len = %d, want 10", len(lines))
	}
	if !strings.Contains(lines[0].Text, "DE -> EN") || !strings.Contains(lines[0].Text, "translating") {
		t.Fatalf("header = %q", lines[0].Text)
	}
	found := false
	for _, l := range lines {
		if l.Text == coordinator.ErrorText && l.Style == StyleError {
			found = true
		}
	}
	if !found {
		t.Fatalf("error line missing: %+v", lines)
	}
	if lines[9].Style != StyleDim {
		t.Fatalf("footer = %+v", lines[9])
	}
}

func TestSettingsLinesHighlightCursor(t *testing.T) {
	lines := SettingsLines(settings.Defaults(), RowTheme, 40, 12)
	var selected []string
	for _, l := range lines {
		if l.Style == StyleSelected {
			selected = append(selected, l.Text)
		}
	}
	if len(selected) != 1 || !strings.Contains(selected[0], "Theme: system") {
		t.Fatalf("selected = %v", selected)
	}
}

func TestLatin1(t *testing.T) {
	if got := Latin1("Grüße €"); got != "Gr\xfc\xdfe EUR" {
		t.Fatalf("Latin1() = %q", got)
	}
	if got := Latin1("日本"); got != "??" {
		t.Fatalf("Latin1() = %q", got)
	}
}
