package panel

import (
	"fmt"
	"strings"

	"github.com/1broseidon/quickgerman/internal/coordinator"
	"github.com/1broseidon/quickgerman/internal/settings"
)

// Style selects the color a line is drawn with.
type Style int

const (
	StyleNormal Style = iota
	StyleDim
	StyleAccent
	StyleError
	StyleSelected
)

// Line is one row of panel text.
type Line struct {
	Text  string
	Style Style
}

// TranslationLines lays out the translation view for a panel cols
// characters wide and rows lines tall.
func TranslationLines(st coordinator.State, cols, rows int) []Line {
	header := st.Direction.Label()
	if st.Loading {
		header += "   translating..."
	}
	lines := []Line{{Text: header, Style: StyleAccent}, {}}

	input := st.Input
	if input == "" {
		lines = append(lines, Line{Text: "Type or press Ctrl+` on a selection", Style: StyleDim})
	} else {
		for _, w := range Wrap(input+"_", cols) {
			lines = append(lines, Line{Text: w})
		}
	}
	lines = append(lines, Line{Text: strings.Repeat("-", max(cols, 1)), Style: StyleDim})

	outStyle := StyleNormal
	switch st.Display.Kind {
	case coordinator.DisplayPlaceholder, coordinator.DisplayNoResult:
		outStyle = StyleDim
	case coordinator.DisplayError:
		outStyle = StyleError
	}
	for _, w := range Wrap(st.Display.Text, cols) {
		lines = append(lines, Line{Text: w, Style: outStyle})
	}

	footer := Line{Text: "Esc hide  Ctrl+S swap  F2 settings", Style: StyleDim}
	return fit(lines, footer, rows)
}

// SettingsLines lays out the settings view with cursor highlighting the
// selected row.
func SettingsLines(s settings.AppSettings, cursor, cols, rows int) []Line {
	lines := []Line{{Text: "Settings", Style: StyleAccent}, {}}
	rowsText := []string{
		fmt.Sprintf("[%s] Spellcheck", check(s.Spellcheck)),
		fmt.Sprintf("[%s] Start on login", check(s.StartOnStartup)),
		fmt.Sprintf("Theme: %s", s.Theme),
	}
	for i, text := range rowsText {
		style := StyleNormal
		prefix := "  "
		if i == cursor {
			style = StyleSelected
			prefix = "> "
		}
		lines = append(lines, Line{Text: truncate(prefix+text, cols), Style: style})
	}
	lines = append(lines, Line{}, Line{Text: truncate("Hotkey: "+s.Hotkey, cols), Style: StyleDim})
	footer := Line{Text: truncate("Up/Down move  Space toggle  F2 back", cols), Style: StyleDim}
	return fit(lines, footer, rows)
}

func check(b bool) string {
	if b {
		return "x"
	}
	return " "
}

// fit trims lines to leave room for the footer on the last row.
func fit(lines []Line, footer Line, rows int) []Line {
	if rows <= 1 {
		return []Line{footer}
	}
	if len(lines) > rows-1 {
		lines = lines[:rows-1]
	}
	for len(lines) < rows-1 {
		lines = append(lines, Line{})
	}
	return append(lines, footer)
}

// Wrap breaks s into lines of at most cols runes, preferring spaces.
func Wrap(s string, cols int) []string {
	if cols < 1 {
		cols = 1
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		var cur []rune
		for _, word := range words {
			w := []rune(word)
			for len(w) > cols {
				if len(cur) > 0 {
					out = append(out, string(cur))
					cur = nil
				}
				out = append(out, string(w[:cols]))
				w = w[cols:]
			}
			switch {
			case len(cur) == 0:
				cur = append(cur, w...)
			case len(cur)+1+len(w) <= cols:
				cur = append(cur, ' ')
				cur = append(cur, w...)
			default:
				out = append(out, string(cur))
				cur = append([]rune(nil), w...)
			}
		}
		if len(cur) > 0 {
			out = append(out, string(cur))
		}
	}
	return out
}

func truncate(s string, cols int) string {
	r := []rune(s)
	if cols < 1 || len(r) <= cols {
		return s
	}
	return string(r[:cols])
}
