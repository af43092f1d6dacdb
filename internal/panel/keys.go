// Package panel holds the overlay's text layout and in-window key editing.
// It has no X11 dependency; the x11 package draws its lines and feeds it
// key presses.
package panel

import "strings"

// KeyInput is a key press inside the overlay window. Name is the keysym
// name as produced by xgbutil's LookupString, e.g. "a", "A", "space",
// "BackSpace", "udiaeresis".
type KeyInput struct {
	Name  string
	Ctrl  bool
	Alt   bool
	Shift bool
}

var namedRunes = map[string]rune{
	"space":        ' ',
	"exclam":       '!',
	"quotedbl":     '"',
	"numbersign":   '#',
	"dollar":       '$',
	"percent":      '%',
	"ampersand":    '&',
	"apostrophe":   '\'',
	"parenleft":    '(',
	"parenright":   ')',
	"asterisk":     '*',
	"plus":         '+',
	"comma":        ',',
	"minus":        '-',
	"period":       '.',
	"slash":        '/',
	"colon":        ':',
	"semicolon":    ';',
	"less":         '<',
	"equal":        '=',
	"greater":      '>',
	"question":     '?',
	"at":           '@',
	"bracketleft":  '[',
	"backslash":    '\\',
	"bracketright": ']',
	"underscore":   '_',
	"grave":        '`',
	"braceleft":    '{',
	"bar":          '|',
	"braceright":   '}',
	"asciitilde":   '~',
	"adiaeresis":   'ä',
	"odiaeresis":   'ö',
	"udiaeresis":   'ü',
	"Adiaeresis":   'Ä',
	"Odiaeresis":   'Ö',
	"Udiaeresis":   'Ü',
	"ssharp":       'ß',
	"section":      '§',
	"degree":       '°',
	"EuroSign":     '€',
}

// Rune returns the printable character for k, if any.
func (k KeyInput) Rune() (rune, bool) {
	if k.Ctrl || k.Alt {
		return 0, false
	}
	if len(k.Name) == 1 {
		r := rune(k.Name[0])
		if r >= 0x20 && r < 0x7f {
			return r, true
		}
		return 0, false
	}
	if r, ok := namedRunes[k.Name]; ok {
		return r, true
	}
	return 0, false
}

// Latin1 converts s for drawing with core X fonts. Characters outside
// ISO-8859-1 become '?'.
func Latin1(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x100 {
			b.WriteByte(byte(r))
			continue
		}
		if r == '€' {
			b.WriteString("EUR")
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}
