package panel

import (
	"strings"

	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/settings"
)

// ActionKind is the result of a key press.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionHide
	ActionInputChanged
	ActionSwap
	ActionSetMode
	ActionSettingsChanged
	ActionQuit
	ActionRedraw
)

// Action tells the daemon what a key press means.
type Action struct {
	Kind     ActionKind
	Input    string
	Mode     bounds.Mode
	Settings settings.AppSettings
}

// Settings rows, in display order.
const (
	RowSpellcheck = iota
	RowStartOnStartup
	RowTheme
	rowCount
)

// Editor owns the input buffer and the settings cursor.
type Editor struct {
	input  []rune
	cursor int
}

// Input returns the buffer.
func (e *Editor) Input() string { return string(e.input) }

// SetInput replaces the buffer.
func (e *Editor) SetInput(s string) { e.input = []rune(s) }

// Cursor returns the highlighted settings row.
func (e *Editor) Cursor() int { return e.cursor }

// Handle interprets k for the given mode. current is the settings value
// edits apply to.
func (e *Editor) Handle(k KeyInput, mode bounds.Mode, current settings.AppSettings) Action {
	switch {
	case k.Name == "Escape":
		return Action{Kind: ActionHide}
	case k.Name == "F2":
		return Action{Kind: ActionSetMode, Mode: otherMode(mode)}
	case k.Ctrl && (k.Name == "comma" || k.Name == "less"):
		return Action{Kind: ActionSetMode, Mode: otherMode(mode)}
	case k.Ctrl && (k.Name == "q" || k.Name == "Q"):
		return Action{Kind: ActionQuit}
	}

	if mode == bounds.ModeSettings {
		return e.handleSettings(k, current)
	}
	return e.handleTranslation(k)
}

func otherMode(m bounds.Mode) bounds.Mode {
	if m == bounds.ModeSettings {
		return bounds.ModeTranslation
	}
	return bounds.ModeSettings
}

func (e *Editor) handleTranslation(k KeyInput) Action {
	switch {
	case k.Ctrl && (k.Name == "s" || k.Name == "S"):
		return Action{Kind: ActionSwap}
	case k.Ctrl && (k.Name == "u" || k.Name == "U"):
		if len(e.input) == 0 {
			return Action{}
		}
		e.input = e.input[:0]
		return e.changed()
	case k.Ctrl && (k.Name == "w" || k.Name == "W"):
		if len(e.input) == 0 {
			return Action{}
		}
		trimmed := strings.TrimRight(string(e.input), " ")
		if i := strings.LastIndex(trimmed, " "); i >= 0 {
			e.input = []rune(trimmed[:i+1])
		} else {
			e.input = e.input[:0]
		}
		return e.changed()
	case k.Name == "BackSpace":
		if len(e.input) == 0 {
			return Action{}
		}
		e.input = e.input[:len(e.input)-1]
		return e.changed()
	case k.Name == "Return" || k.Name == "KP_Enter":
		return Action{Kind: ActionInputChanged, Input: string(e.input)}
	}
	if r, ok := k.Rune(); ok {
		e.input = append(e.input, r)
		return e.changed()
	}
	return Action{}
}

func (e *Editor) changed() Action {
	return Action{Kind: ActionInputChanged, Input: string(e.input)}
}

func (e *Editor) handleSettings(k KeyInput, current settings.AppSettings) Action {
	switch k.Name {
	case "Up", "k":
		e.cursor = (e.cursor + rowCount - 1) % rowCount
		return Action{Kind: ActionRedraw}
	case "Down", "j", "Tab":
		e.cursor = (e.cursor + 1) % rowCount
		return Action{Kind: ActionRedraw}
	case "space", "Return", "KP_Enter":
		next := current
		switch e.cursor {
		case RowSpellcheck:
			next.Spellcheck = !next.Spellcheck
		case RowStartOnStartup:
			next.StartOnStartup = !next.StartOnStartup
		case RowTheme:
			next.Theme = next.Theme.Next()
		}
		return Action{Kind: ActionSettingsChanged, Settings: next}
	}
	return Action{}
}
