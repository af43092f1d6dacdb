package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/quickgerman/internal/autostart"
	"github.com/1broseidon/quickgerman/internal/settings"
)

// SettingsStore reads and writes the overlay preferences.
type SettingsStore interface {
	Load() (settings.AppSettings, error)
	Save(s settings.AppSettings) error
	// Target names where Save writes, for display.
	Target() string
}

type settingsClient interface {
	GetSettings() (settings.AppSettings, error)
	SetSettings(s settings.AppSettings) (settings.AppSettings, error)
}

// daemonStore goes through the running daemon, which persists the file and
// applies the change to the overlay at once.
type daemonStore struct {
	client settingsClient
}

func (d daemonStore) Load() (settings.AppSettings, error) { return d.client.GetSettings() }

func (d daemonStore) Save(s settings.AppSettings) error {
	_, err := d.client.SetSettings(s)
	return err
}

func (d daemonStore) Target() string { return "daemon" }

// fileStore writes the settings file directly and keeps the autostart entry
// in step when no daemon is running.
type fileStore struct {
	path  string
	entry *autostart.Entry
}

func (f fileStore) Load() (settings.AppSettings, error) {
	st, err := settings.Load(f.path)
	return st.Get(), err
}

func (f fileStore) Save(s settings.AppSettings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := settings.Write(f.path, s); err != nil {
		return err
	}
	if f.entry != nil && f.entry.Enabled() != s.StartOnStartup {
		if err := f.entry.Set(s.StartOnStartup); err != nil {
			return fmt.Errorf("settings saved but autostart entry failed: %w", err)
		}
	}
	return nil
}

func (f fileStore) Target() string { return f.path }

type savePhase int

const (
	saveHidden  savePhase = iota
	savePreview           // showing changes, awaiting confirm
	saveResult            // showing outcome message
)

// SaveOverlay manages the save preview and confirmation workflow.
type SaveOverlay struct {
	phase   savePhase
	changes []string
	err     error
	target  string
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show lists the pending changes and opens the preview.
func (s *SaveOverlay) Show(original, current settings.AppSettings, target string) {
	s.err = nil
	s.target = target
	s.changes = settingsDiff(original, current)
	if len(s.changes) == 0 {
		s.phase = saveResult
		s.err = fmt.Errorf("no changes to save")
		return
	}
	s.phase = savePreview
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles input while the overlay is active.
func (s SaveOverlay) Update(msg tea.Msg, current settings.AppSettings, store SettingsStore) SaveOverlay {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s
	}
	switch s.phase {
	case savePreview:
		switch km.String() {
		case "esc", "n":
			s.phase = saveHidden
		case "enter", "y":
			s.err = store.Save(current)
			s.phase = saveResult
		}
	case saveResult:
		s.phase = saveHidden
	}
	return s
}

// View renders the overlay for the given content area dimensions.
func (s SaveOverlay) View(areaW, areaH int) string {
	boxW := min(max(areaW-8, 30), 70)

	var content string
	switch s.phase {
	case savePreview:
		title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Render("Save Settings: Pending Changes")
		changeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
		lines := make([]string, 0, len(s.changes))
		for _, c := range s.changes {
			lines = append(lines, changeStyle.Render("~ "+c))
		}
		footer := dimStyle.Render("enter: save to " + s.target + "  esc: cancel")
		content = title + "\n\n" + strings.Join(lines, "\n") + "\n\n" + footer
	case saveResult:
		var msg string
		if s.err != nil {
			msg = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("Error: " + s.err.Error())
		} else {
			msg = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true).Render("Settings saved to " + s.target)
		}
		content = msg + "\n\n" + dimStyle.Render("press any key to dismiss")
	default:
		return ""
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(boxW).
		Render(content)

	return lipgloss.Place(areaW, areaH, lipgloss.Center, lipgloss.Center, box)
}

// settingsDiff lists changed fields as "key: old -> new".
func settingsDiff(a, b settings.AppSettings) []string {
	var out []string
	add := func(key, from, to string) {
		if from != to {
			out = append(out, fmt.Sprintf("%s: %s -> %s", key, from, to))
		}
	}
	add("spellcheck", strconv.FormatBool(a.Spellcheck), strconv.FormatBool(b.Spellcheck))
	add("startOnStartup", strconv.FormatBool(a.StartOnStartup), strconv.FormatBool(b.StartOnStartup))
	add("theme", string(a.Theme), string(b.Theme))
	add("hotkey", a.Hotkey, b.Hotkey)
	return out
}
