package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/quickgerman/internal/settings"
)

// SettingsTab shows and edits the overlay preferences.
type SettingsTab struct {
	current settings.AppSettings

	width  int
	height int

	editing bool
	form    *huh.Form

	// Form-bound values, applied on submit.
	fSpellcheck bool
	fStartup    bool
	fTheme      string
	fHotkey     string
}

// NewSettingsTab creates a SettingsTab showing s.
func NewSettingsTab(s settings.AppSettings) SettingsTab {
	return SettingsTab{current: s}
}

// Settings returns the edited settings.
func (t SettingsTab) Settings() settings.AppSettings { return t.current }

// Update implements tea.Model.
func (t SettingsTab) Update(msg tea.Msg) (SettingsTab, tea.Cmd) {
	if t.editing {
		return t.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			t.startEditing()
			return t, t.form.Init()
		}
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
	}
	return t, nil
}

func (t SettingsTab) updateEditing(msg tea.Msg) (SettingsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			t.editing = false
			t.form = nil
			return t, nil
		}
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.applyForm()
		t.editing = false
		t.form = nil
		return t, nil
	}
	return t, cmd
}

func (t *SettingsTab) startEditing() {
	t.fSpellcheck = t.current.Spellcheck
	t.fStartup = t.current.StartOnStartup
	t.fTheme = string(t.current.Theme)
	t.fHotkey = t.current.Hotkey

	themeOpts := make([]huh.Option[string], 0, len(settings.Themes))
	for _, th := range settings.Themes {
		themeOpts = append(themeOpts, huh.NewOption(string(th), string(th)))
	}

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("spellcheck").
				Title("Spellcheck").
				Description("Underline misspelled input").
				Value(&t.fSpellcheck),

			huh.NewConfirm().
				Key("startOnStartup").
				Title("Start on login").
				Description("Write an XDG autostart entry for the daemon").
				Value(&t.fStartup),

			huh.NewSelect[string]().
				Key("theme").
				Title("Theme").
				Description("Overlay colors; system follows GTK_THEME").
				Options(themeOpts...).
				Value(&t.fTheme),

			huh.NewInput().
				Key("hotkey").
				Title("Hotkey").
				Description("Bound by the grab key source at daemon start, e.g. Ctrl+`").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("hotkey is required")
					}
					return nil
				}).
				Value(&t.fHotkey),
		),
	).WithWidth(max(t.width-4, 40)).WithShowHelp(true).WithShowErrors(true)

	t.editing = true
}

func (t *SettingsTab) applyForm() {
	t.current.Spellcheck = t.fSpellcheck
	t.current.StartOnStartup = t.fStartup
	t.current.Theme = settings.Theme(t.fTheme)
	t.current.Hotkey = strings.TrimSpace(t.fHotkey)
}

// View implements tea.Model.
func (t SettingsTab) View() string {
	style := lipgloss.NewStyle().
		Width(t.width).
		Height(t.height).
		Padding(1, 2)

	if t.editing && t.form != nil {
		header := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render("Editing Settings") +
			dimStyle.Render("  (esc to cancel)")
		return style.Render(header + "\n\n" + t.form.View())
	}

	lines := []string{
		"",
		row("Spellcheck", onOff(t.current.Spellcheck)),
		row("Start on login", onOff(t.current.StartOnStartup)),
		row("Theme", string(t.current.Theme)),
		row("Hotkey", t.current.Hotkey),
		"",
		dimStyle.Render("  Press 'e' to edit settings, ctrl-s to save"),
	}
	return style.Render(strings.Join(lines, "\n"))
}
