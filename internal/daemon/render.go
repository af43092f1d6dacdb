package daemon

import (
	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/panel"
)

// render redraws the panel for the active mode.
func (a *App) render() {
	if a.surface == nil || a.controller == nil || a.coord == nil {
		return
	}
	cols, rows := a.surface.TextGrid()
	current := a.settingSt.Get()

	var lines []panel.Line
	if a.controller.Mode() == bounds.ModeSettings {
		a.mu.Lock()
		cursor := a.editor.Cursor()
		a.mu.Unlock()
		lines = panel.SettingsLines(current, cursor, cols, rows)
	} else {
		lines = panel.TranslationLines(a.coord.State(), cols, rows)
	}
	a.surface.Render(lines, current.Theme)
}

// onKey handles a key pressed while the overlay has focus.
func (a *App) onKey(k panel.KeyInput) {
	mode := a.controller.Mode()
	current := a.settingSt.Get()

	a.mu.Lock()
	act := a.editor.Handle(k, mode, current)
	a.mu.Unlock()

	switch act.Kind {
	case panel.ActionHide:
		a.controller.Hide()
	case panel.ActionInputChanged:
		a.coord.InputChanged(act.Input)
		a.render()
	case panel.ActionSwap:
		a.Swap()
	case panel.ActionSetMode:
		a.controller.SetMode(act.Mode)
	case panel.ActionSettingsChanged:
		if err := a.ApplySettings(act.Settings); err != nil {
			a.logger.Warn("rejected settings change", "error", err)
		}
	case panel.ActionRedraw:
		a.render()
	case panel.ActionQuit:
		go a.Quit()
	}
}
