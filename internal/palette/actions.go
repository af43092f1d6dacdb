package palette

import (
	"fmt"

	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/ipc"
	"github.com/1broseidon/quickgerman/internal/translate"
)

// Action identifies a menu entry.
type Action string

const (
	ActionShow            Action = "show"
	ActionHide            Action = "hide"
	ActionCapture         Action = "capture"
	ActionTranslationMode Action = "mode-translation"
	ActionSettingsMode    Action = "mode-settings"
	ActionSwap            Action = "swap"
	ActionQuit            Action = "quit"
)

// Daemon is the part of the IPC client the menu drives.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	Show() error
	Hide() error
	Capture() error
	SetMode(mode bounds.Mode) error
	Swap() (translate.Direction, error)
	Quit() error
}

// Items builds the action list. st may be nil when the daemon's state is
// unknown; the current mode is highlighted otherwise.
func Items(st *ipc.StatusData) []Item {
	mode := ""
	if st != nil {
		mode = st.Mode
	}
	return []Item{
		{Label: "Show", Action: string(ActionShow), Icon: "view-reveal", Meta: "open overlay"},
		{Label: "Hide", Action: string(ActionHide), Icon: "view-conceal", Meta: "close overlay"},
		{Label: "Capture selection", Action: string(ActionCapture), Icon: "edit-copy", Meta: "translate selected text"},
		{Label: "Overlay", IsHeader: true},
		{Label: "Translation mode", Action: string(ActionTranslationMode), Icon: "accessories-dictionary",
			IsActive: mode == string(bounds.ModeTranslation)},
		{Label: "Settings mode", Action: string(ActionSettingsMode), Icon: "preferences-system",
			IsActive: mode == string(bounds.ModeSettings)},
		{Label: "Swap direction", Action: string(ActionSwap), Icon: "object-flip-horizontal", Meta: "german english"},
		{Label: "Quit", Action: string(ActionQuit), Icon: "application-exit", Meta: "exit stop daemon"},
	}
}

// Message summarizes the daemon state for the message bar.
func Message(st *ipc.StatusData) string {
	if st == nil {
		return ""
	}
	visibility := "hidden"
	if st.Visible {
		visibility = "visible"
	}
	return fmt.Sprintf("%s, %s, %s mode", translate.Direction(st.Direction).Label(), visibility, st.Mode)
}

// Run shows the action menu and sends the chosen action to d.
func Run(b Backend, d Daemon) (Action, error) {
	st, err := d.GetStatus()
	if err != nil {
		return "", fmt.Errorf("daemon not reachable: %w", err)
	}
	item, err := b.Show("quickgerman", Items(st), Message(st))
	if err != nil {
		return "", err
	}
	action := Action(item.Action)
	return action, Dispatch(d, action)
}

// Dispatch sends one action to the daemon.
func Dispatch(d Daemon, action Action) error {
	switch action {
	case ActionShow:
		return d.Show()
	case ActionHide:
		return d.Hide()
	case ActionCapture:
		return d.Capture()
	case ActionTranslationMode:
		if err := d.SetMode(bounds.ModeTranslation); err != nil {
			return err
		}
		return d.Show()
	case ActionSettingsMode:
		if err := d.SetMode(bounds.ModeSettings); err != nil {
			return err
		}
		return d.Show()
	case ActionSwap:
		_, err := d.Swap()
		return err
	case ActionQuit:
		return d.Quit()
	default:
		return fmt.Errorf("unknown palette action %q", action)
	}
}
