// Package palette shows the overlay's action menu through rofi or dmenu.
// It replaces a tray icon: the chosen action is sent to the daemon.
package palette

import (
	"fmt"
	"os/exec"
	"strings"
)

// Item is a single selectable entry in a palette menu.
type Item struct {
	Label    string // Display text
	Action   string // Action identifier returned on selection
	Icon     string // Icon name for rofi -show-icons
	Meta     string // Hidden search keywords (rofi meta field)
	IsHeader bool   // Non-selectable section header
	IsActive bool   // Highlighted as current
}

// Backend shows a palette to the user and returns the selected item.
type Backend interface {
	// Show displays items under prompt. message is shown in the message
	// bar where the backend has one.
	Show(prompt string, items []Item, message string) (Item, error)
	Name() string
}

// NewBackend creates a backend by name.
//
// Supported names: auto, rofi, dmenu.
func NewBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		return NewBackend(detected)
	case "rofi":
		if _, err := exec.LookPath("rofi"); err != nil {
			return nil, fmt.Errorf("palette backend %q not found in PATH", "rofi")
		}
		return NewRofiBackend(), nil
	case "dmenu":
		if _, err := exec.LookPath("dmenu"); err != nil {
			return nil, fmt.Errorf("palette backend %q not found in PATH", "dmenu")
		}
		return NewDmenuBackend(), nil
	default:
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, rofi, dmenu)", name)
	}
}
