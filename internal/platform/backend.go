// Package platform abstracts the desktop session the daemon runs in: the
// overlay surface, the global key source and the event loop.
package platform

import (
	"log/slog"
	"time"

	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/hotkeys"
	"github.com/1broseidon/quickgerman/internal/overlay"
	"github.com/1broseidon/quickgerman/internal/panel"
	"github.com/1broseidon/quickgerman/internal/settings"
)

// Key source names accepted by HotkeyOptions.Source.
const (
	SourceKeymap = "keymap"
	SourceGrab   = "grab"
)

// Handlers receives input from the overlay surface.
type Handlers struct {
	OnBlur     func()
	OnClose    func()
	OnGeometry func(bounds.WindowBounds)
	OnKey      func(panel.KeyInput)
}

// SurfaceOptions configures the overlay surface.
type SurfaceOptions struct {
	Title    string
	Font     string
	Handlers Handlers
}

// Surface is the native overlay window plus panel drawing.
type Surface interface {
	overlay.Window
	Render(lines []panel.Line, theme settings.Theme)
	TextGrid() (cols, rows int)
	Destroy()
}

// HotkeyOptions selects and configures the global key source.
type HotkeyOptions struct {
	Source       string
	GrabSequence string
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Backend is a desktop session.
type Backend interface {
	NewSurface(opts SurfaceOptions) (Surface, error)
	HotkeySource(opts HotkeyOptions) (hotkeys.Source, error)
	// Run blocks processing window-system events until Quit.
	Run()
	Quit()
	Close()
}
