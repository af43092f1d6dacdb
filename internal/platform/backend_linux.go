//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/quickgerman/internal/hotkeys"
	"github.com/1broseidon/quickgerman/internal/panel"
	"github.com/1broseidon/quickgerman/internal/settings"
	"github.com/1broseidon/quickgerman/internal/x11"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// NewSurface creates the overlay window.
func (b *LinuxBackend) NewSurface(opts SurfaceOptions) (Surface, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	h := opts.Handlers
	win, err := x11.NewOverlayWindow(conn, x11.OverlayOptions{
		Title: opts.Title,
		Font:  opts.Font,
		Handlers: x11.WindowHandlers{
			OnBlur:     h.OnBlur,
			OnClose:    h.OnClose,
			OnGeometry: h.OnGeometry,
			OnKey:      h.OnKey,
		},
	})
	if err != nil {
		return nil, err
	}
	return &surface{win}, nil
}

// HotkeySource returns the configured global key source.
func (b *LinuxBackend) HotkeySource(opts HotkeyOptions) (hotkeys.Source, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	switch opts.Source {
	case "", SourceKeymap:
		return hotkeys.NewKeymapSource(conn.XUtil, opts.PollInterval, opts.Logger), nil
	case SourceGrab:
		return hotkeys.NewGrabSource(conn.XUtil, conn.Root, opts.GrabSequence), nil
	default:
		return nil, fmt.Errorf("unknown hotkey source %q", opts.Source)
	}
}

// Run starts the X11 event loop (blocking).
func (b *LinuxBackend) Run() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops the event loop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// Close closes the underlying X11 connection.
func (b *LinuxBackend) Close() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

// surface adapts the X11 overlay window to themed rendering.
type surface struct {
	*x11.OverlayWindow
}

func (s *surface) Render(lines []panel.Line, theme settings.Theme) {
	s.OverlayWindow.Render(lines, x11.PaletteFor(theme))
}
