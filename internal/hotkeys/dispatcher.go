// Package hotkeys recognizes the global chords that drive the overlay.
package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"
)

// Key identifies the physical keys the dispatcher cares about.
type Key int

const (
	KeyOther Key = iota
	KeyControlL
	KeyControlR
	KeyAltL
	KeyAltR
	KeyShiftL
	KeyShiftR
	KeyGrave
	KeyTab
)

func (k Key) String() string {
	switch k {
	case KeyControlL:
		return "Control_L"
	case KeyControlR:
		return "Control_R"
	case KeyAltL:
		return "Alt_L"
	case KeyAltR:
		return "Alt_R"
	case KeyShiftL:
		return "Shift_L"
	case KeyShiftR:
		return "Shift_R"
	case KeyGrave:
		return "grave"
	case KeyTab:
		return "Tab"
	default:
		return "other"
	}
}

// KeyEvent is a raw press or release.
type KeyEvent struct {
	Key  Key
	Down bool
}

func (e KeyEvent) String() string {
	if e.Down {
		return e.Key.String() + " down"
	}
	return e.Key.String() + " up"
}

// Source delivers raw key events from the OS until stopped.
type Source interface {
	Start(handle func(KeyEvent)) error
	Stop() error
}

// Actions is what a recognized chord triggers.
type Actions interface {
	Visible() bool
	Toggle()
	Hide()
	Capture()
}

// ModifierState tracks which modifier groups are held. Left and right keys
// are folded together.
type ModifierState struct {
	Ctrl  bool
	Alt   bool
	Shift bool
}

// Dispatcher turns raw key events into overlay actions:
// Ctrl+` captures when hidden and toggles when visible, Alt+Tab hides.
type Dispatcher struct {
	mu      sync.Mutex
	source  Source
	actions Actions
	logger  *slog.Logger
	mods    ModifierState

	startOnce sync.Once
	stopOnce  sync.Once
	startErr  error
	stopErr   error
}

// NewDispatcher returns a dispatcher reading from source.
func NewDispatcher(source Source, actions Actions, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{source: source, actions: actions, logger: logger}
}

// Start attaches to the key source. Only the first call has an effect.
func (d *Dispatcher) Start() error {
	d.startOnce.Do(func() {
		if d.source == nil {
			d.startErr = fmt.Errorf("no key source")
			return
		}
		if err := d.source.Start(d.Handle); err != nil {
			d.startErr = fmt.Errorf("failed to start key source: %w", err)
			return
		}
		d.logger.Info("hotkey dispatcher started")
	})
	return d.startErr
}

// Stop releases the key source. Only the first call has an effect.
func (d *Dispatcher) Stop() error {
	d.stopOnce.Do(func() {
		if d.source == nil {
			return
		}
		if err := d.source.Stop(); err != nil {
			d.stopErr = fmt.Errorf("failed to stop key source: %w", err)
			return
		}
		d.logger.Info("hotkey dispatcher stopped")
	})
	return d.stopErr
}

// Modifiers returns the current modifier state.
func (d *Dispatcher) Modifiers() ModifierState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mods
}

// Handle processes one raw key event. Actions run after the dispatcher's
// lock is released.
func (d *Dispatcher) Handle(ev KeyEvent) {
	d.mu.Lock()
	switch ev.Key {
	case KeyControlL, KeyControlR:
		d.mods.Ctrl = ev.Down
	case KeyAltL, KeyAltR:
		d.mods.Alt = ev.Down
	case KeyShiftL, KeyShiftR:
		d.mods.Shift = ev.Down
	}
	mods := d.mods
	d.mu.Unlock()

	if !ev.Down {
		return
	}
	switch {
	case ev.Key == KeyGrave && mods.Ctrl:
		if d.actions.Visible() {
			d.logger.Debug("toggle chord", "action", "toggle")
			d.actions.Toggle()
			return
		}
		d.logger.Debug("toggle chord", "action", "capture")
		d.actions.Capture()
	case ev.Key == KeyTab && mods.Alt:
		if d.actions.Visible() {
			d.logger.Debug("force-hide chord")
			d.actions.Hide()
		}
	}
}
