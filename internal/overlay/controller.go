// Package overlay owns the single overlay window: its visibility, its mode
// and the animated resize between modes.
package overlay

import (
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/clock"
)

// Window is the native window the controller drives.
type Window interface {
	Map() error
	Unmap() error
	Focus() error
	SetAlwaysOnTop(on bool) error
	SetAllWorkspaces(on bool) error
	Bounds() (bounds.WindowBounds, error)
	SetBounds(b bounds.WindowBounds) error
	SetMinSize(s bounds.Size) error
	// YieldFocus returns input focus to the window that held it before
	// the overlay was shown.
	YieldFocus() error
}

// EventKind identifies an outbound notification.
type EventKind int

const (
	EventShown EventKind = iota
	EventHidden
	EventModeChanged
	// EventModeApplied fires once the resize for a mode change has landed.
	EventModeApplied
)

func (k EventKind) String() string {
	switch k {
	case EventShown:
		return "shown"
	case EventHidden:
		return "hidden"
	case EventModeChanged:
		return "mode-changed"
	case EventModeApplied:
		return "mode-applied"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners after the controller's lock is released.
type Event struct {
	Kind EventKind
	Mode bounds.Mode
}

// Listener receives controller events.
type Listener func(Event)

// Options configures a Controller.
type Options struct {
	Window            Window
	Store             *bounds.Store
	Clock             clock.Clock
	Logger            *slog.Logger
	AnimationDuration time.Duration
	FrameInterval     time.Duration
}

// Status is a snapshot of the controller state.
type Status struct {
	Visible   bool
	Mode      bounds.Mode
	Animating bool
}

// Controller is the visibility and mode state machine.
type Controller struct {
	mu        sync.Mutex
	win       Window
	store     *bounds.Store
	clock     clock.Clock
	logger    *slog.Logger
	duration  time.Duration
	frame     time.Duration
	visible   bool
	mode      bounds.Mode
	anim      *Animator
	animTimer clock.Timer
	animGen   int
	animLast  time.Time
	listeners []Listener
}

// NewController applies the stored Translation bounds and minimum size to
// the window. The window starts hidden.
func NewController(opts Options) *Controller {
	c := &Controller{
		win:      opts.Window,
		store:    opts.Store,
		clock:    opts.Clock,
		logger:   opts.Logger,
		duration: opts.AnimationDuration,
		frame:    opts.FrameInterval,
		mode:     bounds.ModeTranslation,
	}
	if c.store == nil {
		c.store = bounds.NewMemoryStore()
	}
	if c.clock == nil {
		c.clock = clock.Real{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.duration <= 0 {
		c.duration = DefaultAnimationDuration
	}
	if c.frame <= 0 {
		c.frame = DefaultFrameInterval
	}

	c.warn("set min size", c.win.SetMinSize(bounds.MinSize(c.mode)))
	c.warn("apply bounds", c.win.SetBounds(c.store.Get(c.mode)))
	return c
}

// Subscribe registers a listener for controller events.
func (c *Controller) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Status returns the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{Visible: c.visible, Mode: c.mode, Animating: c.anim != nil}
}

// Visible reports whether the window is mapped.
func (c *Controller) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Mode returns the active mode.
func (c *Controller) Mode() bounds.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Show maps and focuses the window. When already visible it only refocuses.
func (c *Controller) Show() {
	c.mu.Lock()
	if c.visible {
		c.warn("focus", c.win.Focus())
		c.mu.Unlock()
		return
	}
	c.warn("set always on top", c.win.SetAlwaysOnTop(true))
	c.warn("set all workspaces", c.win.SetAllWorkspaces(true))
	c.warn("map", c.win.Map())
	c.warn("focus", c.win.Focus())
	c.visible = true
	mode := c.mode
	listeners := c.listeners
	c.mu.Unlock()

	c.logger.Debug("overlay shown", "mode", mode)
	emit(listeners, Event{Kind: EventShown, Mode: mode})
}

// Hide persists the current bounds, unmaps the window and yields focus.
// It is a no-op when hidden.
func (c *Controller) Hide() {
	c.mu.Lock()
	if !c.visible {
		c.mu.Unlock()
		return
	}
	applied := c.finishAnimationLocked()
	c.persistLocked()
	c.warn("unmap", c.win.Unmap())
	c.visible = false
	mode := c.mode
	listeners := c.listeners
	c.mu.Unlock()

	if applied {
		emit(listeners, Event{Kind: EventModeApplied, Mode: mode})
	}
	c.logger.Debug("overlay hidden", "mode", mode)
	emit(listeners, Event{Kind: EventHidden, Mode: mode})
	c.warn("yield focus", c.win.YieldFocus())
}

// Toggle hides a visible window and shows a hidden one.
func (c *Controller) Toggle() {
	if c.Visible() {
		c.Hide()
		return
	}
	c.Show()
}

// SetMode switches to mode, saving the outgoing mode's bounds and animating
// to the incoming mode's saved bounds. A mode change during a running
// animation cancels it and animates from the current frame.
func (c *Controller) SetMode(mode bounds.Mode) {
	c.mu.Lock()
	if mode == c.mode {
		c.mu.Unlock()
		return
	}

	if c.anim == nil {
		c.persistLocked()
	}
	c.cancelAnimationLocked()

	from, err := c.win.Bounds()
	if err != nil {
		c.warn("read bounds", err)
		from = c.store.Get(c.mode)
	}
	target := c.store.Get(mode)
	c.warn("set min size", c.win.SetMinSize(bounds.MinSize(mode)))
	c.mode = mode
	listeners := c.listeners
	applied := c.startAnimationLocked(from, target)
	c.mu.Unlock()

	c.logger.Debug("overlay mode changed", "mode", mode, "from", from.String(), "to", target.String())
	emit(listeners, Event{Kind: EventModeChanged, Mode: mode})
	if applied {
		emit(listeners, Event{Kind: EventModeApplied, Mode: mode})
	}
}

// OnBlur hides the window when it loses focus while visible.
func (c *Controller) OnBlur() {
	if c.Visible() {
		c.Hide()
	}
}

// OnClose handles a window manager close request: the window is hidden,
// never destroyed.
func (c *Controller) OnClose() {
	if c.Visible() {
		c.Hide()
		return
	}
	c.mu.Lock()
	c.persistLocked()
	c.mu.Unlock()
}

// OnGeometryChanged persists a user resize or move. Geometry reported while
// an animation runs is ignored.
func (c *Controller) OnGeometryChanged(b bounds.WindowBounds) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.anim != nil || !c.visible {
		return
	}
	if err := c.store.Set(c.mode, b); err != nil {
		c.logger.Warn("failed to persist window bounds", "mode", c.mode, "error", err)
	}
}

// SaveBounds flushes the current window bounds for the active mode.
func (c *Controller) SaveBounds() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.anim != nil {
		return
	}
	c.persistLocked()
}

func (c *Controller) persistLocked() {
	b, err := c.win.Bounds()
	if err != nil {
		c.logger.Warn("failed to read window bounds", "error", err)
		return
	}
	if err := c.store.Set(c.mode, b); err != nil {
		c.logger.Warn("failed to persist window bounds", "mode", c.mode, "error", err)
	}
}

// startAnimationLocked begins a resize. It reports true when the target
// was applied immediately because no resize was needed.
func (c *Controller) startAnimationLocked(from, to bounds.WindowBounds) bool {
	a := NewAnimator(from, to, c.duration)
	if from.Width == to.Width && from.Height == to.Height {
		b, _ := a.Advance(0)
		c.warn("apply bounds", c.win.SetBounds(b))
		return true
	}
	c.animGen++
	c.anim = a
	c.animLast = c.clock.Now()
	c.scheduleFrameLocked(c.animGen)
	return false
}

func (c *Controller) scheduleFrameLocked(gen int) {
	c.animTimer = c.clock.AfterFunc(c.frame, func() { c.stepAnimation(gen) })
}

func (c *Controller) stepAnimation(gen int) {
	c.mu.Lock()
	if gen != c.animGen || c.anim == nil {
		c.mu.Unlock()
		return
	}
	now := c.clock.Now()
	elapsed := now.Sub(c.animLast)
	c.animLast = now
	frame, done := c.anim.Advance(elapsed)
	c.warn("apply frame", c.win.SetBounds(frame))
	if !done {
		c.scheduleFrameLocked(gen)
		c.mu.Unlock()
		return
	}
	c.anim = nil
	c.animTimer = nil
	mode := c.mode
	listeners := c.listeners
	c.mu.Unlock()

	emit(listeners, Event{Kind: EventModeApplied, Mode: mode})
}

// finishAnimationLocked snaps a running animation to its target. It
// reports whether there was one.
func (c *Controller) finishAnimationLocked() bool {
	if c.anim == nil {
		return false
	}
	target := c.anim.Target()
	c.cancelAnimationLocked()
	c.warn("apply bounds", c.win.SetBounds(target))
	return true
}

func (c *Controller) cancelAnimationLocked() {
	if c.animTimer != nil {
		c.animTimer.Stop()
		c.animTimer = nil
	}
	c.anim = nil
	c.animGen++
}

func (c *Controller) warn(op string, err error) {
	if err != nil {
		c.logger.Warn("overlay window operation failed", "op", op, "error", err)
	}
}

func emit(listeners []Listener, ev Event) {
	for _, l := range listeners {
		l(ev)
	}
}
