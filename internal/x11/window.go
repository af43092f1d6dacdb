package x11

import (
	"fmt"
	"sync"

	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/panel"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	wmClassInstance = "quickgerman"
	wmClassName     = "QuickGerman"

	stateAbove       = "_NET_WM_STATE_ABOVE"
	stateSticky      = "_NET_WM_STATE_STICKY"
	stateSkipTaskbar = "_NET_WM_STATE_SKIP_TASKBAR"
	stateSkipPager   = "_NET_WM_STATE_SKIP_PAGER"
)

// WindowHandlers receives events from the overlay window. Handlers run on
// the X event loop goroutine.
type WindowHandlers struct {
	OnBlur     func()
	OnClose    func()
	OnGeometry func(bounds.WindowBounds)
	OnKey      func(panel.KeyInput)
}

// OverlayOptions configures NewOverlayWindow.
type OverlayOptions struct {
	Title string
	// Font is the preferred core X font; common fixed-width fonts are
	// tried after it.
	Font     string
	Handlers WindowHandlers
}

// OverlayWindow is the managed top-level window that shows the panel.
type OverlayWindow struct {
	conn     *Connection
	win      *xwindow.Window
	handlers WindowHandlers

	font       xproto.Font
	gc         xproto.Gcontext
	charWidth  int
	ascent     int
	lineHeight int

	mu       sync.Mutex
	mapped   bool
	above    bool
	sticky   bool
	previous xproto.Window
	width    int
	height   int
	lines    []panel.Line
	palette  Palette
}

// NewOverlayWindow creates the overlay window unmapped.
func NewOverlayWindow(c *Connection, opts OverlayOptions) (*OverlayWindow, error) {
	xu := c.XUtil
	win, err := xwindow.Generate(xu)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}

	pal := PaletteFor("")
	eventMask := xproto.EventMaskExposure | xproto.EventMaskKeyPress |
		xproto.EventMaskFocusChange | xproto.EventMaskStructureNotify
	size := bounds.Default(bounds.ModeTranslation)
	if err := win.CreateChecked(c.Root, 0, 0, size.Width, size.Height,
		xproto.CwBackPixel|xproto.CwEventMask, pal.Background, uint32(eventMask)); err != nil {
		return nil, fmt.Errorf("failed to create overlay window: %w", err)
	}

	w := &OverlayWindow{
		conn:     c,
		win:      win,
		handlers: opts.Handlers,
		width:    size.Width,
		height:   size.Height,
		palette:  pal,
	}
	if err := w.initResources(opts.Font); err != nil {
		win.Destroy()
		return nil, err
	}

	id := win.Id
	_ = icccm.WmClassSet(xu, id, &icccm.WmClass{Instance: wmClassInstance, Class: wmClassName})
	_ = icccm.WmNameSet(xu, id, opts.Title)
	_ = ewmh.WmNameSet(xu, id, opts.Title)
	_ = icccm.WmProtocolsSet(xu, id, []string{"WM_DELETE_WINDOW"})
	_ = ewmh.WmWindowTypeSet(xu, id, []string{"_NET_WM_WINDOW_TYPE_UTILITY"})
	_ = ewmh.WmStateSet(xu, id, w.states())

	w.connectEvents()
	return w, nil
}

// ID returns the X window id.
func (w *OverlayWindow) ID() xproto.Window { return w.win.Id }

func (w *OverlayWindow) initResources(preferred string) error {
	conn := w.conn.XUtil.Conn()

	font, err := xproto.NewFontId(conn)
	if err != nil {
		return fmt.Errorf("failed to allocate font id: %w", err)
	}
	opened := false
	for _, name := range fontCandidates(preferred) {
		if err := xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check(); err == nil {
			opened = true
			break
		}
	}
	if !opened {
		return fmt.Errorf("no usable core X font")
	}
	w.font = font

	w.charWidth, w.ascent, w.lineHeight = 8, 11, 15
	if info, err := xproto.QueryFont(conn, xproto.Fontable(font)).Reply(); err == nil {
		if cw := int(info.MaxBounds.CharacterWidth); cw > 0 {
			w.charWidth = cw
		}
		if asc := int(info.FontAscent); asc > 0 {
			w.ascent = asc
			w.lineHeight = asc + int(info.FontDescent) + linePadding
		}
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		return fmt.Errorf("failed to allocate gc id: %w", err)
	}
	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(w.win.Id),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{w.palette.Foreground, w.palette.Background, uint32(font), 0},
	).Check()
	if err != nil {
		xproto.CloseFont(conn, font)
		return fmt.Errorf("failed to create gc: %w", err)
	}
	w.gc = gc
	return nil
}

func fontCandidates(preferred string) []string {
	names := []string{"9x15", "8x13", "fixed", "6x13"}
	if preferred == "" {
		return names
	}
	out := []string{preferred}
	for _, n := range names {
		if n != preferred {
			out = append(out, n)
		}
	}
	return out
}

func (w *OverlayWindow) connectEvents() {
	xu := w.conn.XUtil
	id := w.win.Id

	xevent.FocusOutFun(func(_ *xgbutil.XUtil, ev xevent.FocusOutEvent) {
		if ev.Mode == xproto.NotifyModeGrab || ev.Mode == xproto.NotifyModeUngrab {
			return
		}
		if ev.Detail == xproto.NotifyDetailInferior || ev.Detail == xproto.NotifyDetailPointer {
			return
		}
		if w.handlers.OnBlur != nil {
			w.handlers.OnBlur()
		}
	}).Connect(xu, id)

	xevent.ClientMessageFun(func(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		if icccm.IsDeleteProtocol(xu, ev) && w.handlers.OnClose != nil {
			w.handlers.OnClose()
		}
	}).Connect(xu, id)

	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		w.mu.Lock()
		resized := int(ev.Width) != w.width || int(ev.Height) != w.height
		w.width, w.height = int(ev.Width), int(ev.Height)
		w.mu.Unlock()
		if resized {
			w.redraw()
		}
		if w.handlers.OnGeometry == nil {
			return
		}
		if b, err := w.Bounds(); err == nil {
			w.handlers.OnGeometry(b)
		}
	}).Connect(xu, id)

	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 {
			w.redraw()
		}
	}).Connect(xu, id)

	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		if w.handlers.OnKey == nil {
			return
		}
		w.handlers.OnKey(keyInput(keybind.LookupString(xu, ev.State, ev.Detail), ev.State))
	}).Connect(xu, id)
}

func keyInput(name string, state uint16) panel.KeyInput {
	return panel.KeyInput{
		Name:  name,
		Ctrl:  state&xproto.ModMaskControl != 0,
		Alt:   state&xproto.ModMask1 != 0,
		Shift: state&xproto.ModMaskShift != 0,
	}
}

func (w *OverlayWindow) states() []string {
	states := []string{stateSkipTaskbar, stateSkipPager}
	if w.above {
		states = append(states, stateAbove)
	}
	if w.sticky {
		states = append(states, stateSticky)
	}
	return states
}

// Map shows the window, remembering which window held focus so YieldFocus
// can return it.
func (w *OverlayWindow) Map() error {
	if active, err := w.conn.ActiveWindow(); err == nil && active != w.win.Id {
		w.mu.Lock()
		w.previous = active
		w.mu.Unlock()
	}

	w.mu.Lock()
	states := w.states()
	sticky := w.sticky
	w.mapped = true
	w.mu.Unlock()

	xu := w.conn.XUtil
	_ = ewmh.WmStateSet(xu, w.win.Id, states)
	if sticky {
		_ = ewmh.WmDesktopSet(xu, w.win.Id, allDesktops)
	}
	w.win.Map()
	return nil
}

// Unmap hides the window.
func (w *OverlayWindow) Unmap() error {
	w.mu.Lock()
	w.mapped = false
	w.mu.Unlock()
	w.win.Unmap()
	return nil
}

// Focus asks the window manager to activate the overlay.
func (w *OverlayWindow) Focus() error {
	if err := w.conn.FocusWindow(w.win.Id); err != nil {
		w.win.Focus()
		return err
	}
	return nil
}

// YieldFocus reactivates the window that was focused before Map.
func (w *OverlayWindow) YieldFocus() error {
	w.mu.Lock()
	prev := w.previous
	w.previous = 0
	w.mu.Unlock()
	if prev == 0 {
		return nil
	}
	return w.conn.FocusWindow(prev)
}

// SetAlwaysOnTop toggles _NET_WM_STATE_ABOVE.
func (w *OverlayWindow) SetAlwaysOnTop(on bool) error {
	w.mu.Lock()
	w.above = on
	mapped := w.mapped
	states := w.states()
	w.mu.Unlock()
	return w.applyState(mapped, states, stateAbove, on)
}

// SetAllWorkspaces toggles _NET_WM_STATE_STICKY and the all-desktops index.
func (w *OverlayWindow) SetAllWorkspaces(on bool) error {
	w.mu.Lock()
	w.sticky = on
	mapped := w.mapped
	states := w.states()
	w.mu.Unlock()
	if err := w.applyState(mapped, states, stateSticky, on); err != nil {
		return err
	}
	if !on {
		return nil
	}
	if mapped {
		return w.conn.SetWindowDesktop(w.win.Id, 0, true)
	}
	return ewmh.WmDesktopSet(w.conn.XUtil, w.win.Id, allDesktops)
}

// applyState writes the property directly while unmapped and sends a
// request to the window manager once the window is managed.
func (w *OverlayWindow) applyState(mapped bool, states []string, atom string, on bool) error {
	xu := w.conn.XUtil
	if !mapped {
		return ewmh.WmStateSet(xu, w.win.Id, states)
	}
	action := ewmh.StateRemove
	if on {
		action = ewmh.StateAdd
	}
	return ewmh.WmStateReq(xu, w.win.Id, action, atom)
}

// Bounds returns the window's client size and the root-relative origin of
// its frame, the same origin SetBounds positions.
func (w *OverlayWindow) Bounds() (bounds.WindowBounds, error) {
	x, y, width, height, err := w.conn.WindowGeometry(w.win.Id)
	if err != nil {
		return bounds.WindowBounds{}, err
	}
	x, y = frameOrigin(x, y, w.conn.GetFrameExtents(w.win.Id))
	return bounds.WindowBounds{Width: width, Height: height}.At(x, y), nil
}

// SetBounds moves and resizes the window. Bounds without a position are
// centered on the active monitor.
func (w *OverlayWindow) SetBounds(b bounds.WindowBounds) error {
	x, y := 0, 0
	if b.Positioned() {
		x, y = *b.X, *b.Y
	} else if mon, err := w.conn.GetActiveMonitor(); err == nil {
		x, y = mon.Center(b.Width, b.Height)
	}

	w.mu.Lock()
	mapped := w.mapped
	w.mu.Unlock()

	if mapped {
		return w.conn.MoveResizeWindow(w.win.Id, x, y, b.Width, b.Height)
	}
	w.win.MoveResize(x, y, b.Width, b.Height)
	return nil
}

// SetMinSize publishes WM_NORMAL_HINTS with the minimum size.
func (w *OverlayWindow) SetMinSize(s bounds.Size) error {
	return icccm.WmNormalHintsSet(w.conn.XUtil, w.win.Id, &icccm.NormalHints{
		Flags:     icccm.SizeHintPMinSize,
		MinWidth:  uint(s.Width),
		MinHeight: uint(s.Height),
	})
}

// Destroy releases the window and its drawing resources.
func (w *OverlayWindow) Destroy() {
	conn := w.conn.XUtil.Conn()
	xevent.Detach(w.conn.XUtil, w.win.Id)
	if w.gc != 0 {
		xproto.FreeGC(conn, w.gc)
	}
	if w.font != 0 {
		xproto.CloseFont(conn, w.font)
	}
	w.win.Destroy()
}
