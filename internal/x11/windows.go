package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// MoveResizeWindow moves and resizes a top-level window, asking the window
// manager first and configuring the window directly if that fails.
func (c *Connection) MoveResizeWindow(win xproto.Window, x, y, width, height int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if err := ewmh.MoveresizeWindow(c.XUtil, win, x, y, width, height); err != nil {
		xwindow.New(c.XUtil, win).MoveResize(x, y, width, height)
	}
	return nil
}

// WindowGeometry returns a window's root-relative origin and size.
func (c *Connection) WindowGeometry(win xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get geometry: %w", err)
	}
	origin, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to translate coordinates: %w", err)
	}
	return int(origin.DstX), int(origin.DstY), int(geom.Width), int(geom.Height), nil
}

// FrameExtents is the decoration the window manager draws around a client.
type FrameExtents struct {
	Left, Right, Top, Bottom int
}

// GetFrameExtents returns the window decoration sizes, or zeros when the
// window manager does not publish _NET_FRAME_EXTENTS.
func (c *Connection) GetFrameExtents(win xproto.Window) FrameExtents {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, win)
	if err != nil || extents == nil {
		return FrameExtents{}
	}
	return FrameExtents{
		Left:   int(extents.Left),
		Right:  int(extents.Right),
		Top:    int(extents.Top),
		Bottom: int(extents.Bottom),
	}
}

// frameOrigin converts a client's root-relative origin into the origin of
// its frame, which is where a move request with NorthWest gravity places it.
func frameOrigin(clientX, clientY int, ext FrameExtents) (x, y int) {
	return clientX - ext.Left, clientY - ext.Top
}
