package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

const (
	allDesktops      = 0xFFFFFFFF
	sourceIndication = 2 // pager/direct action
)

// ActiveWindow returns the window the window manager reports as focused.
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
// The message is built by hand because the xgbutil ewmh request helpers
// panic on this library version (uint vs int type assertion).
func (c *Connection) FocusWindow(win xproto.Window) error {
	return c.sendRootMessage(win, "_NET_ACTIVE_WINDOW", sourceIndication, 0, 0, 0, 0)
}

// SetWindowDesktop moves a mapped window to desktop, or to every desktop
// when all is true.
func (c *Connection) SetWindowDesktop(win xproto.Window, desktop int, all bool) error {
	d := uint32(desktop)
	if all {
		d = allDesktops
	}
	return c.sendRootMessage(win, "_NET_WM_DESKTOP", d, sourceIndication, 0, 0, 0)
}

func (c *Connection) sendRootMessage(win xproto.Window, atomName string, data ...uint32) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len(atomName)), atomName).Reply()
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", atomName, err)
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
