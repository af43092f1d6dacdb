package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point lies on the monitor.
func (m Monitor) Contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// Center returns the origin that centers a width x height window on m,
// clamped so the window's top-left stays on the monitor.
func (m Monitor) Center(width, height int) (int, int) {
	x := m.X + (m.Width-width)/2
	y := m.Y + (m.Height-height)/2
	if x < m.X {
		x = m.X
	}
	if y < m.Y {
		y = m.Y
	}
	return x, y
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}

	return monitors, nil
}

// GetActiveMonitor returns the monitor holding the focused window, else the
// one under the pointer, else the first. Its geometry is clipped to the
// EWMH work area so panels are excluded.
func (c *Connection) GetActiveMonitor() (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}

	var x, y int
	found := false
	if win, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && win != 0 {
		if wx, wy, ww, wh, err := c.WindowGeometry(win); err == nil {
			x, y, found = wx+ww/2, wy+wh/2, true
		}
	}
	if !found {
		if ptr, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
			x, y, found = int(ptr.RootX), int(ptr.RootY), true
		}
	}

	active := monitors[0]
	if found {
		active = monitorAt(monitors, x, y)
	}

	if workArea, err := ewmh.WorkareaGet(c.XUtil); err == nil && len(workArea) > 0 {
		idx := 0
		if desk, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(desk) < len(workArea) {
			idx = int(desk)
		}
		wa := workArea[idx]
		active = clipToWorkArea(active, int(wa.X), int(wa.Y), int(wa.Width), int(wa.Height))
	}
	return &active, nil
}

func monitorAt(monitors []Monitor, x, y int) Monitor {
	for _, m := range monitors {
		if m.Contains(x, y) {
			return m
		}
	}
	return monitors[0]
}

func clipToWorkArea(m Monitor, waX, waY, waW, waH int) Monitor {
	x1 := max(m.X, waX)
	y1 := max(m.Y, waY)
	x2 := min(m.X+m.Width, waX+waW)
	y2 := min(m.Y+m.Height, waY+waH)
	if x2 <= x1 || y2 <= y1 {
		return m
	}
	m.X, m.Y, m.Width, m.Height = x1, y1, x2-x1, y2-y1
	return m
}
