package x11

import (
	"os"
	"strings"

	"github.com/1broseidon/quickgerman/internal/panel"
	"github.com/1broseidon/quickgerman/internal/settings"
	"github.com/BurntSushi/xgb/xproto"
)

const (
	paddingX    = 14
	paddingY    = 12
	linePadding = 3
)

// Palette holds the pixel values used to draw the panel.
type Palette struct {
	Background uint32
	Foreground uint32
	Dim        uint32
	Accent     uint32
	Error      uint32
	SelectedBg uint32
	SelectedFg uint32
}

var (
	darkPalette = Palette{
		Background: 0x1f2933,
		Foreground: 0xf5f7fa,
		Dim:        0x95a5a6,
		Accent:     0x3498db,
		Error:      0xe74c3c,
		SelectedBg: 0x3498db,
		SelectedFg: 0xffffff,
	}
	lightPalette = Palette{
		Background: 0xf5f7fa,
		Foreground: 0x1f2933,
		Dim:        0x7f8c8d,
		Accent:     0x2471a3,
		Error:      0xc0392b,
		SelectedBg: 0x2471a3,
		SelectedFg: 0xffffff,
	}
)

// PaletteFor returns the colors for a theme. The system theme follows
// GTK_THEME when it names a light or dark variant and is dark otherwise.
func PaletteFor(theme settings.Theme) Palette {
	switch theme {
	case settings.ThemeLight:
		return lightPalette
	case settings.ThemeDark:
		return darkPalette
	}
	gtk := strings.ToLower(os.Getenv("GTK_THEME"))
	if strings.Contains(gtk, "light") && !strings.Contains(gtk, "dark") {
		return lightPalette
	}
	return darkPalette
}

func (p Palette) colors(style panel.Style) (fg, bg uint32) {
	switch style {
	case panel.StyleDim:
		return p.Dim, p.Background
	case panel.StyleAccent:
		return p.Accent, p.Background
	case panel.StyleError:
		return p.Error, p.Background
	case panel.StyleSelected:
		return p.SelectedFg, p.SelectedBg
	default:
		return p.Foreground, p.Background
	}
}

// TextGrid returns how many columns and rows of text fit in the window.
func (w *OverlayWindow) TextGrid() (cols, rows int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return gridFor(w.width, w.height, w.charWidth, w.lineHeight)
}

func gridFor(width, height, charWidth, lineHeight int) (cols, rows int) {
	if charWidth < 1 || lineHeight < 1 {
		return 1, 1
	}
	cols = max((width-2*paddingX)/charWidth, 1)
	rows = max((height-2*paddingY)/lineHeight, 1)
	return cols, rows
}

// Render replaces the panel contents and draws them.
func (w *OverlayWindow) Render(lines []panel.Line, pal Palette) {
	w.mu.Lock()
	w.lines = append(w.lines[:0], lines...)
	w.palette = pal
	w.mu.Unlock()
	w.redraw()
}

func (w *OverlayWindow) redraw() {
	w.mu.Lock()
	lines := append([]panel.Line(nil), w.lines...)
	pal := w.palette
	cols, _ := gridFor(w.width, w.height, w.charWidth, w.lineHeight)
	w.mu.Unlock()

	conn := w.conn.XUtil.Conn()
	xproto.ChangeWindowAttributes(conn, w.win.Id, xproto.CwBackPixel, []uint32{pal.Background})
	xproto.ClearArea(conn, false, w.win.Id, 0, 0, 0, 0)

	baseline := paddingY + w.ascent
	for i, line := range lines {
		text := line.Text
		if line.Style == panel.StyleSelected {
			if n := cols - len([]rune(text)); n > 0 {
				text += strings.Repeat(" ", n)
			}
		}
		text = panel.Latin1(text)
		if text == "" {
			continue
		}
		if len(text) > 255 {
			text = text[:255]
		}
		fg, bg := pal.colors(line.Style)
		xproto.ChangeGC(conn, w.gc, xproto.GcForeground|xproto.GcBackground, []uint32{fg, bg})
		xproto.ImageText8(
			conn,
			byte(len(text)),
			xproto.Drawable(w.win.Id),
			w.gc,
			int16(paddingX),
			int16(baseline+i*w.lineHeight),
			text,
		)
	}
}
