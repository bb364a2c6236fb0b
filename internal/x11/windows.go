package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// WindowRect is a window rectangle in X11 root coordinates (y-down).
type WindowRect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// GetActiveWindow returns the window named by _NET_ACTIVE_WINDOW. Zero means
// nothing is focused.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	return len(types) == 0
}

// GetWindowPID returns _NET_WM_PID, or 0 when the client did not set it.
func (c *Connection) GetWindowPID(windowID xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return int(pid)
}

// GetWindowAppName returns the WM_CLASS class of a window, falling back to
// its title when no class is set.
func (c *Connection) GetWindowAppName(windowID xproto.Window) string {
	if wmClass, err := icccm.WmClassGet(c.XUtil, windowID); err == nil {
		if class := strings.TrimSpace(wmClass.Class); class != "" {
			return class
		}
	}

	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}

	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// GetFrameExtents returns the window decoration sizes (if available)
func (c *Connection) GetFrameExtents(windowID xproto.Window) (left, right, top, bottom int) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return 0, 0, 0, 0
	}
	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom)
}

// GetWindowRect returns the outer rectangle of a client window in root
// coordinates, including the frame drawn around it by the window manager.
func (c *Connection) GetWindowRect(windowID xproto.Window) (WindowRect, error) {
	conn := c.XUtil.Conn()

	geom, err := xproto.GetGeometry(conn, xproto.Drawable(windowID)).Reply()
	if err != nil {
		return WindowRect{}, fmt.Errorf("get geometry of 0x%x: %w", uint32(windowID), err)
	}

	translate, err := xproto.TranslateCoordinates(conn, windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return WindowRect{}, fmt.Errorf("translate coordinates of 0x%x: %w", uint32(windowID), err)
	}

	left, right, top, bottom := c.GetFrameExtents(windowID)
	return WindowRect{
		X:      int(translate.DstX) - left,
		Y:      int(translate.DstY) - top,
		Width:  int(geom.Width) + left + right,
		Height: int(geom.Height) + top + bottom,
	}, nil
}
