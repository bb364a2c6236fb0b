package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display in root coordinates.
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

func (m Monitor) contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTCs report no size or no outputs.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
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

// GetActiveMonitor returns the monitor holding the focused window, reduced to
// its usable work area (panels and docks excluded).
func (c *Connection) GetActiveMonitor() (Monitor, error) {
	if c.XUtil == nil {
		return Monitor{}, fmt.Errorf("no X connection")
	}
	monitors, err := c.GetMonitors()
	if err != nil || len(monitors) == 0 {
		// No RandR or no outputs (Xvfb, nested servers): use the whole root.
		w, h := c.RootSize()
		monitors = []Monitor{{Name: "root", Width: w, Height: h}}
	}

	active := -1
	if win, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && win != 0 {
		if rect, err := c.GetWindowRect(win); err == nil {
			active = monitorAt(monitors, rect.X+rect.Width/2, rect.Y+rect.Height/2)
		}
	}
	if active < 0 {
		if pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
			active = monitorAt(monitors, int(pointer.RootX), int(pointer.RootY))
		}
	}
	if active < 0 {
		active = 0
	}

	mon := monitors[active]
	if !c.applyDockStruts(&mon) {
		c.applyWorkArea(&mon)
	}
	return mon, nil
}

func monitorAt(monitors []Monitor, x, y int) int {
	for i := range monitors {
		if monitors[i].contains(x, y) {
			return i
		}
	}
	return -1
}

// applyWorkArea clips the monitor to _NET_WORKAREA of the current desktop.
func (c *Connection) applyWorkArea(mon *Monitor) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}

	idx := 0
	if desktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(desktop) < len(workArea) {
		idx = int(desktop)
	}
	wa := workArea[idx]

	isect := intersect(
		span{mon.X, mon.Y, mon.X + mon.Width, mon.Y + mon.Height},
		span{int(wa.X), int(wa.Y), int(wa.X) + int(wa.Width), int(wa.Y) + int(wa.Height)},
	)
	if isect.empty() {
		return
	}
	mon.X, mon.Y = isect.x1, isect.y1
	mon.Width, mon.Height = isect.x2-isect.x1, isect.y2-isect.y1
}

// applyDockStruts subtracts the struts of dock windows overlapping the
// monitor. It reports whether any strut applied.
func (c *Connection) applyDockStruts(mon *Monitor) bool {
	rootW, rootH := c.RootSize()

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}

	var left, right, top, bottom int
	monSpan := span{mon.X, mon.Y, mon.X + mon.Width, mon.Y + mon.Height}

	for _, win := range clients {
		if !c.isDock(win) {
			continue
		}

		sp, err := ewmh.WmStrutPartialGet(c.XUtil, win)
		if err != nil {
			// Some docks only set _NET_WM_STRUT (no partial ranges).
			s, err := ewmh.WmStrutGet(c.XUtil, win)
			if err != nil {
				continue
			}
			sp = &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY: uint(rootH - 1), RightEndY: uint(rootH - 1),
				TopEndX: uint(rootW - 1), BottomEndX: uint(rootW - 1),
			}
		}

		if sp.Top > 0 {
			isect := intersect(monSpan, span{int(sp.TopStartX), 0, int(sp.TopEndX) + 1, int(sp.Top)})
			top = max(top, isect.height())
		}
		if sp.Bottom > 0 {
			isect := intersect(monSpan, span{int(sp.BottomStartX), rootH - int(sp.Bottom), int(sp.BottomEndX) + 1, rootH})
			bottom = max(bottom, isect.height())
		}
		if sp.Left > 0 {
			isect := intersect(monSpan, span{0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY) + 1})
			left = max(left, isect.width())
		}
		if sp.Right > 0 {
			isect := intersect(monSpan, span{rootW - int(sp.Right), int(sp.RightStartY), rootW, int(sp.RightEndY) + 1})
			right = max(right, isect.width())
		}
	}

	if left == 0 && right == 0 && top == 0 && bottom == 0 {
		return false
	}

	mon.X += left
	mon.Y += top
	mon.Width = max(mon.Width-left-right, 1)
	mon.Height = max(mon.Height-top-bottom, 1)
	return true
}

func (c *Connection) isDock(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// span is a half-open box [x1,x2) × [y1,y2).
type span struct {
	x1, y1, x2, y2 int
}

func (s span) empty() bool { return s.x2 <= s.x1 || s.y2 <= s.y1 }
func (s span) width() int  { return s.x2 - s.x1 }
func (s span) height() int { return s.y2 - s.y1 }

func intersect(a, b span) span {
	out := span{max(a.x1, b.x1), max(a.y1, b.y1), min(a.x2, b.x2), min(a.y2, b.y2)}
	if out.empty() {
		return span{}
	}
	return out
}
