package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WatchActiveApp calls onChange from the event loop goroutine each time
// _NET_ACTIVE_WINDOW moves to a window owned by a different application.
// Focus moving between windows of the same application is not reported.
func (c *Connection) WatchActiveApp(onChange func()) error {
	atom, err := xprop.Atm(c.XUtil, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return fmt.Errorf("intern _NET_ACTIVE_WINDOW: %w", err)
	}

	root := xwindow.New(c.XUtil, c.Root)
	if err := root.Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("listen for root property changes: %w", err)
	}

	last := c.activeOwner()
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if ev.Atom != atom {
			return
		}
		owner := c.activeOwner()
		if owner == last {
			return
		}
		last = owner
		onChange()
	}).Connect(c.XUtil, c.Root)

	return nil
}

type appOwner struct {
	pid  int
	name string
}

func (c *Connection) activeOwner() appOwner {
	win, err := c.GetActiveWindow()
	if err != nil || win == 0 {
		return appOwner{}
	}
	return appOwner{pid: c.GetWindowPID(win), name: c.GetWindowAppName(win)}
}
