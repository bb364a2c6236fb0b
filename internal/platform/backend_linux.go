//go:build linux

package platform

import (
	"fmt"
	"image"

	"github.com/1broseidon/cornerfix/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
//
// X11 root coordinates are y-down; everything crossing this boundary is
// flipped to the y-up convention used by the engine.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh
// X11 connection to display ("" means $DISPLAY).
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, err
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop pumps X events until StopEventLoop is called (blocking).
func (b *LinuxBackend) EventLoop() {
	b.conn.EventLoop()
}

// StopEventLoop makes a running EventLoop return.
func (b *LinuxBackend) StopEventLoop() {
	b.conn.Quit()
}

// FrontmostApplication returns the application owning the active window.
func (b *LinuxBackend) FrontmostApplication() (App, error) {
	win, err := b.conn.GetActiveWindow()
	if err != nil {
		return App{}, fmt.Errorf("read _NET_ACTIVE_WINDOW: %w", err)
	}
	if win == 0 {
		return App{}, ErrNotFound
	}
	return App{
		PID:    b.conn.GetWindowPID(win),
		Name:   b.conn.GetWindowAppName(win),
		Window: WindowID(win),
	}, nil
}

// FocusedWindow returns the application's focused window if it is still the
// active window and is an ordinary application window.
func (b *LinuxBackend) FocusedWindow(app App) (WindowID, error) {
	if app.Window == 0 {
		return 0, ErrNotFound
	}
	active, err := b.conn.GetActiveWindow()
	if err != nil {
		return 0, fmt.Errorf("read _NET_ACTIVE_WINDOW: %w", err)
	}
	if WindowID(active) != app.Window {
		return 0, ErrNotFound
	}
	if !b.conn.IsNormalWindow(active) {
		return 0, ErrNotFound
	}
	return app.Window, nil
}

// Geometry returns the framed window rectangle in y-up screen coordinates.
func (b *LinuxBackend) Geometry(windowID WindowID) (Rect, error) {
	r, err := b.conn.GetWindowRect(xproto.Window(windowID))
	if err != nil {
		return Rect{}, err
	}
	if r.Width <= 0 || r.Height <= 0 {
		return Rect{}, ErrNotFound
	}
	return b.toScreen(r.X, r.Y, r.Width, r.Height), nil
}

// VisibleArea returns the usable area of the active monitor.
func (b *LinuxBackend) VisibleArea() (Rect, error) {
	mon, err := b.conn.GetActiveMonitor()
	if err != nil {
		return Rect{}, err
	}
	return b.toScreen(mon.X, mon.Y, mon.Width, mon.Height), nil
}

// NewSurface creates an overlay surface of size×size pixels.
func (b *LinuxBackend) NewSurface(size int) (Surface, error) {
	s, err := b.conn.NewSurface(size)
	if err != nil {
		return nil, err
	}
	return &linuxSurface{backend: b, surface: s}, nil
}

// WatchFrontmost forwards active-application changes to notify.
func (b *LinuxBackend) WatchFrontmost(notify func()) error {
	return b.conn.WatchActiveApp(notify)
}

func (b *LinuxBackend) rootHeight() int {
	_, h := b.conn.RootSize()
	return h
}

// toScreen converts a y-down root rectangle to y-up screen coordinates.
func (b *LinuxBackend) toScreen(x, y, width, height int) Rect {
	return Rect{X: x, Y: b.rootHeight() - (y + height), Width: width, Height: height}
}

type linuxSurface struct {
	backend *LinuxBackend
	surface *x11.Surface
}

func (s *linuxSurface) SetFrame(frame Rect) error {
	if frame.Width != s.surface.Size() || frame.Height != s.surface.Size() {
		return fmt.Errorf("surface is %dpx square, frame is %dx%d", s.surface.Size(), frame.Width, frame.Height)
	}
	yDown := s.backend.rootHeight() - frame.MaxY()
	return s.surface.Move(frame.X, yDown)
}

func (s *linuxSurface) Show() error                  { return s.surface.Map() }
func (s *linuxSurface) Hide() error                  { return s.surface.Unmap() }
func (s *linuxSurface) Paint(mask *image.RGBA) error { return s.surface.Paint(mask) }
func (s *linuxSurface) Destroy() error               { return s.surface.Destroy() }
