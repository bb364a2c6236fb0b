package platform

import (
	"errors"
	"image"
)

// ErrNotFound reports that a query had no answer right now: no frontmost
// application, no focused window, or no readable geometry.
var ErrNotFound = errors.New("not found")

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
//
// Coordinates are y-up: Y is the distance from the bottom edge of the root
// screen to the bottom edge of the rectangle.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) MinX() int { return r.X }
func (r Rect) MinY() int { return r.Y }
func (r Rect) MaxX() int { return r.X + r.Width }
func (r Rect) MaxY() int { return r.Y + r.Height }

// Point is a screen position in y-up coordinates.
type Point struct {
	X int
	Y int
}

// App identifies the frontmost application.
type App struct {
	PID    int
	Name   string
	Window WindowID
}

// Bridge answers read-only questions about the live desktop state.
//
// Every method may fail. ErrNotFound means "no target at this instant"; any
// other error means the query could not be made at all.
type Bridge interface {
	FrontmostApplication() (App, error)
	FocusedWindow(app App) (WindowID, error)
	Geometry(windowID WindowID) (Rect, error)
}

// Screen reports the visible working area of the active display.
type Screen interface {
	VisibleArea() (Rect, error)
}

// Surface is one borderless, click-through, always-on-top overlay window.
type Surface interface {
	SetFrame(frame Rect) error
	Show() error
	Hide() error
	Paint(mask *image.RGBA) error
	Destroy() error
}

// SurfaceFactory constructs square overlay surfaces of a fixed size.
type SurfaceFactory interface {
	NewSurface(size int) (Surface, error)
}

// Backend is everything the overlay engine needs from a window system.
type Backend interface {
	Bridge
	Screen
	SurfaceFactory
	// WatchFrontmost calls notify whenever a different application becomes
	// frontmost. notify must not block.
	WatchFrontmost(notify func()) error
}
