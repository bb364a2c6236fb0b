// Package corner holds the per-corner geometry of the overlay masks: where a
// corner surface sits on a window and which path it fills.
//
// All coordinates are y-up. Inside a surface the origin is the bottom-left
// pixel of the size×size square.
package corner

import (
	"fmt"

	"github.com/1broseidon/cornerfix/internal/platform"
)

// Corner identifies one of the four corners of a window.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

// All lists every corner in construction order.
var All = [...]Corner{TopLeft, TopRight, BottomLeft, BottomRight}

// Vec is a point in surface-local coordinates.
type Vec struct {
	X float32
	Y float32
}

// unit is a point of the unit square; scaled by the surface size it becomes
// a path vertex, and it doubles as the anchor that places the surface.
type unit struct {
	x, y int
}

func (u unit) scale(size float32) Vec {
	return Vec{X: float32(u.x) * size, Y: float32(u.y) * size}
}

// geometry is one row of the corner table. The true corner is both the path
// start and the quadratic control point; the straight edge runs along one
// side of the square and the curve returns along the other.
type geometry struct {
	name    string
	corner  unit
	lineTo  unit
	curveTo unit
}

var table = [...]geometry{
	TopLeft:     {name: "top-left", corner: unit{0, 1}, lineTo: unit{1, 1}, curveTo: unit{0, 0}},
	TopRight:    {name: "top-right", corner: unit{1, 1}, lineTo: unit{1, 0}, curveTo: unit{0, 1}},
	BottomLeft:  {name: "bottom-left", corner: unit{0, 0}, lineTo: unit{0, 1}, curveTo: unit{1, 0}},
	BottomRight: {name: "bottom-right", corner: unit{1, 0}, lineTo: unit{0, 0}, curveTo: unit{1, 1}},
}

func (c Corner) valid() bool {
	return c >= TopLeft && c <= BottomRight
}

func (c Corner) String() string {
	if !c.valid() {
		return fmt.Sprintf("corner(%d)", int(c))
	}
	return table[c].name
}

// Position returns the bottom-left screen position of a size×size surface
// covering corner c of window.
func Position(c Corner, window platform.Rect, size int) platform.Point {
	g := table[c]
	return platform.Point{
		X: window.MinX() + g.corner.x*(window.Width-size),
		Y: window.MinY() + g.corner.y*(window.Height-size),
	}
}

// Frame returns the full surface rectangle for corner c of window.
func Frame(c Corner, window platform.Rect, size int) platform.Rect {
	p := Position(c, window, size)
	return platform.Rect{X: p.X, Y: p.Y, Width: size, Height: size}
}

// Path is the closed outline of a corner mask: a line from Start to LineTo,
// a quadratic curve to CurveTo around Control, and a straight close back to
// Start.
type Path struct {
	Start   Vec
	LineTo  Vec
	CurveTo Vec
	Control Vec
}

// MaskPath returns the mask outline for corner c in a square of edge size.
// The curve approximates a quarter circle of radius size.
func MaskPath(c Corner, size float32) Path {
	g := table[c]
	return Path{
		Start:   g.corner.scale(size),
		LineTo:  g.lineTo.scale(size),
		CurveTo: g.curveTo.scale(size),
		Control: g.corner.scale(size),
	}
}
