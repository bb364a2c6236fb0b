package corner

import (
	"image"
	"image/color"

	"golang.org/x/image/vector"
)

// Render rasterizes the mask for corner c into a new size×size image filled
// with fill. Image rows run top to bottom, so the y-up path is flipped.
func Render(c Corner, size int, fill color.Color) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	if size <= 0 || !c.valid() {
		return dst
	}

	s := float32(size)
	p := MaskPath(c, s)
	flip := func(v Vec) (float32, float32) { return v.X, s - v.Y }

	r := vector.NewRasterizer(size, size)
	r.MoveTo(flip(p.Start))
	r.LineTo(flip(p.LineTo))
	cx, cy := flip(p.Control)
	ex, ey := flip(p.CurveTo)
	r.QuadTo(cx, cy, ex, ey)
	r.ClosePath()
	r.Draw(dst, dst.Bounds(), image.NewUniform(fill), image.Point{})
	return dst
}

// Renderer caches rendered masks for one fill color. It is not safe for
// concurrent use.
type Renderer struct {
	fill  color.RGBA
	masks map[maskKey]*image.RGBA
}

type maskKey struct {
	corner Corner
	size   int
}

// NewRenderer returns a Renderer painting with fill. Alpha is forced to
// opaque: masks are always solid.
func NewRenderer(fill color.Color) *Renderer {
	r, g, b, _ := fill.RGBA()
	return &Renderer{
		fill:  color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff},
		masks: make(map[maskKey]*image.RGBA),
	}
}

// Fill returns the opaque color masks are painted with.
func (r *Renderer) Fill() color.RGBA {
	return r.fill
}

// Mask returns the mask for corner c at size, rendering it on first use.
// Callers must not modify the returned image.
func (r *Renderer) Mask(c Corner, size int) *image.RGBA {
	key := maskKey{corner: c, size: size}
	if img, ok := r.masks[key]; ok {
		return img
	}
	img := Render(c, size, r.fill)
	r.masks[key] = img
	return img
}
