package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// SurfaceClass is the WM_CLASS given to overlay windows so compositor rules
// (rounded-corners-exclude, shadow-exclude) can match them.
const SurfaceClass = "cornerfix"

// Surface is a square override-redirect window painted with a corner mask.
type Surface struct {
	conn     *Connection
	Window   xproto.Window
	size     int
	depth    byte
	argb     bool
	colormap xproto.Colormap
	pixmap   xproto.Pixmap
}

// NewSurface creates an unmapped, click-through overlay window of size×size
// pixels. A 32-bit ARGB visual is used when the screen offers one; otherwise
// the window is cut to the mask shape with the SHAPE extension on Paint.
func (c *Connection) NewSurface(size int) (*Surface, error) {
	if size <= 0 || size > 0xffff {
		return nil, fmt.Errorf("invalid surface size %d", size)
	}

	conn := c.XUtil.Conn()
	if err := shape.Init(conn); err != nil {
		return nil, fmt.Errorf("shape extension unavailable: %w", err)
	}

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}

	s := &Surface{conn: c, Window: wid, size: size}
	screen := c.XUtil.Screen()

	if visual, ok := c.argbVisual(); ok {
		cmap, err := xproto.NewColormapId(conn)
		if err != nil {
			return nil, err
		}
		if err := xproto.CreateColormapChecked(conn, xproto.ColormapAllocNone, cmap, c.Root, visual).Check(); err != nil {
			return nil, fmt.Errorf("create colormap: %w", err)
		}
		s.colormap = cmap
		s.depth = 32
		s.argb = true

		// Value list order follows the bit positions of the mask (low → high).
		err = xproto.CreateWindowChecked(
			conn, 32, wid, c.Root,
			0, 0, uint16(size), uint16(size), 0,
			xproto.WindowClassInputOutput, visual,
			xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwOverrideRedirect|xproto.CwColormap,
			[]uint32{0, 0, 1, uint32(cmap)},
		).Check()
		if err != nil {
			xproto.FreeColormap(conn, cmap)
			return nil, fmt.Errorf("create argb window: %w", err)
		}
	} else {
		s.depth = screen.RootDepth
		err = xproto.CreateWindowChecked(
			conn, screen.RootDepth, wid, c.Root,
			0, 0, uint16(size), uint16(size), 0,
			xproto.WindowClassInputOutput, screen.RootVisual,
			xproto.CwBackPixel|xproto.CwOverrideRedirect,
			[]uint32{0, 1},
		).Check()
		if err != nil {
			return nil, fmt.Errorf("create window: %w", err)
		}
	}

	// An empty input region lets pointer events fall through to the window below.
	err = shape.RectanglesChecked(conn, shape.SoSet, shape.SkInput, xproto.ClipOrderingUnsorted, wid, 0, 0, nil).Check()
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("clear input shape: %w", err)
	}

	s.setHints()
	return s, nil
}

// setHints labels the window for compositors and pagers. Override-redirect
// windows are unmanaged, so failures here are not fatal.
func (s *Surface) setHints() {
	xu := s.conn.XUtil
	_ = icccm.WmClassSet(xu, s.Window, &icccm.WmClass{Instance: SurfaceClass, Class: SurfaceClass})
	_ = ewmh.WmNameSet(xu, s.Window, SurfaceClass)
	_ = ewmh.WmWindowTypeSet(xu, s.Window, []string{"_NET_WM_WINDOW_TYPE_NOTIFICATION"})
	_ = ewmh.WmStateSet(xu, s.Window, []string{
		"_NET_WM_STATE_ABOVE",
		"_NET_WM_STATE_STICKY",
		"_NET_WM_STATE_SKIP_TASKBAR",
		"_NET_WM_STATE_SKIP_PAGER",
	})
	_ = ewmh.WmDesktopSet(xu, s.Window, 0xFFFFFFFF)
}

func (c *Connection) argbVisual() (xproto.Visualid, bool) {
	for _, depth := range c.XUtil.Screen().AllowedDepths {
		if depth.Depth != 32 {
			continue
		}
		for _, visual := range depth.Visuals {
			if visual.Class == xproto.VisualClassTrueColor {
				return visual.VisualId, true
			}
		}
	}
	return 0, false
}

// Size returns the edge length of the surface in pixels.
func (s *Surface) Size() int {
	return s.size
}

// Move places the top-left corner of the surface at (x, y) in root
// coordinates and raises it above every other window.
func (s *Surface) Move(x, y int) error {
	return xproto.ConfigureWindowChecked(
		s.conn.XUtil.Conn(),
		s.Window,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowStackMode,
		[]uint32{uint32(int32(x)), uint32(int32(y)), xproto.StackModeAbove},
	).Check()
}

// Map shows the surface and restacks it on top.
func (s *Surface) Map() error {
	conn := s.conn.XUtil.Conn()
	if err := xproto.MapWindowChecked(conn, s.Window).Check(); err != nil {
		return err
	}
	return xproto.ConfigureWindowChecked(conn, s.Window, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove}).Check()
}

// Unmap hides the surface without destroying it.
func (s *Surface) Unmap() error {
	return xproto.UnmapWindowChecked(s.conn.XUtil.Conn(), s.Window).Check()
}

// Paint uploads mask as the window background. mask must be size×size and
// premultiplied, which is what the ARGB visual expects.
func (s *Surface) Paint(mask *image.RGBA) error {
	b := mask.Bounds()
	if b.Dx() != s.size || b.Dy() != s.size {
		return fmt.Errorf("mask is %dx%d, surface is %dx%d", b.Dx(), b.Dy(), s.size, s.size)
	}

	conn := s.conn.XUtil.Conn()
	if s.pixmap == 0 {
		pid, err := xproto.NewPixmapId(conn)
		if err != nil {
			return err
		}
		err = xproto.CreatePixmapChecked(conn, s.depth, pid, xproto.Drawable(s.Window), uint16(s.size), uint16(s.size)).Check()
		if err != nil {
			return fmt.Errorf("create pixmap: %w", err)
		}
		s.pixmap = pid
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return err
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(s.pixmap), 0, nil).Check(); err != nil {
		return fmt.Errorf("create gc: %w", err)
	}
	defer xproto.FreeGC(conn, gc)

	err = xproto.PutImageChecked(
		conn, xproto.ImageFormatZPixmap, xproto.Drawable(s.pixmap), gc,
		uint16(s.size), uint16(s.size), 0, 0, 0, s.depth,
		zpixmapData(mask, s.argb),
	).Check()
	if err != nil {
		return fmt.Errorf("upload mask: %w", err)
	}

	if !s.argb {
		rects := opaqueRuns(mask)
		err := shape.RectanglesChecked(conn, shape.SoSet, shape.SkBounding, xproto.ClipOrderingYXBanded, s.Window, 0, 0, rects).Check()
		if err != nil {
			return fmt.Errorf("set bounding shape: %w", err)
		}
	}

	if err := xproto.ChangeWindowAttributesChecked(conn, s.Window, xproto.CwBackPixmap, []uint32{uint32(s.pixmap)}).Check(); err != nil {
		return err
	}
	return xproto.ClearAreaChecked(conn, false, s.Window, 0, 0, 0, 0).Check()
}

// Destroy releases the window and everything allocated for it.
func (s *Surface) Destroy() error {
	conn := s.conn.XUtil.Conn()
	if s.pixmap != 0 {
		xproto.FreePixmap(conn, s.pixmap)
		s.pixmap = 0
	}
	var err error
	if s.Window != 0 {
		err = xproto.DestroyWindowChecked(conn, s.Window).Check()
		s.Window = 0
	}
	if s.colormap != 0 {
		xproto.FreeColormap(conn, s.colormap)
		s.colormap = 0
	}
	return err
}

// zpixmapData converts an RGBA image to 32 bits-per-pixel BGRA scanlines.
// Without an alpha channel the color is un-premultiplied, since the bounding
// shape rather than blending decides what shows.
func zpixmapData(img *image.RGBA, keepAlpha bool) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			r, g, bl, a := img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]
			if !keepAlpha && a > 0 && a < 0xff {
				r = byte(int(r) * 0xff / int(a))
				g = byte(int(g) * 0xff / int(a))
				bl = byte(int(bl) * 0xff / int(a))
			}
			if !keepAlpha {
				a = 0xff
			}
			out = append(out, bl, g, r, a)
		}
	}
	return out
}

// opaqueRuns returns one rectangle per horizontal run of pixels that are at
// least half covered, in YX-banded order.
func opaqueRuns(img *image.RGBA) []xproto.Rectangle {
	b := img.Bounds()
	var rects []xproto.Rectangle
	for y := b.Min.Y; y < b.Max.Y; y++ {
		start := -1
		for x := b.Min.X; x <= b.Max.X; x++ {
			covered := x < b.Max.X && img.Pix[img.PixOffset(x, y)+3] >= 0x80
			switch {
			case covered && start < 0:
				start = x
			case !covered && start >= 0:
				rects = append(rects, xproto.Rectangle{
					X:      int16(start - b.Min.X),
					Y:      int16(y - b.Min.Y),
					Width:  uint16(x - start),
					Height: 1,
				})
				start = -1
			}
		}
	}
	return rects
}
