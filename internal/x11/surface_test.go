package x11

import (
	"image"
	"image/color"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func TestZPixmapDataIsBGRA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff})
	img.SetRGBA(1, 0, color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0x80})

	got := zpixmapData(img, true)
	want := []byte{0x30, 0x20, 0x10, 0xff, 0x40, 0x40, 0x40, 0x80}
	if string(got) != string(want) {
		t.Fatalf("argb data = % x, want % x", got, want)
	}
}

func TestZPixmapDataWithoutAlphaUnpremultiplies(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 0x40, G: 0x20, B: 0x00, A: 0x80})

	got := zpixmapData(img, false)
	// 0x40*255/128 = 127, 0x20*255/128 = 63.
	want := []byte{0x00, 0x3f, 0x7f, 0xff, 0x00, 0x00, 0x00, 0xff}
	if string(got) != string(want) {
		t.Fatalf("rgb data = % x, want % x", got, want)
	}
}

func TestOpaqueRuns(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	set := func(x, y int, a uint8) { img.SetRGBA(x, y, color.RGBA{A: a}) }
	set(0, 0, 0xff)
	set(1, 0, 0x80)
	set(3, 0, 0xff)
	set(2, 1, 0x7f)
	set(3, 1, 0xff)

	got := opaqueRuns(img)
	want := []xproto.Rectangle{
		{X: 0, Y: 0, Width: 2, Height: 1},
		{X: 3, Y: 0, Width: 1, Height: 1},
		{X: 3, Y: 1, Width: 1, Height: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("runs = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("run %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestOpaqueRunsEmptyMask(t *testing.T) {
	if runs := opaqueRuns(image.NewRGBA(image.Rect(0, 0, 8, 8))); len(runs) != 0 {
		t.Fatalf("transparent mask produced %d runs", len(runs))
	}
}
