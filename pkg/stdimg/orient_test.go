package stdimg

import (
	"image"
	"image/color"
	"testing"
)

// cornerImage returns a 3x2 image with a red top-left pixel and a blue
// bottom-right pixel on a white field.
func cornerImage() *image.NRGBA {
	img := makeSolidNRGBA(3, 2, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(2, 1, color.NRGBA{B: 255, A: 255})
	return img
}

func isRed(c color.NRGBA) bool  { return c.R == 255 && c.G == 0 && c.B == 0 }
func isBlue(c color.NRGBA) bool { return c.R == 0 && c.G == 0 && c.B == 255 }

func TestOrientRotations(t *testing.T) {
	cases := []struct {
		rotation int
		w, h     int
		red      image.Point
		blue     image.Point
	}{
		{0, 3, 2, image.Pt(0, 0), image.Pt(2, 1)},
		{90, 2, 3, image.Pt(1, 0), image.Pt(0, 2)},
		{180, 3, 2, image.Pt(2, 1), image.Pt(0, 0)},
		{270, 2, 3, image.Pt(0, 2), image.Pt(1, 0)},
		{-90, 2, 3, image.Pt(0, 2), image.Pt(1, 0)},
		{450, 2, 3, image.Pt(1, 0), image.Pt(0, 2)},
	}
	for _, tc := range cases {
		out := Orient(cornerImage(), tc.rotation, false, false)
		if out.Bounds().Dx() != tc.w || out.Bounds().Dy() != tc.h {
			t.Fatalf("rotation %d: expected %dx%d, got %v", tc.rotation, tc.w, tc.h, out.Bounds())
		}
		if !isRed(out.NRGBAAt(tc.red.X, tc.red.Y)) {
			t.Fatalf("rotation %d: expected red at %v", tc.rotation, tc.red)
		}
		if !isBlue(out.NRGBAAt(tc.blue.X, tc.blue.Y)) {
			t.Fatalf("rotation %d: expected blue at %v", tc.rotation, tc.blue)
		}
	}
}

func TestOrientFlips(t *testing.T) {
	out := Orient(cornerImage(), 0, true, false)
	if !isRed(out.NRGBAAt(2, 0)) || !isBlue(out.NRGBAAt(0, 1)) {
		t.Fatalf("horizontal flip misplaced corners")
	}
	out = Orient(cornerImage(), 0, false, true)
	if !isRed(out.NRGBAAt(0, 1)) || !isBlue(out.NRGBAAt(2, 0)) {
		t.Fatalf("vertical flip misplaced corners")
	}
}

func TestOrientFlipsBeforeRotating(t *testing.T) {
	// mirror first (red moves to top-right), then a clockwise quarter turn
	// carries top-right to bottom-right.
	out := Orient(cornerImage(), 90, true, false)
	if !isRed(out.NRGBAAt(1, 2)) {
		t.Fatalf("expected red at bottom-right after flip+rotate")
	}
}
