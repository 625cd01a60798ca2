package stdimg

import (
	"image"

	"github.com/disintegration/imaging"
)

// NormalizeDegrees folds any multiple of 90 into 0, 90, 180 or 270.
func NormalizeDegrees(deg int) int {
	d := deg % 360
	if d < 0 {
		d += 360
	}
	return d
}

// Orient mirrors src (flipX = left/right, flipY = top/bottom) and then rotates
// it clockwise by rotation degrees. Only quarter turns are supported; any other
// angle is treated as 0. This matches a CSS "rotate(r) scaleX(sx) scaleY(sy)"
// transform on the displayed image.
func Orient(src image.Image, rotation int, flipX, flipY bool) *image.NRGBA {
	if src == nil {
		return nil
	}
	out := imaging.Clone(src)
	if flipX {
		out = imaging.FlipH(out)
	}
	if flipY {
		out = imaging.FlipV(out)
	}
	// imaging rotates counter-clockwise
	switch NormalizeDegrees(rotation) {
	case 90:
		out = imaging.Rotate270(out)
	case 180:
		out = imaging.Rotate180(out)
	case 270:
		out = imaging.Rotate90(out)
	}
	return out
}
