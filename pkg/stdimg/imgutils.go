// Package stdimg holds the raster operations behind the editor: orientation,
// cropping, colour adjustment and preview downscaling.
package stdimg

import (
	"image"

	"github.com/disintegration/imaging"
)

// ToNRGBA converts any image.Image to a fresh *image.NRGBA (non-premultiplied RGBA)
// whose bounds start at the origin. The source is never modified.
func ToNRGBA(src image.Image) *image.NRGBA {
	if src == nil {
		return nil
	}
	return imaging.Clone(src)
}

// CloneNRGBA returns a copy of the provided image.NRGBA
func CloneNRGBA(src *image.NRGBA) *image.NRGBA {
	if src == nil {
		return nil
	}
	out := image.NewNRGBA(src.Rect)
	copy(out.Pix, src.Pix)
	return out
}

// MaxChannelDelta returns the largest absolute difference between any channel
// of two same-sized images, or -1 when the sizes differ.
func MaxChannelDelta(a, b image.Image) int {
	na := ToNRGBA(a)
	nb := ToNRGBA(b)
	if na == nil || nb == nil || na.Rect.Size() != nb.Rect.Size() {
		return -1
	}
	worst := 0
	for i := range na.Pix {
		d := int(na.Pix[i]) - int(nb.Pix[i])
		if d < 0 {
			d = -d
		}
		if d > worst {
			worst = d
		}
	}
	return worst
}

// clampFloatToUint8 ensures v in [0,255]
func clampFloatToUint8(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
