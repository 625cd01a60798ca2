package stdimg

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Downscale returns a copy of src scaled to fit inside maxW x maxH while
// preserving the aspect ratio. Images that already fit are copied unchanged;
// Downscale never enlarges. Catmull-Rom resampling keeps the working preview
// sharp enough to judge crops by.
func Downscale(src image.Image, maxW, maxH int) *image.NRGBA {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxW <= 0 || maxH <= 0 || w == 0 || h == 0 {
		return ToNRGBA(src)
	}
	scale := math.Min(1.0, math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h)))
	if scale == 1.0 {
		return ToNRGBA(src)
	}
	tw := max(1, int(math.Round(float64(w)*scale)))
	th := max(1, int(math.Round(float64(h)*scale)))
	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}
