package stdimg

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Crop extracts rect from src. The rectangle is expressed relative to the
// image origin and is clipped to the image bounds; an empty intersection is an
// error. The result always starts at the origin.
func Crop(src image.Image, rect image.Rectangle) (*image.NRGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("source image is nil")
	}
	b := src.Bounds()
	r := rect.Add(b.Min).Intersect(b)
	if r.Empty() {
		return nil, fmt.Errorf("crop rectangle %v is outside image bounds %v", rect, b.Sub(b.Min))
	}
	if r == b {
		return imaging.Clone(src), nil
	}
	return imaging.Crop(src, r), nil
}
