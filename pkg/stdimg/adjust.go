package stdimg

import (
	"image"
	"math"
)

// Luminance weights used by the CSS/SVG saturate colour matrix.
const (
	lumR = 0.213
	lumG = 0.715
	lumB = 0.072
)

// Adjust applies brightness, contrast and saturation (in that order) to src and
// returns a new image. All three are percentages where 100 means unchanged, and
// follow the CSS Filter Effects definitions:
//
//	brightness(b): C' = C*b
//	contrast(c):   C' = (C-0.5)*c + 0.5
//	saturate(s):   feColorMatrix type="saturate"
//
// Every stage clamps to [0,1] before the next one runs, as browsers do when
// chaining filter primitives. Alpha is copied unchanged.
func Adjust(src *image.NRGBA, brightnessPct, contrastPct, saturationPct float64) *image.NRGBA {
	if src == nil {
		return nil
	}
	out := CloneNRGBA(src)
	bf := brightnessPct / 100.0
	cf := contrastPct / 100.0
	sf := saturationPct / 100.0
	if bf == 1 && cf == 1 && sf == 1 {
		return out
	}

	// saturate matrix rows
	m := [3][3]float64{
		{lumR + (1-lumR)*sf, lumG - lumG*sf, lumB - lumB*sf},
		{lumR - lumR*sf, lumG + (1-lumG)*sf, lumB - lumB*sf},
		{lumR - lumR*sf, lumG - lumG*sf, lumB + (1-lumB)*sf},
	}

	w := out.Rect.Dx()
	h := out.Rect.Dy()
	for y := 0; y < h; y++ {
		row := y * out.Stride
		for x := 0; x < w; x++ {
			i := row + x*4
			r := float64(out.Pix[i+0]) / 255.0
			g := float64(out.Pix[i+1]) / 255.0
			b := float64(out.Pix[i+2]) / 255.0

			if bf != 1 {
				r = clamp01(r * bf)
				g = clamp01(g * bf)
				b = clamp01(b * bf)
			}
			if cf != 1 {
				r = clamp01((r-0.5)*cf + 0.5)
				g = clamp01((g-0.5)*cf + 0.5)
				b = clamp01((b-0.5)*cf + 0.5)
			}
			if sf != 1 {
				r, g, b = clamp01(m[0][0]*r+m[0][1]*g+m[0][2]*b),
					clamp01(m[1][0]*r+m[1][1]*g+m[1][2]*b),
					clamp01(m[2][0]*r+m[2][1]*g+m[2][2]*b)
			}

			out.Pix[i+0] = uint8(clampFloatToUint8(math.Round(r * 255.0)))
			out.Pix[i+1] = uint8(clampFloatToUint8(math.Round(g * 255.0)))
			out.Pix[i+2] = uint8(clampFloatToUint8(math.Round(b * 255.0)))
		}
	}
	return out
}
