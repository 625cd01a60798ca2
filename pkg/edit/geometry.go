package edit

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used when comparing fitted rectangles.
const Epsilon = 1e-9

// Size is a width/height pair in display units.
type Size struct {
	W float64
	H float64
}

// Ready reports whether the size can be measured against, i.e. both sides are
// finite and strictly positive.
func (s Size) Ready() bool {
	return s.W > 0 && s.H > 0 && !math.IsInf(s.W, 0) && !math.IsInf(s.H, 0)
}

// Ratio returns W/H.
func (s Size) Ratio() float64 { return s.W / s.H }

func (s Size) String() string { return fmt.Sprintf("%gx%g", s.W, s.H) }

// Rect is an axis-aligned rectangle in display (viewport) coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersect returns the largest rectangle contained by both r and o. The result
// is the zero Rect when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	left := math.Max(r.Left, o.Left)
	top := math.Max(r.Top, o.Top)
	right := math.Min(r.Right(), o.Right())
	bottom := math.Min(r.Bottom(), o.Bottom())
	if right <= left || bottom <= top {
		return Rect{}
	}
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// ApproxEqual compares two rectangles component-wise within eps.
func (r Rect) ApproxEqual(o Rect, eps float64) bool {
	return math.Abs(r.Left-o.Left) <= eps &&
		math.Abs(r.Top-o.Top) <= eps &&
		math.Abs(r.Width-o.Width) <= eps &&
		math.Abs(r.Height-o.Height) <= eps
}

func (r Rect) String() string {
	return fmt.Sprintf("{left:%g top:%g width:%g height:%g}", r.Left, r.Top, r.Width, r.Height)
}

// Fit computes the largest rectangle with the aspect ratio of canvas that fits
// inside container, centred on both axes (letterbox fit). It depends only on
// the two dimension pairs, so calling it again with the same inputs yields the
// same rectangle. ok is false when either size is not ready yet.
func Fit(container, canvas Size) (Rect, bool) {
	if !container.Ready() || !canvas.Ready() {
		return Rect{}, false
	}
	var w, h float64
	if canvas.Ratio() > container.Ratio() {
		w = container.W
		h = w / canvas.Ratio()
	} else {
		h = container.H
		w = h * canvas.Ratio()
	}
	return Rect{
		Left:   (container.W - w) / 2,
		Top:    (container.H - h) / 2,
		Width:  w,
		Height: h,
	}, true
}
