package edit

import (
	"fmt"
	"image"
	"strings"

	"github.com/Fepozopo/photoedit/pkg/stdimg"
)

// SourceImage is the image being edited. It is never modified; every save
// produces a brand-new image on the backend.
type SourceImage struct {
	ID        int64
	Width     int
	Height    int
	SourceURL string
	FileName  string

	// Raster is the decoded, full-resolution pixel data.
	Raster image.Image
}

// Size returns the source dimensions in pixels.
func (s *SourceImage) Size() Size {
	return Size{W: float64(s.Width), H: float64(s.Height)}
}

// Axis selects a mirror direction.
type Axis int

const (
	AxisX Axis = iota // left/right
	AxisY             // top/bottom
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis accepts "x"/"h" and "y"/"v".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "h", "horizontal":
		return AxisX, nil
	case "y", "v", "vertical":
		return AxisY, nil
	}
	return 0, fmt.Errorf("unknown flip axis %q", s)
}

// TransformState is the geometric part of an edit. Crop is expressed in
// viewport coordinates and always lies inside the fitted canvas.
type TransformState struct {
	Rotation int // 0, 90, 180 or 270, clockwise
	FlipX    int // +1 or -1
	FlipY    int // +1 or -1
	Crop     Rect
}

// NewTransformState returns the untouched state: no rotation, no flip and no
// crop selection yet.
func NewTransformState() TransformState {
	return TransformState{FlipX: 1, FlipY: 1}
}

// Canvas returns the size of src after applying the state's rotation.
func (t TransformState) Canvas(src Size) Size {
	switch stdimg.NormalizeDegrees(t.Rotation) {
	case 90, 270:
		return Size{W: src.H, H: src.W}
	}
	return src
}

// FilterKind names one of the colour sliders.
type FilterKind int

const (
	Brightness FilterKind = iota
	Contrast
	Saturation
)

func (k FilterKind) String() string {
	switch k {
	case Brightness:
		return "brightness"
	case Contrast:
		return "contrast"
	case Saturation:
		return "saturation"
	default:
		return fmt.Sprintf("FilterKind(%d)", int(k))
	}
}

// Range returns the inclusive slider range in percent.
func (k FilterKind) Range() (lo, hi float64) {
	switch k {
	case Saturation:
		return 0, 200
	default:
		return 50, 150
	}
}

// ParseFilterKind maps a slider name to its kind.
func ParseFilterKind(s string) (FilterKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "brightness", "b":
		return Brightness, nil
	case "contrast", "c", "k":
		return Contrast, nil
	case "saturation", "saturate", "s":
		return Saturation, nil
	}
	return 0, fmt.Errorf("unknown filter %q", s)
}

// FilterParams holds the colour adjustment percentages. 100 means unchanged.
type FilterParams struct {
	Brightness float64
	Contrast   float64
	Saturation float64
}

// DefaultFilters returns {100, 100, 100}.
func DefaultFilters() FilterParams {
	return FilterParams{Brightness: 100, Contrast: 100, Saturation: 100}
}

// Get returns the value of one slider.
func (f FilterParams) Get(k FilterKind) float64 {
	switch k {
	case Brightness:
		return f.Brightness
	case Contrast:
		return f.Contrast
	default:
		return f.Saturation
	}
}

// With returns a copy of f with slider k set to v, clamped to the slider range.
func (f FilterParams) With(k FilterKind, v float64) FilterParams {
	lo, hi := k.Range()
	v = min(max(v, lo), hi)
	switch k {
	case Brightness:
		f.Brightness = v
	case Contrast:
		f.Contrast = v
	case Saturation:
		f.Saturation = v
	}
	return f
}

// IsIdentity reports whether the filters leave pixels unchanged.
func (f FilterParams) IsIdentity() bool {
	return f == DefaultFilters()
}

// CSS renders the filter chain the live preview uses. Apply implements exactly
// this expression.
func (f FilterParams) CSS() string {
	return fmt.Sprintf("brightness(%g%%) contrast(%g%%) saturate(%g%%)", f.Brightness, f.Contrast, f.Saturation)
}

// Apply flattens the filters onto img and returns a new raster.
func (f FilterParams) Apply(img image.Image) *image.NRGBA {
	return stdimg.Adjust(stdimg.ToNRGBA(img), f.Brightness, f.Contrast, f.Saturation)
}

// Snapshot is an immutable copy of everything an export reads.
type Snapshot struct {
	Transform TransformState
	Filters   FilterParams
}
