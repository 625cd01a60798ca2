package edit

import (
	"github.com/charmbracelet/log"

	"github.com/Fepozopo/photoedit/pkg/stdimg"
)

// Measurer reports the current container and canvas sizes.
type Measurer interface {
	Measure() (container, canvas Size, ok bool)
}

// Controller owns the TransformState and FilterParams of one edit session and
// implements the rotate/flip/reset/crop/slider actions on them. Every
// rectangle it stores comes from a fresh Fit of measured sizes; it never
// adjusts a previous rectangle.
type Controller struct {
	state   TransformState
	filters FilterParams
	canvas  Rect

	measure Measurer
	sched   Scheduler
	logger  *log.Logger

	fitQueued bool
}

// NewController creates a controller in the untouched state.
func NewController(m Measurer, s Scheduler, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		state:   NewTransformState(),
		filters: DefaultFilters(),
		measure: m,
		sched:   s,
		logger:  logger,
	}
}

// State returns a copy of the transform state.
func (c *Controller) State() TransformState { return c.state }

// Filters returns a copy of the filter parameters.
func (c *Controller) Filters() FilterParams { return c.filters }

// Canvas returns the fitted canvas rectangle (the display transform).
func (c *Controller) Canvas() Rect { return c.canvas }

// Snapshot copies the state an export needs.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{Transform: c.state, Filters: c.filters}
}

// FitQueued reports whether a re-fit is waiting for the next render commit.
func (c *Controller) FitQueued() bool { return c.fitQueued }

// Rotate turns the canvas by a quarter turn. The crop selection is dropped
// before the rotation so the old, now misoriented box can never constrain the
// new geometry; the re-fit runs after the next render commit.
func (c *Controller) Rotate(delta int) error {
	if delta != 90 && delta != -90 {
		return ErrInvalidRotation
	}
	c.state.Crop = Rect{}
	c.state.Rotation = stdimg.NormalizeDegrees(c.state.Rotation + delta)
	c.logger.Debug("rotate", "delta", delta, "rotation", c.state.Rotation)
	c.RequestFit()
	return nil
}

// Flip mirrors the image along axis. The canvas keeps its size, so no re-fit
// is needed.
func (c *Controller) Flip(axis Axis) error {
	switch axis {
	case AxisX:
		c.state.FlipX = -c.state.FlipX
	case AxisY:
		c.state.FlipY = -c.state.FlipY
	default:
		return ErrInvalidAxis
	}
	c.logger.Debug("flip", "axis", axis, "scaleX", c.state.FlipX, "scaleY", c.state.FlipY)
	return nil
}

// Reset restores rotation, flips and filters to their defaults. The re-fit is
// deferred until the reset state has been rendered.
func (c *Controller) Reset() {
	c.state = NewTransformState()
	c.filters = DefaultFilters()
	c.logger.Debug("reset")
	c.RequestFit()
}

// SetCrop replaces the crop selection. The rectangle is clipped to the fitted
// canvas.
func (c *Controller) SetCrop(r Rect) error {
	if c.canvas.Empty() {
		return ErrNotFitted
	}
	if r.Empty() {
		return ErrInvalidCrop
	}
	clipped := r.Intersect(c.canvas)
	if clipped.Empty() {
		return ErrInvalidCrop
	}
	c.state.Crop = clipped
	return nil
}

// SetFilter moves one slider and returns the value actually stored.
func (c *Controller) SetFilter(k FilterKind, v float64) float64 {
	c.filters = c.filters.With(k, v)
	return c.filters.Get(k)
}

// RequestFit schedules a re-fit after the next render commit. Repeated
// requests within one frame collapse into one.
func (c *Controller) RequestFit() {
	if c.fitQueued {
		return
	}
	c.fitQueued = true
	c.sched.Defer(c.runFit)
}

func (c *Controller) runFit() {
	c.fitQueued = false
	if !c.Fit() {
		// measurement not ready; try again on the next frame
		c.RequestFit()
	}
}

// Fit measures the container and canvas and writes the fitted rectangle into
// both the display transform and the crop selection. It reports false, and
// changes nothing, when the measurements are not available yet.
func (c *Controller) Fit() bool {
	container, canvas, ok := c.measure.Measure()
	if !ok {
		c.logger.Debug("fit skipped, measurement not ready", "container", container, "canvas", canvas)
		return false
	}
	r, ok := Fit(container, canvas)
	if !ok {
		return false
	}
	c.canvas = r
	c.state.Crop = r
	c.logger.Debug("fit", "container", container, "canvas", canvas, "rect", r)
	return true
}
