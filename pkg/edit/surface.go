package edit

// View is the projection of the edit state that one frame displays.
type View struct {
	Frame    int
	Canvas   Rect // fitted canvas, the display transform
	Crop     Rect
	Rotation int
	ScaleX   int
	ScaleY   int
	Filter   string
}

// Surface is the rendering surface. Render is a pure projection of the state
// it is given; the only thing read back from it is the committed canvas size,
// which changes when a frame is rendered and not before.
type Surface struct {
	viewport  Size
	source    Size
	committed Size
	frames    int
	view      View
}

// NewSurface creates a surface for a source of the given size shown inside viewport.
func NewSurface(viewport, source Size) *Surface {
	return &Surface{viewport: viewport, source: source}
}

// Resize changes the viewport, e.g. after a layout or orientation change.
func (s *Surface) Resize(viewport Size) { s.viewport = viewport }

// Render draws one frame for the given state and display rectangle.
func (s *Surface) Render(st TransformState, canvas Rect, f FilterParams) View {
	s.frames++
	s.committed = st.Canvas(s.source)
	s.view = View{
		Frame:    s.frames,
		Canvas:   canvas,
		Crop:     st.Crop,
		Rotation: st.Rotation,
		ScaleX:   st.FlipX,
		ScaleY:   st.FlipY,
		Filter:   f.CSS(),
	}
	return s.view
}

// Measure returns the viewport and the canvas size of the last rendered frame.
// ok is false until something has been rendered and both sizes are usable.
func (s *Surface) Measure() (container, canvas Size, ok bool) {
	if s.frames == 0 {
		return s.viewport, Size{}, false
	}
	return s.viewport, s.committed, s.viewport.Ready() && s.committed.Ready()
}

// View returns the last rendered frame.
func (s *Surface) View() View { return s.view }
