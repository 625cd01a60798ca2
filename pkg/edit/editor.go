// Package edit implements the interactive photo editor: viewport fitting, the
// rotate/flip/crop/colour transform controller, the editing state machine and
// the export pipeline that bakes an edit into a new uploaded image.
package edit

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Fepozopo/photoedit/pkg/stdimg"
)

// Phase is the state of the editor.
type Phase int

const (
	PhaseViewing Phase = iota
	PhaseEditing
	PhaseExporting
)

func (p Phase) String() string {
	switch p {
	case PhaseViewing:
		return "viewing"
	case PhaseEditing:
		return "editing"
	case PhaseExporting:
		return "exporting"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Tab is the active tool panel while editing.
type Tab int

const (
	TabCrop Tab = iota
	TabAdjust
)

func (t Tab) String() string {
	if t == TabAdjust {
		return "adjust"
	}
	return "crop"
}

// Fetcher loads the image to edit.
type Fetcher interface {
	Fetch(ctx context.Context, id int64) (*SourceImage, error)
}

// Refresher asks the gallery listing to reload after a successful export.
type Refresher func(ctx context.Context) error

type session struct {
	id      string
	source  *SourceImage
	preview *image.NRGBA
	tab     Tab
	frames  *FrameQueue
	surface *Surface
	ctrl    *Controller
}

// Editor is the edit-session state machine:
//
//	Viewing -> Editing(tab) -> Exporting -> Viewing | Editing
//	Editing -> Viewing (cancel)
//
// Every Editing action mutates the session state and then commits a frame.
// Deferred work (re-fits) runs only after that frame has been rendered. While
// an export is in flight every action, including another save, is rejected
// with ErrExporting. The mutex guards the phase and session; it is never held
// across the export itself.
type Editor struct {
	fetcher  Fetcher
	pipeline *Pipeline
	refresh  Refresher
	logger   *log.Logger

	mu       sync.Mutex
	viewport Size
	phase    Phase
	sess     *session
}

// Option configures an Editor.
type Option func(*Editor)

// WithRefresher sets the listing refresh callback.
func WithRefresher(r Refresher) Option {
	return func(e *Editor) { e.refresh = r }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// NewEditor creates an editor in the Viewing phase.
func NewEditor(f Fetcher, p *Pipeline, viewport Size, opts ...Option) *Editor {
	e := &Editor{
		fetcher:  f,
		pipeline: p,
		viewport: viewport,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Phase returns the current phase.
func (e *Editor) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Begin fetches image id and opens a fresh edit session, discarding any
// session that was open. A fetch failure leaves the editor as it was.
func (e *Editor) Begin(ctx context.Context, id int64) error {
	e.mu.Lock()
	if e.phase == PhaseExporting {
		e.mu.Unlock()
		return ErrExporting
	}
	e.mu.Unlock()

	src, err := e.fetcher.Fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("load image %d: %w", id, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseExporting {
		return ErrExporting
	}
	s := &session{
		id:     uuid.NewString(),
		source: src,
		frames: &FrameQueue{},
	}
	s.preview = stdimg.Downscale(src.Raster, int(e.viewport.W), int(e.viewport.H))
	s.surface = NewSurface(e.viewport, src.Size())
	s.ctrl = NewController(s.surface, s.frames, e.logger.With("session", s.id))
	s.ctrl.RequestFit()
	e.sess = s
	e.phase = PhaseEditing
	e.commitLocked()
	e.logger.Info("editing", "session", s.id, "image", src.ID, "file", src.FileName,
		"size", fmt.Sprintf("%dx%d", src.Width, src.Height))
	return nil
}

// Cancel discards the session without exporting.
func (e *Editor) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.editingLocked()
	if err != nil {
		return err
	}
	e.logger.Info("edit cancelled", "session", s.id)
	e.sess = nil
	e.phase = PhaseViewing
	return nil
}

// SelectTab switches between the crop and adjust panels.
func (e *Editor) SelectTab(t Tab) error {
	return e.act(func(s *session) error {
		s.tab = t
		return nil
	})
}

// Rotate turns the image by +90 or -90 degrees.
func (e *Editor) Rotate(delta int) error {
	return e.act(func(s *session) error { return s.ctrl.Rotate(delta) })
}

// Flip mirrors the image along axis.
func (e *Editor) Flip(axis Axis) error {
	return e.act(func(s *session) error { return s.ctrl.Flip(axis) })
}

// Reset restores the untouched geometry and filters.
func (e *Editor) Reset() error {
	return e.act(func(s *session) error {
		s.ctrl.Reset()
		return nil
	})
}

// SetCrop replaces the crop selection.
func (e *Editor) SetCrop(r Rect) error {
	return e.act(func(s *session) error { return s.ctrl.SetCrop(r) })
}

// SetFilter moves a colour slider and returns the stored (clamped) value.
func (e *Editor) SetFilter(k FilterKind, v float64) (float64, error) {
	var stored float64
	err := e.act(func(s *session) error {
		stored = s.ctrl.SetFilter(k, v)
		return nil
	})
	return stored, err
}

// Resize changes the viewport. An open session is re-fitted, which resets the
// crop selection to the full canvas.
func (e *Editor) Resize(viewport Size) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseExporting {
		return ErrExporting
	}
	e.viewport = viewport
	if e.sess == nil {
		return nil
	}
	e.sess.surface.Resize(viewport)
	e.sess.ctrl.RequestFit()
	e.commitLocked()
	return nil
}

// Snapshot returns the current transform and filter state.
func (e *Editor) Snapshot() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return Snapshot{}, ErrNotEditing
	}
	return e.sess.ctrl.Snapshot(), nil
}

// Tab returns the active panel.
func (e *Editor) Tab() (Tab, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return 0, ErrNotEditing
	}
	return e.sess.tab, nil
}

// View returns the last rendered frame.
func (e *Editor) View() (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return View{}, ErrNotEditing
	}
	return e.sess.surface.View(), nil
}

// Source returns the image being edited.
func (e *Editor) Source() (*SourceImage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return nil, ErrNotEditing
	}
	return e.sess.source, nil
}

// Preview renders the current edit on the downscaled working raster.
func (e *Editor) Preview() (*image.NRGBA, error) {
	e.mu.Lock()
	if e.sess == nil {
		e.mu.Unlock()
		return nil, ErrNotEditing
	}
	preview := e.sess.preview
	snap := e.sess.ctrl.Snapshot()
	canvas := e.sess.ctrl.Canvas()
	e.mu.Unlock()
	return RenderPreview(preview, snap, canvas)
}

// Save exports the edit. On success the session is closed, the listing is
// refreshed and the editor returns to Viewing. On failure the editor returns
// to Editing with the session untouched so the save can simply be repeated.
// A save while another one is in flight returns ErrExporting. A started
// export is not cancelled by ctx.
func (e *Editor) Save(ctx context.Context) (*UploadResult, error) {
	e.mu.Lock()
	s, err := e.editingLocked()
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.phase = PhaseExporting
	job := Job{Source: s.source, Snapshot: s.ctrl.Snapshot(), Canvas: s.ctrl.Canvas()}
	e.mu.Unlock()

	e.logger.Info("exporting", "session", s.id, "rotation", job.Snapshot.Transform.Rotation,
		"filter", job.Snapshot.Filters.CSS())
	res, err := e.pipeline.Export(context.WithoutCancel(ctx), job)

	e.mu.Lock()
	if err != nil {
		e.phase = PhaseEditing
		e.mu.Unlock()
		e.logger.Warn("export failed, edit kept", "session", s.id, "err", err)
		return nil, err
	}
	e.sess = nil
	e.phase = PhaseViewing
	e.mu.Unlock()

	if e.refresh != nil {
		if rerr := e.refresh(ctx); rerr != nil {
			e.logger.Warn("listing refresh failed", "err", rerr)
		}
	}
	return res, nil
}

func (e *Editor) act(fn func(s *session) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.editingLocked()
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	e.commitLocked()
	return nil
}

func (e *Editor) editingLocked() (*session, error) {
	switch e.phase {
	case PhaseExporting:
		return nil, ErrExporting
	case PhaseViewing:
		return nil, ErrNotEditing
	}
	return e.sess, nil
}

// commitLocked renders a frame, runs the work that was waiting for it, and
// renders again if that work changed anything.
func (e *Editor) commitLocked() {
	s := e.sess
	s.surface.Render(s.ctrl.State(), s.ctrl.Canvas(), s.ctrl.Filters())
	if s.frames.Flush() > 0 {
		s.surface.Render(s.ctrl.State(), s.ctrl.Canvas(), s.ctrl.Filters())
	}
}
