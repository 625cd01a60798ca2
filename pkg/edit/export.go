package edit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/Fepozopo/photoedit/pkg/stdimg"
)

const (
	// JPEGQuality is the fixed export quality (0.95).
	JPEGQuality = 95

	// EditedPrefix marks an exported file as an edited derivative.
	EditedPrefix = "edited_"
)

// UploadResult describes the image the backend created for an export.
type UploadResult struct {
	ImageID  int64
	FileName string
	Path     string
}

// Uploader stores an encoded image as a new backend resource.
type Uploader interface {
	Upload(ctx context.Context, payload []byte, fileName string) (*UploadResult, error)
}

// Job is one export request: the source plus the state read once at save time.
type Job struct {
	Source   *SourceImage
	Snapshot Snapshot
	Canvas   Rect // fitted canvas the crop was selected against
}

// EncodeFunc writes img to w.
type EncodeFunc func(w io.Writer, img image.Image) error

// Pipeline turns an edit into a new uploaded image.
type Pipeline struct {
	uploader Uploader
	encode   EncodeFunc
	logger   *log.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithEncoder replaces the JPEG encoder.
func WithEncoder(fn EncodeFunc) PipelineOption {
	return func(p *Pipeline) { p.encode = fn }
}

// WithPipelineLogger sets the logger.
func WithPipelineLogger(l *log.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates an export pipeline that hands results to u.
func NewPipeline(u Uploader, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		uploader: u,
		encode:   encodeJPEG,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func encodeJPEG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
}

// Export renders, encodes and uploads job. Errors are *EncodeError or
// *UploadError (or a render error); none of them touch the edit state.
func (p *Pipeline) Export(ctx context.Context, job Job) (*UploadResult, error) {
	start := time.Now()
	img, err := p.Render(job)
	if err != nil {
		return nil, err
	}
	payload, err := p.Encode(img)
	if err != nil {
		p.logger.Error("encode failed", "image", job.Source.ID, "err", err)
		return nil, err
	}
	name := OutputName(job.Source.FileName)
	res, err := p.uploader.Upload(ctx, payload, name)
	if err != nil {
		return nil, &UploadError{FileName: name, Err: err}
	}
	p.logger.Info("exported edited image",
		"source", job.Source.ID,
		"image", res.ImageID,
		"file", name,
		"size", fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()),
		"bytes", len(payload),
		"took", time.Since(start).Round(time.Millisecond))
	return res, nil
}

// Render produces the edited raster at full source resolution: the source is
// oriented, the crop is extracted and the filters are flattened onto it.
func (p *Pipeline) Render(job Job) (*image.NRGBA, error) {
	if job.Source == nil || job.Source.Raster == nil {
		return nil, errors.New("export: no source raster")
	}
	return renderRaster(job.Source.Raster, job.Snapshot, job.Canvas)
}

// Encode returns the JPEG bytes for img. An empty result is an error.
func (p *Pipeline) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.encode(&buf, img); err != nil {
		return nil, &EncodeError{Err: err}
	}
	if buf.Len() == 0 {
		return nil, &EncodeError{Err: errors.New("encoder produced no data")}
	}
	return buf.Bytes(), nil
}

// RenderPreview runs the same orientation, crop and filter steps as an export
// on a (typically downscaled) preview raster.
func RenderPreview(preview image.Image, snap Snapshot, canvas Rect) (*image.NRGBA, error) {
	return renderRaster(preview, snap, canvas)
}

func renderRaster(src image.Image, snap Snapshot, canvas Rect) (*image.NRGBA, error) {
	t := snap.Transform
	oriented := stdimg.Orient(src, t.Rotation, t.FlipX < 0, t.FlipY < 0)
	r, err := SourceRect(t.Crop, canvas, oriented.Bounds().Size())
	if err != nil {
		return nil, err
	}
	cropped, err := stdimg.Crop(oriented, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCrop, err)
	}
	if snap.Filters.IsIdentity() {
		return cropped, nil
	}
	return snap.Filters.Apply(cropped), nil
}

// SourceRect maps crop, selected on screen against the fitted canvas, onto
// the pixel grid of the oriented full-resolution raster of size px. An empty
// crop selects the whole canvas.
func SourceRect(crop, canvas Rect, px image.Point) (image.Rectangle, error) {
	if canvas.Empty() {
		return image.Rectangle{}, ErrNotFitted
	}
	if crop.Empty() {
		crop = canvas
	}
	sx := float64(px.X) / canvas.Width
	sy := float64(px.Y) / canvas.Height
	x0 := clampPixel(math.Round((crop.Left-canvas.Left)*sx), px.X)
	y0 := clampPixel(math.Round((crop.Top-canvas.Top)*sy), px.Y)
	x1 := clampPixel(math.Round((crop.Right()-canvas.Left)*sx), px.X)
	y1 := clampPixel(math.Round((crop.Bottom()-canvas.Top)*sy), px.Y)
	r := image.Rect(x0, y0, x1, y1)
	if r.Empty() {
		return image.Rectangle{}, ErrInvalidCrop
	}
	return r, nil
}

func clampPixel(v float64, hi int) int {
	return min(max(int(v), 0), hi)
}

// OutputName derives the uploaded file name from the original one: the
// extension becomes .jpg and the name gains the edited_ prefix once.
func OutputName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "image"
	}
	if !strings.HasPrefix(stem, EditedPrefix) {
		stem = EditedPrefix + stem
	}
	return stem + ".jpg"
}
