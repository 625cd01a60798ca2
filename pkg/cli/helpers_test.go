package cli

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Fepozopo/photoedit/pkg/edit"
)

var quiet = log.New(io.Discard)

type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, id int64) (*edit.SourceImage, error) {
	if id != 7 {
		return nil, errors.New("not found")
	}
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 6), G: 90, B: uint8(y * 12), A: 255})
		}
	}
	return &edit.SourceImage{ID: 7, Width: 40, Height: 20, FileName: "beach.png", Raster: img}, nil
}

type stubUploader struct {
	mu    sync.Mutex
	names []string
	fail  bool
}

func (u *stubUploader) Upload(_ context.Context, payload []byte, name string) (*edit.UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.names = append(u.names, name)
	if u.fail {
		return nil, errors.New("503 service unavailable")
	}
	return &edit.UploadResult{ImageID: 100, FileName: name}, nil
}

func openTestEditor(up edit.Uploader) *edit.Editor {
	ed := edit.NewEditor(stubFetcher{}, edit.NewPipeline(up, edit.WithPipelineLogger(quiet)),
		edit.Size{W: 300, H: 600}, edit.WithLogger(quiet))
	if err := ed.Begin(context.Background(), 7); err != nil {
		panic(err)
	}
	return ed
}
