package cli

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func testPreviewer(out io.Writer, vars map[string]string) *previewer {
	p := newPreviewer(out, log.New(io.Discard))
	p.getenv = fakeEnv(vars)
	return p
}

func tinyImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 255, 0, 255})
	img.Set(0, 1, color.NRGBA{0, 0, 255, 255})
	img.Set(1, 1, color.NRGBA{255, 255, 0, 255})
	return img
}

func inlinePayload(t *testing.T, out string) []byte {
	t.Helper()
	idx := strings.Index(out, ":")
	if idx < 0 {
		t.Fatalf("no payload in output: %q", out)
	}
	payload := out[idx+1:]
	if bi := strings.IndexByte(payload, '\a'); bi >= 0 {
		payload = payload[:bi]
	}
	dec, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("base64 decode failed: %v", err)
	}
	return dec
}

func TestPreviewInlineSequence(t *testing.T) {
	var buf bytes.Buffer
	p := testPreviewer(&buf, map[string]string{"TERM_PROGRAM": "WezTerm", "TERM": "xterm-256color"})
	if err := p.Show(tinyImage(), "png"); err != nil {
		t.Fatalf("show: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\x1b]1337;File=name=preview.png;inline=1;") {
		t.Fatalf("expected inline 1337 sequence, got %q", out)
	}
	if dec := inlinePayload(t, out); !bytes.HasPrefix(dec, []byte("\x89PNG")) {
		t.Fatalf("expected PNG payload")
	}
}

func TestPreviewEncodesJPEG(t *testing.T) {
	var buf bytes.Buffer
	p := testPreviewer(&buf, map[string]string{"TERM_PROGRAM": "WezTerm"})
	if err := p.Show(tinyImage(), "jpeg"); err != nil {
		t.Fatalf("show: %v", err)
	}
	dec := inlinePayload(t, buf.String())
	if len(dec) < 2 || dec[0] != 0xFF || dec[1] != 0xD8 {
		t.Fatalf("expected JPEG SOI bytes")
	}
}

func TestPreviewKittyForcesPNG(t *testing.T) {
	var buf bytes.Buffer
	p := testPreviewer(&buf, map[string]string{"PREVIEW_BACKEND": "kitty"})
	if err := p.Show(tinyImage(), "jpeg"); err != nil {
		t.Fatalf("show: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\x1b_Ga=T,f=100,t=d,q=2,c=6,r=3,m=0;") {
		t.Fatalf("unexpected kitty header: %q", out[:min(len(out), 40)])
	}
}

func TestComputePreviewSize(t *testing.T) {
	cases := []struct {
		w, h       int
		cols, rows int
	}{
		{2, 2, 6, 3},
		{640, 320, 80, 20},
		{4000, 3000, 80, 30},
		{160, 640, 20, 40},
	}
	for _, tc := range cases {
		got := computePreviewSize(image.NewNRGBA(image.Rect(0, 0, tc.w, tc.h)))
		if got.Cols != tc.cols || got.Rows != tc.rows {
			t.Fatalf("%dx%d: got %dx%d cells, want %dx%d", tc.w, tc.h, got.Cols, got.Rows, tc.cols, tc.rows)
		}
		if got.PixelWidth != got.Cols*8 || got.PixelHeight != got.Rows*16 {
			t.Fatalf("pixel size does not match cells: %+v", got)
		}
	}
}
