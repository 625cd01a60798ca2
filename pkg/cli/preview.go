package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
)

// previewer draws the edited image in the terminal. Backends, in order of
// preference: iTerm2-style inline images (OSC 1337), the kitty graphics
// protocol, sixel through img2sixel, and chafa block graphics.
//
// PREVIEW_BACKEND forces a backend ("inline", "kitty", "sixel", "chafa") and
// PREVIEW_DEBUG=1 logs backend detection.
type previewer struct {
	out    io.Writer
	getenv func(string) string
	logger *log.Logger
	debug  bool
}

func newPreviewer(out io.Writer, logger *log.Logger) *previewer {
	p := &previewer{out: out, getenv: os.Getenv, logger: logger}
	if d := p.getenv("PREVIEW_DEBUG"); d == "1" || d == "true" {
		p.debug = true
	}
	return p
}

func (p *previewer) debugf(format string, args ...any) {
	if p.debug {
		p.logger.Debugf("preview: "+format, args...)
	}
}

func (p *previewer) isKitty() bool {
	if p.getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	term := strings.ToLower(p.getenv("TERM"))
	if strings.Contains(term, "kitty") || strings.Contains(term, "ghostty") {
		return true
	}
	return p.getenv("KONSOLE_VERSION") != ""
}

func (p *previewer) isInlineCapable() bool {
	switch p.getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "VSCode", "Tabby", "Bobcat":
		return true
	}
	term := strings.ToLower(p.getenv("TERM"))
	if strings.Contains(term, "wezterm") || strings.Contains(term, "warp") ||
		strings.Contains(term, "tabby") || strings.Contains(term, "vscode") {
		return true
	}
	return p.getenv("ITERM_SESSION_ID") != ""
}

func (p *previewer) isSixelCapable() bool {
	if p.getenv("SIXEL_PREVIEW") == "1" {
		return true
	}
	term := strings.ToLower(p.getenv("TERM"))
	if strings.Contains(term, "foot") || strings.HasPrefix(term, "st-") || term == "st" {
		return true
	}
	return p.getenv("WT_SESSION") != ""
}

func (p *previewer) hasChafa() bool {
	if p.getenv("NO_CHAFA") == "1" {
		return false
	}
	_, err := exec.LookPath("chafa")
	return err == nil
}

// Supported reports whether any backend is likely to work.
func (p *previewer) Supported() bool {
	ok := p.getenv("PREVIEW_BACKEND") != "" || p.isInlineCapable() || p.isKitty() || p.isSixelCapable() || p.hasChafa()
	p.debugf("supported=%v kitty=%v inline=%v sixel=%v", ok, p.isKitty(), p.isInlineCapable(), p.isSixelCapable())
	return ok
}

// Show encodes img and sends it to the terminal. format is "png" or "jpeg";
// kitty always receives PNG.
func (p *previewer) Show(img image.Image, format string) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	backend := strings.ToLower(p.getenv("PREVIEW_BACKEND"))
	f := strings.ToLower(format)
	if backend == "kitty" || (backend == "" && p.isKitty()) {
		f = "png"
	}
	var buf bytes.Buffer
	var err error
	if f == "jpeg" || f == "jpg" {
		f = "jpeg"
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(92))
	} else {
		f = "png"
		err = imaging.Encode(&buf, img, imaging.PNG)
	}
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return p.send(buf.Bytes(), f, computePreviewSize(img), backend)
}

type previewSize struct {
	Cols        int
	Rows        int
	PixelWidth  int
	PixelHeight int
}

// computePreviewSize maps pixel dimensions onto terminal cells (8x16 px),
// keeping the aspect ratio, never enlarging and clamping to 80x40 cells.
func computePreviewSize(img image.Image) previewSize {
	const (
		charW   = 8
		charH   = 16
		minCols = 6
		minRows = 3
		maxCols = 80
		maxRows = 40
	)
	w := max(img.Bounds().Dx(), 1)
	h := max(img.Bounds().Dy(), 1)
	scale := math.Min(1.0, math.Min(float64(maxCols*charW)/float64(w), float64(maxRows*charH)/float64(h)))
	cols := int(math.Round(float64(w) * scale / charW))
	rows := int(math.Round(float64(h) * scale / charH))
	cols = min(max(cols, minCols), maxCols)
	rows = min(max(rows, minRows), maxRows)
	return previewSize{Cols: cols, Rows: rows, PixelWidth: cols * charW, PixelHeight: rows * charH}
}

// trailingNewlines is how many lines to advance after an image so the prompt
// lands below it.
func trailingNewlines(rows int) int {
	switch {
	case rows <= 2:
		return 1
	case rows <= 6:
		return 2
	case rows <= 20:
		return 3
	}
	return 4
}

func (p *previewer) send(blob []byte, format string, size previewSize, backend string) error {
	if len(blob) == 0 {
		return fmt.Errorf("empty image blob")
	}
	backends := map[string]func([]byte, string, previewSize) error{
		"inline": p.sendInline,
		"kitty":  p.sendKitty,
		"sixel":  p.sendSixel,
		"chafa":  p.sendChafa,
	}
	if backend == "iterm" || backend == "wezterm" {
		backend = "inline"
	}
	if fn, ok := backends[backend]; ok {
		if err := fn(blob, format, size); err == nil {
			return nil
		} else {
			p.debugf("forced backend %s failed: %v", backend, err)
		}
	} else if backend != "" {
		p.debugf("unknown PREVIEW_BACKEND %q", backend)
	}

	var order []string
	if p.isInlineCapable() {
		order = append(order, "inline")
	}
	if p.isKitty() {
		order = append(order, "kitty")
	}
	if p.isSixelCapable() {
		order = append(order, "sixel")
	}
	if p.hasChafa() {
		order = append(order, "chafa")
	}
	var lastErr error
	for _, name := range order {
		if name == backend {
			continue
		}
		p.debugf("trying %s", name)
		if lastErr = backends[name](blob, format, size); lastErr == nil {
			return nil
		}
		p.debugf("%s failed: %v", name, lastErr)
	}
	if lastErr != nil {
		return fmt.Errorf("preview failed: %w", lastErr)
	}
	return fmt.Errorf("no preview protocol matched")
}

func (p *previewer) newlines(n int) {
	for range n {
		fmt.Fprintln(p.out)
	}
}

// sendKitty transmits PNG data with the kitty graphics protocol in base64
// chunks of at most 4096 bytes. The first chunk carries the placement.
func (p *previewer) sendKitty(data []byte, _ string, size previewSize) error {
	enc := base64.StdEncoding.EncodeToString(data)
	const chunkSize = 4096
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := min(pos+chunkSize, len(enc))
		more := "0"
		if end < len(enc) {
			more = "1"
		}
		var seq string
		if pos == 0 {
			seq = fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;%s\x1b\\", size.Cols, size.Rows, more, enc[pos:end])
		} else {
			seq = "\x1b_Gm=" + more + ";" + enc[pos:end] + "\x1b\\"
		}
		if _, err := io.WriteString(p.out, seq); err != nil {
			return err
		}
	}
	p.newlines(trailingNewlines(size.Rows))
	return nil
}

// sendInline emits the iTerm2 OSC 1337 inline file sequence.
func (p *previewer) sendInline(data []byte, format string, size previewSize) error {
	name := "preview.png"
	if format == "jpeg" {
		name = "preview.jpg"
	}
	meta := fmt.Sprintf("size=%d;", len(data))
	if size.PixelWidth > 0 && size.PixelHeight > 0 {
		meta += fmt.Sprintf("width=%dpx;height=%dpx;", size.PixelWidth, size.PixelHeight)
	}
	seq := "\x1b]1337;File=name=" + name + ";inline=1;" + meta + ":" + base64.StdEncoding.EncodeToString(data) + "\a"
	if _, err := io.WriteString(p.out, seq); err != nil {
		return err
	}
	p.newlines(trailingNewlines(0))
	return nil
}

// sendSixel pipes the image through img2sixel.
func (p *previewer) sendSixel(data []byte, _ string, _ previewSize) error {
	if _, err := exec.LookPath("img2sixel"); err != nil {
		return fmt.Errorf("img2sixel not found in PATH: %w", err)
	}
	cmd := exec.Command("img2sixel", "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = p.out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("img2sixel: %w", err)
	}
	p.newlines(trailingNewlines(0))
	return nil
}

// sendChafa renders block graphics with chafa. CHAFA_FILL and CHAFA_SYMBOLS
// override the defaults.
func (p *previewer) sendChafa(data []byte, _ string, size previewSize) error {
	if !p.hasChafa() {
		return fmt.Errorf("chafa not available")
	}
	fill, symbols := "block", "block"
	if v := p.getenv("CHAFA_FILL"); v != "" {
		fill = v
	}
	if v := p.getenv("CHAFA_SYMBOLS"); v != "" {
		symbols = v
	}
	cmd := exec.Command("chafa", "--fill="+fill, "--symbols="+symbols, "-s", fmt.Sprintf("%dx%d", size.Cols, size.Rows), "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = p.out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("chafa: %w", err)
	}
	p.newlines(trailingNewlines(size.Rows))
	return nil
}
