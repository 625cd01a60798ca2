package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Fepozopo/photoedit/pkg/gallery"
)

type imageLister interface {
	List(ctx context.Context, skip, limit int) ([]gallery.Image, error)
}

// picker chooses an image from the first page of the gallery listing, with
// fzf when it is installed and a numbered prompt otherwise.
type picker struct {
	list  imageLister
	limit int
	in    *bufio.Reader
	out   io.Writer
	fzf   func(lines string) (string, error) // nil disables fzf
}

func newPicker(list imageLister, limit int, in *bufio.Reader, out io.Writer) *picker {
	p := &picker{list: list, limit: limit, in: in, out: out}
	if _, err := exec.LookPath("fzf"); err == nil {
		p.fzf = runFzf
	}
	return p
}

func imageLine(img gallery.Image) string {
	line := fmt.Sprintf("%d: %s", img.ID, img.Filename)
	if img.Resolution != "" {
		line += " (" + img.Resolution + ")"
	}
	return line
}

func (p *picker) pick(ctx context.Context) (int64, error) {
	imgs, err := p.list.List(ctx, 0, p.limit)
	if err != nil {
		return 0, fmt.Errorf("list images: %w", err)
	}
	if len(imgs) == 0 {
		return 0, fmt.Errorf("the gallery is empty")
	}

	if p.fzf != nil {
		var b strings.Builder
		for _, img := range imgs {
			b.WriteString(imageLine(img) + "\n")
		}
		if sel, err := p.fzf(b.String()); err == nil && sel != "" {
			id, _, _ := strings.Cut(sel, ":")
			return parseImageID(id)
		}
	}

	fmt.Fprintln(p.out, styleTitle.Render("Images"))
	for i, img := range imgs {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, imageLine(img))
	}
	sel, err := promptLine(p.in, p.out, "Enter number or image id (leave empty to cancel): ")
	if err != nil {
		return 0, err
	}
	if sel == "" {
		return 0, fmt.Errorf("selection cancelled")
	}
	if strings.HasPrefix(sel, "#") {
		return parseImageID(strings.TrimPrefix(sel, "#"))
	}
	n, err := strconv.Atoi(sel)
	if err != nil {
		return 0, fmt.Errorf("invalid selection %q", sel)
	}
	if n >= 1 && n <= len(imgs) {
		return imgs[n-1].ID, nil
	}
	for _, img := range imgs {
		if img.ID == int64(n) {
			return img.ID, nil
		}
	}
	return 0, fmt.Errorf("no image %q on the first page", sel)
}

func runFzf(lines string) (string, error) {
	cmd := exec.Command("fzf", "--height", "40%", "--border", "--prompt=Image> ")
	cmd.Stdin = strings.NewReader(lines)
	cmd.Stderr = os.Stderr
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("fzf: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}
