package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Fepozopo/photoedit/pkg/gallery"
)

type stubLister struct {
	imgs []gallery.Image
	err  error
}

func (s stubLister) List(context.Context, int, int) ([]gallery.Image, error) {
	return s.imgs, s.err
}

var listing = stubLister{imgs: []gallery.Image{
	{ID: 31, Filename: "beach.jpg", Resolution: "4032x3024"},
	{ID: 17, Filename: "cat.png"},
}}

func testPicker(lister imageLister, input string) *picker {
	return &picker{list: lister, limit: 20, in: bufio.NewReader(strings.NewReader(input)), out: &bytes.Buffer{}}
}

func TestPickByNumber(t *testing.T) {
	id, err := testPicker(listing, "2\n").pick(context.Background())
	if err != nil || id != 17 {
		t.Fatalf("expected 17, got %d %v", id, err)
	}
}

func TestPickByID(t *testing.T) {
	for _, in := range []string{"31\n", "#31\n"} {
		id, err := testPicker(listing, in).pick(context.Background())
		if err != nil || id != 31 {
			t.Fatalf("%q: expected 31, got %d %v", in, id, err)
		}
	}
}

func TestPickCancelled(t *testing.T) {
	if _, err := testPicker(listing, "\n").pick(context.Background()); err == nil {
		t.Fatalf("expected cancellation")
	}
	if _, err := testPicker(listing, "99\n").pick(context.Background()); err == nil {
		t.Fatalf("expected an error for an unknown image")
	}
}

func TestPickWithFzf(t *testing.T) {
	p := testPicker(listing, "")
	var offered string
	p.fzf = func(lines string) (string, error) {
		offered = lines
		return "17: cat.png", nil
	}
	id, err := p.pick(context.Background())
	if err != nil || id != 17 {
		t.Fatalf("expected 17, got %d %v", id, err)
	}
	if offered != "31: beach.jpg (4032x3024)\n17: cat.png\n" {
		t.Fatalf("unexpected fzf input %q", offered)
	}
}

func TestPickListErrors(t *testing.T) {
	if _, err := testPicker(stubLister{err: errors.New("401")}, "").pick(context.Background()); err == nil {
		t.Fatalf("expected list error")
	}
	if _, err := testPicker(stubLister{}, "").pick(context.Background()); err == nil {
		t.Fatalf("expected empty gallery error")
	}
}
