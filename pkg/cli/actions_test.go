package cli

import (
	"math"
	"testing"

	"github.com/Fepozopo/photoedit/pkg/edit"
)

func TestEveryKeyIsUnique(t *testing.T) {
	seen := map[rune]string{}
	for _, a := range Actions {
		if prev, ok := seen[a.Key]; ok {
			t.Fatalf("key %q bound to both %s and %s", a.Key, prev, a.Name)
		}
		seen[a.Key] = a.Name
	}
}

func TestEveryEditingActionIsImplemented(t *testing.T) {
	session := map[string]bool{"save": true, "cancel": true, "help": true}
	for _, a := range Actions {
		if session[a.Name] {
			continue
		}
		ed := openTestEditor(&stubUploader{})
		var args []string
		switch a.Name {
		case "crop":
			args = []string{"0,0,0.5,0.5"}
		case "brightness", "contrast", "saturation":
			args = []string{"110"}
		}
		if _, err := applyAction(ed, a.Name, args); err != nil {
			t.Fatalf("%s: %v", a.Name, err)
		}
	}
}

func TestParsePercent(t *testing.T) {
	cases := map[string]float64{"120": 120, "85%": 85, " 1.5x": 150, "0": 0}
	for in, want := range cases {
		got, err := parsePercent(in)
		if err != nil || math.Abs(got-want) > 1e-9 {
			t.Fatalf("parsePercent(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "abc", "x", "%"} {
		if _, err := parsePercent(bad); err == nil {
			t.Fatalf("expected an error for %q", bad)
		}
	}
}

func TestParseFractionRect(t *testing.T) {
	r, err := parseFractionRect("0.1, 0.2,0.5,0.25")
	if err != nil || r != (edit.Rect{Left: 0.1, Top: 0.2, Width: 0.5, Height: 0.25}) {
		t.Fatalf("unexpected %v %v", r, err)
	}
	for _, bad := range []string{"", "1,2,3", "0,0,0,1", "0,0,1.5,1", "a,b,c,d", "-0.1,0,1,1"} {
		if _, err := parseFractionRect(bad); err == nil {
			t.Fatalf("expected an error for %q", bad)
		}
	}
}

func TestCropAction(t *testing.T) {
	ed := openTestEditor(&stubUploader{})
	if _, err := applyAction(ed, "crop", []string{"0.5,0,0.5,1"}); err != nil {
		t.Fatalf("crop: %v", err)
	}
	snap, _ := ed.Snapshot()
	// canvas is {0,225,300,150}
	want := edit.Rect{Left: 150, Top: 225, Width: 150, Height: 150}
	if !snap.Transform.Crop.ApproxEqual(want, 1e-9) {
		t.Fatalf("crop %v, want %v", snap.Transform.Crop, want)
	}
	if tab, _ := ed.Tab(); tab != edit.TabCrop {
		t.Fatalf("crop must switch to the crop panel")
	}
}

func TestSliderActionClampsAndSwitchesTab(t *testing.T) {
	ed := openTestEditor(&stubUploader{})
	msg, err := applyAction(ed, "contrast", []string{"400%"})
	if err != nil {
		t.Fatalf("contrast: %v", err)
	}
	if msg != "contrast 150%" {
		t.Fatalf("unexpected message %q", msg)
	}
	if tab, _ := ed.Tab(); tab != edit.TabAdjust {
		t.Fatalf("slider must switch to the adjust panel")
	}
}

func TestDescribeCrop(t *testing.T) {
	canvas := edit.Rect{Left: 0, Top: 225, Width: 300, Height: 150}
	if got := describeCrop(canvas, canvas); got != "full image" {
		t.Fatalf("got %q", got)
	}
	if got := describeCrop(edit.Rect{Left: 150, Top: 225, Width: 150, Height: 75}, canvas); got != "0.500,0.000,0.500,0.500" {
		t.Fatalf("got %q", got)
	}
	if got := describeCrop(edit.Rect{}, edit.Rect{}); got != "not fitted" {
		t.Fatalf("got %q", got)
	}
}
