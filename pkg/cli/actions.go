package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Fepozopo/photoedit/pkg/edit"
)

// ArgSpec describes one argument of an editor action, for prompts and help.
type ArgSpec struct {
	Name        string
	Type        string // "percent" or "rect"
	Description string
}

// Action is one key binding of the interactive editor.
type Action struct {
	Key         rune
	Name        string
	Args        []ArgSpec
	Description string
}

// Actions is the key map of the interactive editor. applyAction implements
// every entry.
var Actions = []Action{
	{Key: 'r', Name: "rotate-right", Description: "rotate 90° clockwise (clears the crop)"},
	{Key: 'l', Name: "rotate-left", Description: "rotate 90° counter-clockwise (clears the crop)"},
	{Key: 'x', Name: "flip-x", Description: "mirror left/right"},
	{Key: 'y', Name: "flip-y", Description: "mirror top/bottom"},
	{Key: 'c', Name: "crop-tab", Description: "show the crop panel"},
	{Key: 'a', Name: "adjust-tab", Description: "show the adjust panel"},
	{Key: 'b', Name: "brightness", Args: []ArgSpec{{"value", "percent", "50-150, 100 is unchanged"}}, Description: "set brightness"},
	{Key: 'k', Name: "contrast", Args: []ArgSpec{{"value", "percent", "50-150, 100 is unchanged"}}, Description: "set contrast"},
	{Key: 's', Name: "saturation", Args: []ArgSpec{{"value", "percent", "0-200, 100 is unchanged"}}, Description: "set saturation"},
	{Key: 'p', Name: "crop", Args: []ArgSpec{{"box", "rect", "left,top,width,height as fractions of the image"}}, Description: "select the crop box"},
	{Key: 'z', Name: "reset", Description: "undo every change"},
	{Key: 'w', Name: "save", Description: "export and upload as a new image"},
	{Key: 'q', Name: "cancel", Description: "discard the edit and quit"},
	{Key: 'h', Name: "help", Description: "show this help"},
}

func actionByKey(k rune) (Action, bool) {
	for _, a := range Actions {
		if a.Key == k {
			return a, true
		}
	}
	return Action{}, false
}

// Tooltip is the help text of an action.
func (a Action) Tooltip() string {
	var sb strings.Builder
	sb.WriteString(a.Description)
	for _, arg := range a.Args {
		fmt.Fprintf(&sb, "\n  %s (%s): %s", arg.Name, arg.Type, arg.Description)
	}
	return sb.String()
}

// parsePercent accepts "120", "120%" or "1.2x".
func parsePercent(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasSuffix(s, "%"):
		s = strings.TrimSuffix(s, "%")
	case strings.HasSuffix(strings.ToLower(s), "x"):
		f, err := strconv.ParseFloat(strings.TrimSpace(s[:len(s)-1]), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid factor %q", s)
		}
		return f * 100, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percent value %q", s)
	}
	return f, nil
}

// parseFractionRect parses "left,top,width,height" with every value in [0,1].
func parseFractionRect(s string) (edit.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return edit.Rect{}, fmt.Errorf("crop %q: want left,top,width,height", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return edit.Rect{}, fmt.Errorf("crop %q: %w", s, err)
		}
		if f < 0 || f > 1 {
			return edit.Rect{}, fmt.Errorf("crop %q: values must be fractions between 0 and 1", s)
		}
		v[i] = f
	}
	if v[2] == 0 || v[3] == 0 {
		return edit.Rect{}, fmt.Errorf("crop %q: width and height must be positive", s)
	}
	return edit.Rect{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}, nil
}

// cropFromFractions places a fractional box on the fitted canvas.
func cropFromFractions(canvas, frac edit.Rect) edit.Rect {
	return edit.Rect{
		Left:   canvas.Left + frac.Left*canvas.Width,
		Top:    canvas.Top + frac.Top*canvas.Height,
		Width:  frac.Width * canvas.Width,
		Height: frac.Height * canvas.Height,
	}
}

// applyAction runs the editing action name with already prompted arguments
// and returns a short description of what changed. save, cancel and help are
// session-level and handled by the caller.
func applyAction(ed *edit.Editor, name string, args []string) (string, error) {
	switch name {
	case "rotate-right", "rotate-left":
		delta := 90
		if name == "rotate-left" {
			delta = -90
		}
		if err := ed.Rotate(delta); err != nil {
			return "", err
		}
		snap, _ := ed.Snapshot()
		return fmt.Sprintf("rotation %d°", snap.Transform.Rotation), nil
	case "flip-x", "flip-y":
		axis, err := edit.ParseAxis(strings.TrimPrefix(name, "flip-"))
		if err != nil {
			return "", err
		}
		if err := ed.Flip(axis); err != nil {
			return "", err
		}
		return "flipped " + axis.String(), nil
	case "crop-tab":
		return "crop panel", ed.SelectTab(edit.TabCrop)
	case "adjust-tab":
		return "adjust panel", ed.SelectTab(edit.TabAdjust)
	case "brightness", "contrast", "saturation":
		if len(args) != 1 {
			return "", fmt.Errorf("%s: expected one value", name)
		}
		kind, err := edit.ParseFilterKind(name)
		if err != nil {
			return "", err
		}
		v, err := parsePercent(args[0])
		if err != nil {
			return "", err
		}
		if err := ed.SelectTab(edit.TabAdjust); err != nil {
			return "", err
		}
		stored, err := ed.SetFilter(kind, v)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %g%%", name, stored), nil
	case "crop":
		if len(args) != 1 {
			return "", fmt.Errorf("crop: expected one box")
		}
		frac, err := parseFractionRect(args[0])
		if err != nil {
			return "", err
		}
		if err := ed.SelectTab(edit.TabCrop); err != nil {
			return "", err
		}
		v, err := ed.View()
		if err != nil {
			return "", err
		}
		if err := ed.SetCrop(cropFromFractions(v.Canvas, frac)); err != nil {
			return "", err
		}
		return "crop " + args[0], nil
	case "reset":
		return "reset", ed.Reset()
	}
	return "", fmt.Errorf("unknown action %q", name)
}
