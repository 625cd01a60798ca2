package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Fepozopo/photoedit/pkg/edit"
)

// applyOptions are the edits of a non-interactive run, applied in the order
// rotate, flip, crop, colour.
type applyOptions struct {
	rotate     int
	flipX      bool
	flipY      bool
	crop       string
	brightness string
	contrast   string
	saturation string
}

func newApplyCmd(opts *rootOptions) *cobra.Command {
	var o applyOptions
	cmd := &cobra.Command{
		Use:   "apply <image-id>",
		Short: "Apply an edit from flags and upload the result as a new image",
		Example: `  photoedit apply 42 --rotate 90 --crop 0.1,0.1,0.8,0.8
  photoedit apply 42 --flip-x --brightness 120 --saturation 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseImageID(args[0])
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			prog := newProgress(logger)
			if err := a.editor.Begin(ctx, id); err != nil {
				return err
			}
			if err := o.apply(a.editor); err != nil {
				_ = a.editor.Cancel()
				return err
			}
			res, err := a.editor.Save(ctx)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Exported image %d", id))
			printSuccess(cmd.OutOrStdout(), "saved as image %d (%s)", res.ImageID, res.FileName)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&o.rotate, "rotate", 0, "rotate clockwise by a multiple of 90 degrees (negative for counter-clockwise)")
	f.BoolVar(&o.flipX, "flip-x", false, "mirror left/right")
	f.BoolVar(&o.flipY, "flip-y", false, "mirror top/bottom")
	f.StringVar(&o.crop, "crop", "", "crop box left,top,width,height as fractions of the rotated image")
	f.StringVar(&o.brightness, "brightness", "", "brightness percent (50-150)")
	f.StringVar(&o.contrast, "contrast", "", "contrast percent (50-150)")
	f.StringVar(&o.saturation, "saturation", "", "saturation percent (0-200)")
	return cmd
}

// quarterTurns converts degrees into signed quarter-turn steps.
func quarterTurns(deg int) ([]int, error) {
	if deg%90 != 0 {
		return nil, fmt.Errorf("rotation %d is not a multiple of 90 degrees", deg)
	}
	n := (deg / 90) % 4
	step := 90
	if n < 0 {
		n, step = -n, -90
	}
	turns := make([]int, n)
	for i := range turns {
		turns[i] = step
	}
	return turns, nil
}

func (o applyOptions) apply(ed *edit.Editor) error {
	turns, err := quarterTurns(o.rotate)
	if err != nil {
		return err
	}
	for _, d := range turns {
		if err := ed.Rotate(d); err != nil {
			return err
		}
	}
	if o.flipX {
		if err := ed.Flip(edit.AxisX); err != nil {
			return err
		}
	}
	if o.flipY {
		if err := ed.Flip(edit.AxisY); err != nil {
			return err
		}
	}
	if o.crop != "" {
		if _, err := applyAction(ed, "crop", []string{o.crop}); err != nil {
			return err
		}
	}
	for name, v := range map[string]string{"brightness": o.brightness, "contrast": o.contrast, "saturation": o.saturation} {
		if v == "" {
			continue
		}
		if _, err := applyAction(ed, name, []string{v}); err != nil {
			return err
		}
	}
	return nil
}
