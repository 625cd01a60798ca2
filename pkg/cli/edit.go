package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Fepozopo/photoedit/pkg/edit"
)

func newEditCmd(opts *rootOptions) *cobra.Command {
	var noPreview bool
	cmd := &cobra.Command{
		Use:   "edit [image-id]",
		Short: "Edit an image interactively and upload the result as a new image",
		Long: `Opens the image in an interactive editing session. Type a key (and press
enter) to rotate, flip, crop or adjust colours; several keys can be typed on
one line. Saving uploads an edited copy; the original is never changed.

Without an image id, the newest images are listed to pick from.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			in := bufio.NewReader(cmd.InOrStdin())
			var id int64
			if len(args) == 1 {
				id, err = parseImageID(args[0])
			} else {
				id, err = newPicker(a.client, cfg.RefreshLimit, in, cmd.OutOrStdout()).pick(ctx)
			}
			if err != nil {
				return err
			}
			prog := newProgress(logger)
			if err := a.editor.Begin(ctx, id); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Loaded image %d", id))

			s := newEditSession(a.editor, in, cmd.OutOrStdout(), logger)
			if !noPreview {
				if p := newPreviewer(cmd.OutOrStdout(), logger); p.Supported() {
					s.preview = p
				}
			}
			return s.run(ctx)
		},
	}
	cmd.Flags().BoolVar(&noPreview, "no-preview", false, "do not draw the image in the terminal")
	return cmd
}

func parseImageID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid image id %q", s)
	}
	return id, nil
}

// editSession is the interactive loop over an open Editor.
type editSession struct {
	ed      *edit.Editor
	in      *bufio.Reader
	out     io.Writer
	preview *previewer
	logger  *log.Logger
}

func newEditSession(ed *edit.Editor, in io.Reader, out io.Writer, logger *log.Logger) *editSession {
	return &editSession{ed: ed, in: bufio.NewReader(in), out: out, logger: logger}
}

func (s *editSession) usage() {
	fmt.Fprintln(s.out, styleTitle.Render("Keys"))
	for _, a := range Actions {
		fmt.Fprintf(s.out, "  %s  %s\n", styleKey.Render(string(a.Key)), a.Description)
	}
}

// run reads lines until the edit is saved or cancelled. End of input cancels.
func (s *editSession) run(ctx context.Context) error {
	fmt.Fprintln(s.out, styleTitle.Render("Photo editor"))
	s.usage()
	s.show()
	for {
		line, err := promptLine(s.in, s.out, "> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				if cerr := s.ed.Cancel(); cerr == nil {
					printInfo(s.out, "input closed, edit discarded")
				}
				return nil
			}
			return err
		}
		done, err := s.handleLine(ctx, line)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// handleLine runs the keys on one input line. An action that takes an
// argument consumes the rest of the line, or prompts for it.
func (s *editSession) handleLine(ctx context.Context, line string) (done bool, err error) {
	changed := false
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		k := runes[i]
		if k == ' ' || k == '\t' {
			continue
		}
		a, ok := actionByKey(k)
		if !ok {
			printWarning(s.out, "unknown key %q, press h for help", k)
			continue
		}
		switch a.Name {
		case "help":
			s.usage()
			continue
		case "cancel":
			if err := s.ed.Cancel(); err != nil {
				printError(s.out, "%v", err)
				continue
			}
			printInfo(s.out, "edit discarded")
			return true, nil
		case "save":
			res, err := s.ed.Save(ctx)
			if err != nil {
				printError(s.out, "save failed, your edit is kept: %v", err)
				continue
			}
			printSuccess(s.out, "saved as image %d (%s)", res.ImageID, res.FileName)
			return true, nil
		}

		var args []string
		if len(a.Args) > 0 {
			arg := strings.TrimSpace(string(runes[i+1:]))
			i = len(runes)
			if arg == "" {
				fmt.Fprintln(s.out, styleDim.Render(a.Tooltip()))
				arg, err = promptLine(s.in, s.out, a.Args[0].Name+": ")
				if err != nil {
					return false, err
				}
			}
			args = []string{arg}
		}
		msg, err := applyAction(s.ed, a.Name, args)
		if err != nil {
			printError(s.out, "%s: %v", a.Name, err)
			continue
		}
		s.logger.Debug("action", "name", a.Name, "args", args)
		printInfo(s.out, "%s", msg)
		changed = true
	}
	if changed {
		s.show()
	}
	return false, nil
}

// show prints the edit state and redraws the preview.
func (s *editSession) show() {
	snap, err := s.ed.Snapshot()
	if err != nil {
		return
	}
	v, _ := s.ed.View()
	tab, _ := s.ed.Tab()
	src, _ := s.ed.Source()
	if src != nil {
		printKeyValue(s.out, "image", fmt.Sprintf("%d %s (%dx%d)", src.ID, src.FileName, src.Width, src.Height))
	}
	printKeyValue(s.out, "panel", tab.String())
	printKeyValue(s.out, "rotation", fmt.Sprintf("%d°", snap.Transform.Rotation))
	printKeyValue(s.out, "flip", fmt.Sprintf("x=%d y=%d", snap.Transform.FlipX, snap.Transform.FlipY))
	printKeyValue(s.out, "crop", describeCrop(snap.Transform.Crop, v.Canvas))
	printKeyValue(s.out, "filter", snap.Filters.CSS())

	if s.preview == nil {
		return
	}
	img, err := s.ed.Preview()
	if err != nil {
		s.logger.Debug("preview render failed", "err", err)
		return
	}
	if err := s.preview.Show(img, "png"); err != nil {
		s.logger.Debug("preview failed", "err", err)
	}
}

// describeCrop expresses crop as fractions of the canvas.
func describeCrop(crop, canvas edit.Rect) string {
	if canvas.Empty() {
		return "not fitted"
	}
	if crop.Empty() || crop.ApproxEqual(canvas, 1e-6) {
		return "full image"
	}
	return fmt.Sprintf("%.3f,%.3f,%.3f,%.3f",
		(crop.Left-canvas.Left)/canvas.Width,
		(crop.Top-canvas.Top)/canvas.Height,
		crop.Width/canvas.Width,
		crop.Height/canvas.Height)
}
