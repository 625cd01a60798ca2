package cli

import (
	"github.com/charmbracelet/log"

	"github.com/Fepozopo/photoedit/pkg/config"
	"github.com/Fepozopo/photoedit/pkg/edit"
	"github.com/Fepozopo/photoedit/pkg/gallery"
)

// app holds the wired gallery client and editor for one command run.
type app struct {
	client *gallery.Client
	editor *edit.Editor
}

func newApp(cfg config.Config, logger *log.Logger) (*app, error) {
	w, h, err := config.ParseViewport(cfg.Viewport)
	if err != nil {
		return nil, err
	}
	client := gallery.NewClient(cfg.APIURL,
		gallery.WithStaticURL(cfg.StaticURL),
		gallery.WithToken(cfg.Token),
		gallery.WithTimeout(cfg.Timeout.Duration),
		gallery.WithLogger(logger),
	)
	pipeline := edit.NewPipeline(client, edit.WithPipelineLogger(logger))
	ed := edit.NewEditor(client, pipeline, edit.Size{W: w, H: h},
		edit.WithRefresher(client.Refresher(cfg.RefreshLimit)),
		edit.WithLogger(logger),
	)
	return &app{client: client, editor: ed}, nil
}
