// Package cli implements the photoedit command line: an interactive editor and
// a flag-driven batch mode for the photo gallery, plus self-update.
package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Fepozopo/photoedit/pkg/config"
)

type rootOptions struct {
	verbose    bool
	configPath string
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	return config.Load(o.configPath)
}

// NewRootCmd builds the photoedit command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "photoedit",
		Short: "Crop, rotate, flip and colour-adjust gallery photos from the terminal",
		Long: `photoedit edits images stored in the photo gallery. Every save uploads a
new edited copy named edited_<name>.jpg; originals are never modified.

Configuration comes from --config (TOML), a .env file and PHOTOEDIT_*
environment variables.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if opts.verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a TOML config file")

	cmd.AddCommand(newEditCmd(opts))
	cmd.AddCommand(newApplyCmd(opts))
	cmd.AddCommand(newUpdateCmd())
	return cmd
}
