// Package cli implements the irscram-sim command line.
package cli

import (
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/sparques/irscram/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel string
}

func (o *RootOptions) logger(w io.Writer) hclog.Logger {
	return logging.NewLogger("irscram-sim", o.LogLevel, w)
}

// NewRootCommand creates the root command for irscram-sim.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "irscram-sim",
		Short:         "Run the irscram firmware on a virtual clock",
		Long:          "Runs the scramble engine against an emulated board and prints what the IR LED, indicator and trigger did.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", logging.GetLogLevel(), "log level (trace|debug|info|warn|error)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewFrameCommand(opts))

	return cmd
}
