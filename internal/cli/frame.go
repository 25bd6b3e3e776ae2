package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sparques/irscram"
	"github.com/sparques/irscram/nec"
)

// NewFrameCommand creates the frame command.
func NewFrameCommand(root *RootOptions) *cobra.Command {
	var cycles bool

	cmd := &cobra.Command{
		Use:   "frame CODE",
		Short: "Print the mark/space pairs of one NEC frame",
		Long:  "CODE is POWER, CH+, CH-, MUTE, DEFAULT or a 32-bit hex value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := nec.Parse(args[0])
			if err != nil {
				return err
			}
			root.logger(cmd.ErrOrStderr()).Debug("marshalling frame", "code", code)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%v 0x%08X %v\n", code, uint32(code), code.Duration())
			for i, p := range code.MarshalFrame() {
				if cycles {
					fmt.Fprintf(out, "%2d  %6v %6v  %d cycles\n", i, p[0], p[1], irscram.Cycles(p[0]))
					continue
				}
				fmt.Fprintf(out, "%2d  %6v %6v\n", i, p[0], p[1])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&cycles, "cycles", false, "also print the carrier cycles emitted per mark")

	return cmd
}
