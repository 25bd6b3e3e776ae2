package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sparques/irscram/internal/profile"
	"github.com/sparques/irscram/internal/sim"
	"github.com/sparques/irscram/nec"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	Profile    string
	StartDelay uint8
	Channels   uint8
	Powers     uint16
	Down       bool
	CancelAt   []time.Duration
	WakeAt     time.Duration
	Hold       time.Duration
	Cycles     int
}

// NewRunCommand creates the run command.
func NewRunCommand(root *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate sleep/wake/scramble cycles and print the timeline",
		Long: `Simulate the device. It starts asleep; it is woken --wake-at into the
run and again, one second after each halt, for every further cycle.
Each --cancel-at adds a press at that virtual time, which cancels
whatever run is in progress (or wakes the device if it is asleep).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSim(cmd, root, opts)
		},
	}

	defaults := profile.Profile{}
	params := defaults.Params()
	cmd.Flags().StringVarP(&opts.Profile, "profile", "p", "", "YAML profile with params and presses")
	cmd.Flags().Uint8Var(&opts.StartDelay, "start-delay", params.StartDelay, "indicator blinks before the first frame")
	cmd.Flags().Uint8Var(&opts.Channels, "channels", params.ChannelRepeats, "channel frames to send")
	cmd.Flags().Uint16Var(&opts.Powers, "powers", params.PowerRepeats, "power frames to send (odd ends off)")
	cmd.Flags().BoolVar(&opts.Down, "down", false, "send channel-down instead of channel-up")
	cmd.Flags().DurationSliceVar(&opts.CancelAt, "cancel-at", nil, "press the button at this virtual time (repeatable)")
	cmd.Flags().DurationVar(&opts.WakeAt, "wake-at", time.Second, "virtual time of the first wake press")
	cmd.Flags().DurationVar(&opts.Hold, "hold", sim.DefaultHold, "how long each press is held")
	cmd.Flags().IntVar(&opts.Cycles, "cycles", 1, "number of sleep/wake cycles to run")

	return cmd
}

func runSim(cmd *cobra.Command, root *RootOptions, opts *RunOptions) error {
	logger := root.logger(cmd.ErrOrStderr())

	cfg, err := opts.config(cmd)
	if err != nil {
		return err
	}
	for _, w := range cfg.Params.Warnings() {
		logger.Warn(w)
	}
	cfg.Logger = logger

	if opts.Cycles < 1 {
		return fmt.Errorf("--cycles must be at least 1")
	}

	dev, err := sim.NewDevice(cfg)
	if err != nil {
		return err
	}
	outcomes, err := dev.Cycles(opts.Cycles)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := dev.Timeline().WriteTo(out); err != nil {
		return err
	}
	for i, o := range outcomes {
		fmt.Fprintf(out, "cycle %d: %s\n", i+1, o)
	}
	for _, v := range dev.Board.Violations() {
		logger.Error("hardware misuse", "detail", v)
	}
	if n := len(dev.Board.Violations()); n > 0 {
		return fmt.Errorf("%d hardware misuse(s)", n)
	}
	return nil
}

// config merges defaults, the profile and explicitly set flags, in that order.
func (opts *RunOptions) config(cmd *cobra.Command) (sim.Config, error) {
	p := &profile.Profile{}
	if opts.Profile != "" {
		var err error
		if p, err = profile.Load(opts.Profile); err != nil {
			return sim.Config{}, err
		}
	}

	params := p.Params()
	codes, err := p.Codes()
	if err != nil {
		return sim.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("start-delay") {
		params.StartDelay = opts.StartDelay
	}
	if flags.Changed("channels") {
		params.ChannelRepeats = opts.Channels
	}
	if flags.Changed("powers") {
		params.PowerRepeats = opts.Powers
	}
	if opts.Down {
		codes.Channel = nec.ChannelDown
	}

	presses := p.Presses
	if len(presses) == 0 || flags.Changed("wake-at") {
		presses = append([]sim.Press{{At: opts.WakeAt, Hold: opts.Hold}}, presses...)
	}
	for _, at := range opts.CancelAt {
		presses = append(presses, sim.Press{At: at, Hold: opts.Hold})
	}

	return sim.Config{
		Params:   params,
		Codes:    codes,
		Presses:  presses,
		IdleWake: time.Second,
	}, nil
}
