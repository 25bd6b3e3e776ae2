package sim

import (
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/sparques/irscram"
	"github.com/sparques/irscram/power"
	"github.com/sparques/irscram/scramble"
)

// Config describes a simulated run.
type Config struct {
	Params  scramble.Params
	Codes   scramble.Codes
	Presses []Press
	// IdleWake is passed to Board.IdleWake.
	IdleWake time.Duration
	Logger   hclog.Logger
}

// Device is the firmware wired to an emulated board, the same way
// cmd/irscram wires it to an rp2040.
type Device struct {
	Board     *Board
	IR        *Pin
	Indicator *Pin
	Abort     *irscram.Abort
	Sequencer *scramble.Sequencer
	Machine   *power.Machine
	Recorder  *Recorder
}

func NewDevice(cfg Config) (*Device, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	codes := cfg.Codes
	if codes == (scramble.Codes{}) {
		codes = scramble.DefaultCodes()
	}

	b := NewBoard()
	b.IdleWake = cfg.IdleWake
	rec := NewRecorder(b)
	b.OnPress = rec.Press
	for _, p := range cfg.Presses {
		b.Schedule(p)
	}

	ir := b.NewPin()
	ir.OnEdge = rec.IREdge
	led := b.NewPin()
	led.OnEdge = rec.LEDEdge

	abort := &irscram.Abort{}
	pacer := irscram.NewPacer(b, abort)
	tx := irscram.NewTxDevice(irscram.NewBitBang(ir, pacer))
	seq := scramble.NewSequencer(tx, led, pacer,
		scramble.WithCodes(codes),
		scramble.WithLogger(logger.Named("scramble")),
	)

	m, err := power.NewMachine(power.Config{
		Trigger:    b.Trigger(),
		LowPower:   b.LowPower(),
		Interrupts: b.Interrupts(),
		Runner:     seq,
		Params:     cfg.Params,
		Abort:      abort,
		Delayer:    b,
		Safe: func() {
			tx.Carrier().Off()
			led.Low()
		},
		OnState: rec.State,
		Logger:  logger.Named("power"),
	})
	if err != nil {
		return nil, err
	}

	return &Device{
		Board:     b,
		IR:        ir,
		Indicator: led,
		Abort:     abort,
		Sequencer: seq,
		Machine:   m,
		Recorder:  rec,
	}, nil
}

// Cycles runs n sleep/wake/scramble cycles and returns their outcomes.
func (d *Device) Cycles(n int) ([]power.Outcome, error) {
	out := make([]power.Outcome, 0, n)
	for i := 0; i < n; i++ {
		o, err := d.Machine.Cycle()
		if err != nil {
			return out, err
		}
		out = append(out, o)
	}
	d.Recorder.Finish()
	return out, nil
}

// Timeline is shorthand for d.Recorder.Timeline().
func (d *Device) Timeline() Timeline {
	return d.Recorder.Timeline()
}
