// Package scramble runs the scripted mute, channel and power sequence.
package scramble

import (
	"fmt"
	"time"

	"github.com/sparques/irscram"
	"github.com/sparques/irscram/nec"
)

const (
	BlinkOn      = 500 * time.Millisecond
	BlinkOff     = 500 * time.Millisecond
	AfterMute    = 500 * time.Millisecond
	AfterChannel = 1000 * time.Millisecond
	AfterPower   = 1500 * time.Millisecond
)

// Params are supplied per run.
type Params struct {
	// StartDelay is the number of one-second indicator blinks before the first frame.
	StartDelay uint8
	// ChannelRepeats is how many channel frames are sent.
	ChannelRepeats uint8
	// PowerRepeats is how many power frames are sent. Use an odd number so
	// a set that started on ends off.
	PowerRepeats uint16
}

// DefaultParams is the script the firmware runs on every wake.
func DefaultParams() Params {
	return Params{
		StartDelay:     20,
		ChannelRepeats: 10,
		PowerRepeats:   599,
	}
}

// Warnings lists parameter choices that are legal but probably unintended.
func (p Params) Warnings() []string {
	var w []string
	if p.PowerRepeats%2 == 0 {
		w = append(w, fmt.Sprintf("power_repeats=%d is even; the set ends in the state it started in", p.PowerRepeats))
	}
	return w
}

// Frames is the number of frames an uninterrupted run transmits.
func (p Params) Frames() int {
	return 1 + int(p.ChannelRepeats) + int(p.PowerRepeats)
}

// Duration is how long an uninterrupted run of p takes with codes c.
func (p Params) Duration(c Codes) time.Duration {
	d := time.Duration(p.StartDelay) * (BlinkOn + BlinkOff)
	d += c.Mute.Duration() + AfterMute
	d += time.Duration(p.ChannelRepeats) * (c.Channel.Duration() + AfterChannel)
	d += time.Duration(p.PowerRepeats) * (c.Power.Duration() + AfterPower)
	return d
}

// Codes selects what each step of the script sends.
type Codes struct {
	Mute    nec.Code
	Channel nec.Code
	Power   nec.Code
}

func DefaultCodes() Codes {
	return Codes{
		Mute:    nec.Mute,
		Channel: nec.ChannelUp,
		Power:   nec.Power,
	}
}

// Sequencer sends the script through a TxDevice. All waits, including the
// ones inside frames, share one irscram.Pacer, so raising its Abort stops
// the run wherever it is.
type Sequencer struct {
	tx        *irscram.TxDevice
	indicator irscram.Output
	pacer     *irscram.Pacer
	codes     Codes
	logger    irscram.Logger
}

type Option func(*Sequencer)

func WithCodes(c Codes) Option {
	return func(s *Sequencer) { s.codes = c }
}

func WithLogger(l irscram.Logger) Option {
	return func(s *Sequencer) { s.logger = l }
}

func NewSequencer(tx *irscram.TxDevice, indicator irscram.Output, pacer *irscram.Pacer, opts ...Option) *Sequencer {
	s := &Sequencer{
		tx:        tx,
		indicator: indicator,
		pacer:     pacer,
		codes:     DefaultCodes(),
		logger:    irscram.NopLogger,
	}
	for _, o := range opts {
		o(s)
	}
	indicator.Low()
	return s
}

// Codes returns the codes the sequencer sends.
func (s *Sequencer) Codes() Codes {
	return s.codes
}

// Run executes the script. It returns nil once every step is done, or an
// error wrapping irscram.ErrAborted if the pacer's Abort was raised.
func (s *Sequencer) Run(p Params) error {
	s.logger.Debug("scramble start", "start_delay", p.StartDelay, "channels", p.ChannelRepeats, "powers", p.PowerRepeats)

	for i := 0; i < int(p.StartDelay); i++ {
		if err := s.blink(); err != nil {
			return fmt.Errorf("start delay %d/%d: %w", i+1, p.StartDelay, err)
		}
	}

	if err := s.send(s.codes.Mute, AfterMute); err != nil {
		return fmt.Errorf("mute: %w", err)
	}

	for i := 0; i < int(p.ChannelRepeats); i++ {
		if err := s.send(s.codes.Channel, AfterChannel); err != nil {
			return fmt.Errorf("channel %d/%d: %w", i+1, p.ChannelRepeats, err)
		}
	}

	for i := 0; i < int(p.PowerRepeats); i++ {
		if err := s.send(s.codes.Power, AfterPower); err != nil {
			return fmt.Errorf("power %d/%d: %w", i+1, p.PowerRepeats, err)
		}
	}

	s.logger.Debug("scramble done")
	return nil
}

func (s *Sequencer) blink() error {
	s.indicator.High()
	if err := s.pacer.Wait(BlinkOn); err != nil {
		s.indicator.Low()
		return err
	}
	s.indicator.Low()
	return s.pacer.Wait(BlinkOff)
}

func (s *Sequencer) send(code nec.Code, after time.Duration) error {
	s.logger.Trace("send", "code", code.String())
	if err := nec.Send(s.tx, code); err != nil {
		return err
	}
	return s.pacer.Wait(after)
}
