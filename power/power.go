// Package power owns the device's sleep/active cycle and the single trigger
// line that both wakes it and cancels a run in progress.
//
// The trigger is armed level-low while sleeping: the core clock is stopped,
// so only a sustained level is seen. While active it is armed on the falling
// edge, so the press that woke the device, still held, does not cancel it,
// but a fresh press does.
package power

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sparques/irscram"
	"github.com/sparques/irscram/scramble"
)

// Mode is the trigger's interrupt sensitivity.
type Mode uint32

const (
	LevelLow Mode = iota
	FallingEdge
)

func (m Mode) String() string {
	switch m {
	case LevelLow:
		return "level-low"
	case FallingEdge:
		return "falling-edge"
	}
	return fmt.Sprintf("Mode(%d)", uint32(m))
}

// Trigger is the button input. The handler set with SetHandler runs in
// interrupt context whenever the trigger is enabled and its mode's condition
// is met.
type Trigger interface {
	SetHandler(func())
	SetMode(Mode)
	Enable()
	Disable()
	// Pressed reads the line synchronously; true means held low.
	Pressed() bool
}

// LowPower halts the core. Halt returns after any enabled interrupt, which
// need not be the trigger.
type LowPower interface {
	Enable()
	Disable()
	Halt()
}

// Interrupts masks and unmasks interrupts globally.
type Interrupts interface {
	Disable()
	Enable()
}

// Runner runs one scramble. scramble.Sequencer implements it.
type Runner interface {
	Run(scramble.Params) error
}

type State uint32

const (
	Sleeping State = iota
	Active
)

func (s State) String() string {
	switch s {
	case Sleeping:
		return "sleeping"
	case Active:
		return "active"
	}
	return fmt.Sprintf("State(%d)", uint32(s))
}

// Outcome is how an active phase ended.
type Outcome int

const (
	Completed Outcome = iota
	Cancelled
	// Failed accompanies a runner error other than a cancel.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// ReleasePoll is how often the trigger is sampled while waiting for it to be
// let go before sleeping.
const ReleasePoll = 10 * time.Millisecond

// Config wires a Machine to its hardware.
type Config struct {
	Trigger    Trigger
	LowPower   LowPower
	Interrupts Interrupts
	Runner     Runner
	Params     scramble.Params
	// Abort is raised by the trigger handler to cancel Runner. It must be
	// the Abort the Runner's pacer watches.
	Abort *irscram.Abort
	// Delayer times the release poll.
	Delayer irscram.Delayer
	// Safe, if set, is called whenever a run ends, cancelled or not, to
	// force the IR LED and indicator off.
	Safe func()
	// OnState, if set, is called on every state change from the main thread.
	OnState func(State)
	Logger  irscram.Logger
}

// Machine is the sleep/active state machine.
type Machine struct {
	cfg    Config
	logger irscram.Logger

	state atomic.Uint32
	mode  atomic.Uint32
	wake  atomic.Bool

	announced bool
	cycles    int
	cancels   int
}

func NewMachine(cfg Config) (*Machine, error) {
	switch {
	case cfg.Trigger == nil:
		return nil, errors.New("power: no trigger")
	case cfg.LowPower == nil:
		return nil, errors.New("power: no low power mode")
	case cfg.Interrupts == nil:
		return nil, errors.New("power: no interrupt control")
	case cfg.Runner == nil:
		return nil, errors.New("power: no runner")
	case cfg.Abort == nil:
		return nil, errors.New("power: no abort flag")
	case cfg.Delayer == nil:
		return nil, errors.New("power: no delayer")
	}
	m := &Machine{
		cfg:    cfg,
		logger: cfg.Logger,
	}
	if m.logger == nil {
		m.logger = irscram.NopLogger
	}
	cfg.Trigger.Disable()
	cfg.Trigger.SetHandler(m.HandleTrigger)
	return m, nil
}

func (m *Machine) State() State {
	return State(m.state.Load())
}

// Mode is the trigger sensitivity last configured.
func (m *Machine) Mode() Mode {
	return Mode(m.mode.Load())
}

// Stats returns how many cycles ran and how many of them were cancelled.
func (m *Machine) Stats() (cycles, cancels int) {
	return m.cycles, m.cancels
}

// HandleTrigger is the trigger interrupt handler. In level-low mode it
// wakes the device; in falling-edge mode it cancels the run. Either way the
// trigger is disabled so it fires at most once per arming.
func (m *Machine) HandleTrigger() {
	if !m.cfg.Trigger.Pressed() {
		return
	}
	switch m.Mode() {
	case LevelLow:
		m.cfg.Trigger.Disable()
		m.wake.Store(true)
	case FallingEdge:
		m.cfg.Trigger.Disable()
		m.cfg.Abort.Set()
	}
}

// Run cycles forever.
func (m *Machine) Run() error {
	for {
		if _, err := m.Cycle(); err != nil {
			return err
		}
	}
}

// Cycle sleeps until woken, then runs one scramble with cancel armed.
// A cancelled run is not an error.
func (m *Machine) Cycle() (Outcome, error) {
	m.Sleep()

	m.armCancel()
	err := m.cfg.Runner.Run(m.cfg.Params)
	m.disarm()
	m.safe()
	m.setState(Sleeping)

	m.cycles++
	switch {
	case err == nil:
		m.logger.Debug("run completed", "cycle", m.cycles)
		return Completed, nil
	case errors.Is(err, irscram.ErrAborted):
		m.cancels++
		m.logger.Info("run cancelled", "cycle", m.cycles, "reason", err)
		return Cancelled, nil
	}
	return Failed, fmt.Errorf("cycle %d: %w", m.cycles, err)
}

// Sleep puts the device in low power with the trigger armed level-low and
// returns once it is pressed. The device is Active on return.
func (m *Machine) Sleep() {
	m.setState(Sleeping)
	m.waitRelease()

	irq := m.cfg.Interrupts
	trig := m.cfg.Trigger
	lp := m.cfg.LowPower

	irq.Disable()
	trig.Disable()
	m.wake.Store(false)
	m.setMode(LevelLow)
	trig.Enable()
	lp.Enable()

	// Test and halt with interrupts masked. WFI still returns for a
	// pending interrupt, which then runs as soon as they are unmasked.
	m.logger.Trace("halting")
	for !m.wake.Load() {
		lp.Halt()
		irq.Enable()
		irq.Disable()
	}

	trig.Disable()
	lp.Disable()
	irq.Enable()

	m.setState(Active)
}

// armCancel switches the trigger to falling edge so only a fresh press,
// not the one still held from waking, cancels.
func (m *Machine) armCancel() {
	irq := m.cfg.Interrupts
	irq.Disable()
	m.setMode(FallingEdge)
	m.cfg.Abort.Clear()
	m.cfg.Trigger.Enable()
	irq.Enable()
}

func (m *Machine) disarm() {
	irq := m.cfg.Interrupts
	irq.Disable()
	m.cfg.Trigger.Disable()
	irq.Enable()
}

func (m *Machine) safe() {
	if m.cfg.Safe != nil {
		m.cfg.Safe()
	}
}

func (m *Machine) waitRelease() {
	if !m.cfg.Trigger.Pressed() {
		return
	}
	m.logger.Trace("waiting for trigger release")
	for m.cfg.Trigger.Pressed() {
		m.cfg.Delayer.Delay(ReleasePoll)
	}
}

func (m *Machine) setMode(mode Mode) {
	m.mode.Store(uint32(mode))
	m.cfg.Trigger.SetMode(mode)
}

func (m *Machine) setState(s State) {
	prev := State(m.state.Swap(uint32(s)))
	if prev == s && m.announced {
		return
	}
	m.announced = true
	m.logger.Debug("state", "state", s)
	if m.cfg.OnState != nil {
		m.cfg.OnState(s)
	}
}
