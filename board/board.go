//go:build rp2040

// Package board binds the power and irscram ports to an rp2040.
package board

import (
	"device/arm"
	"machine"
	"runtime/interrupt"

	"github.com/sparques/irscram/power"
)

const (
	IRPin        = machine.GP15
	TriggerPin   = machine.GP14
	IndicatorPin = machine.LED
)

// Output configures pin as a push-pull output, driven low.
func Output(pin machine.Pin) machine.Pin {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.Low()
	return pin
}

// Trigger is a push button to ground on a pulled-up pin.
type Trigger struct {
	pin     machine.Pin
	mode    power.Mode
	armed   machine.PinChange
	handler func()
}

func NewTrigger(pin machine.Pin) *Trigger {
	// the button pulls the line low; idle high
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &Trigger{pin: pin}
}

func (t *Trigger) SetHandler(h func()) {
	t.handler = h
}

func (t *Trigger) SetMode(m power.Mode) {
	t.mode = m
}

func (t *Trigger) Enable() {
	change := machine.PinFalling
	if t.mode == power.LevelLow {
		change = machine.PinLevelLow
	}
	// SetInterrupt refuses to replace a live callback
	t.Disable()
	t.armed = change
	t.pin.SetInterrupt(change, t.interruptHandler)
}

func (t *Trigger) Disable() {
	if t.armed == 0 {
		return
	}
	t.pin.SetInterrupt(t.armed, nil)
	t.armed = 0
}

func (t *Trigger) Pressed() bool {
	return !t.pin.Get()
}

func (t *Trigger) interruptHandler(machine.Pin) {
	if t.handler != nil {
		t.handler()
	}
}

// LowPower halts the core with WFI. The rp2040 DORMANT state would also
// stop the clocks, but then only a GPIO edge can restart them and the
// clock tree has to be rebuilt by hand; WFI keeps the level wake simple.
//
// Halt is meant to be called with interrupts masked: WFI still returns for
// a pending interrupt, and the handler runs once they are unmasked.
type LowPower struct {
	enabled bool
}

func (lp *LowPower) Enable()  { lp.enabled = true }
func (lp *LowPower) Disable() { lp.enabled = false }

func (lp *LowPower) Halt() {
	if lp.enabled {
		arm.Asm("wfi")
	}
}

// Interrupts masks interrupts on the current core.
type Interrupts struct {
	state interrupt.State
}

func (i *Interrupts) Disable() {
	i.state = interrupt.Disable()
}

func (i *Interrupts) Enable() {
	interrupt.Restore(i.state)
}
