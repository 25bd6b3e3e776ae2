//go:build rp2040

// Command irscram is the firmware. It sleeps until the button is pressed,
// then runs the scramble; pressing the button again at any point cancels
// the run and puts it back to sleep.
package main

import (
	"github.com/sparques/irscram"
	"github.com/sparques/irscram/board"
	"github.com/sparques/irscram/power"
	"github.com/sparques/irscram/scramble"
)

func main() {
	abort := &irscram.Abort{}
	pacer := irscram.NewPacer(irscram.SpinDelayer{}, abort)

	carrier, err := newCarrier(pacer)
	if err != nil {
		fail()
	}
	tx := irscram.NewTxDevice(carrier)
	led := board.Output(board.IndicatorPin)
	seq := scramble.NewSequencer(tx, led, pacer)

	m, err := power.NewMachine(power.Config{
		Trigger:    board.NewTrigger(board.TriggerPin),
		LowPower:   &board.LowPower{},
		Interrupts: &board.Interrupts{},
		Runner:     seq,
		Params:     scramble.DefaultParams(),
		Abort:      abort,
		Delayer:    irscram.SpinDelayer{},
		Safe: func() {
			carrier.Off()
			led.Low()
		},
	})
	if err != nil {
		fail()
	}
	if err := m.Run(); err != nil {
		fail()
	}
}

// fail leaves the indicator lit and halts; there is nowhere to report to.
func fail() {
	board.Output(board.IndicatorPin).High()
	lp := &board.LowPower{}
	lp.Enable()
	for {
		lp.Halt()
	}
}
