// Package irscram drives an infrared LED with carrier-modulated mark/space
// pairs. Every wait it performs can be cut short by an Abort raised from an
// interrupt handler.
package irscram

import "time"

const (
	// Freq38Khz is the most commonly used frequency for IR remotes
	Freq38Khz = 38000

	// CarrierHalfPeriod is how long the LED is held on, then off, per carrier cycle.
	CarrierHalfPeriod = 13 * time.Microsecond
	// CarrierPeriod is one full on/off carrier cycle, roughly 38kHz.
	CarrierPeriod = 2 * CarrierHalfPeriod
)

// TimePair encodes two durations used to encode an on-off (mark-space) amount of time.
type TimePair [2]time.Duration

// Duration is the total on-air time of the pair.
func (tp TimePair) Duration() time.Duration {
	return tp[0] + tp[1]
}

// FrameMarshaller defines an interface for marshalling data to slice of TimePairs
type FrameMarshaller interface {
	MarshalFrame() []TimePair
}

// Output is a digital output. machine.Pin satisfies it.
type Output interface {
	High()
	Low()
}

// Delayer blocks the caller for d. Implementations are expected to be
// accurate to a few microseconds; see SpinDelayer.
type Delayer interface {
	Delay(d time.Duration)
}

// Clock is a Delayer with a readable time base. Waiting for absolute
// deadlines keeps the overhead of each call from adding up over a long
// mark.
type Clock interface {
	Delayer
	// Now is the time since an arbitrary fixed epoch.
	Now() time.Duration
	// DelayUntil returns once Now reaches t. It returns at once if t has
	// already passed.
	DelayUntil(t time.Duration)
}

// Logger is the part of hclog.Logger the engine logs through. It is left
// unset on the device, which keeps hclog out of the firmware.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Trace(string, ...any) {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}

// NopLogger discards everything.
var NopLogger Logger = nopLogger{}
