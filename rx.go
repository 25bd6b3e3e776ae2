package irscram

import "time"

type RxStateMachine interface {
	HandleTimePair(TimePair)
}

type multiRxStateMachine []RxStateMachine

func (mrsm multiRxStateMachine) HandleTimePair(pair TimePair) {
	for i := range mrsm {
		mrsm[i].HandleTimePair(pair)
	}
}

// MultiRxStateMachine accepts a list of RxStateMachines and returns an object
// that also implements RxStateMachine. When HandleTimePair is called against it,
// it calls HandleTimePair against all the RxStateMachines used to define it,
// in the order given.
// E.G.:
//
//	mult := irscram.MultiRxStateMachine(tracker, nec.NewStateMachine(necHandler))
//	demod := irscram.NewDemodulator(mult)
func MultiRxStateMachine(rsm ...RxStateMachine) multiRxStateMachine {
	return multiRxStateMachine(rsm)
}

// DefaultCarrierGap is the longest dark stretch still considered part of a
// mark. A 38kHz carrier is dark for 13µs at a time; NEC spaces are >= 562µs.
const DefaultCarrierGap = 100 * time.Microsecond

// Demodulator turns raw, carrier-modulated LED transitions into mark/space
// pairs, the way a demodulating IR receiver would, and hands them to an
// RxStateMachine. A pair is only complete once the following mark starts,
// so the last mark of a burst is delivered by Flush.
type Demodulator struct {
	stateMachine RxStateMachine
	Gap          time.Duration

	active    bool
	high      bool
	markStart time.Duration
	lastFall  time.Duration
}

func NewDemodulator(rsm RxStateMachine) *Demodulator {
	return &Demodulator{
		stateMachine: rsm,
		Gap:          DefaultCarrierGap,
	}
}

// Edge records the LED going on (level true) or off at time at. Repeated
// edges of the same level are ignored.
func (d *Demodulator) Edge(level bool, at time.Duration) {
	if level == d.high {
		return
	}
	d.high = level
	if !level {
		d.lastFall = at
		return
	}
	switch {
	case !d.active:
		d.active = true
		d.markStart = at
	case at-d.lastFall < d.Gap:
		// still inside the carrier burst
	default:
		d.stateMachine.HandleTimePair(TimePair{d.lastFall - d.markStart, at - d.lastFall})
		d.markStart = at
	}
}

// MarkStart is when the mark of the pair being delivered began. It is only
// meaningful from inside HandleTimePair.
func (d *Demodulator) MarkStart() time.Duration {
	return d.markStart
}

// Flush delivers the pending mark with a zero space. It is a no-op while
// the LED is on or nothing has been received.
func (d *Demodulator) Flush() {
	if !d.active || d.high {
		return
	}
	d.stateMachine.HandleTimePair(TimePair{d.lastFall - d.markStart, 0})
	d.active = false
}

// Reset drops any partially received pair.
func (d *Demodulator) Reset() {
	d.active = false
	d.high = false
}
