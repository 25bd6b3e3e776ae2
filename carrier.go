package irscram

import "time"

// Carrier modulates an IR LED. Mark emits carrier for d, Space holds the LED
// dark for d. Both return ErrAborted, with the LED off, if cancelled.
type Carrier interface {
	Mark(d time.Duration) error
	Space(d time.Duration) error
	// Off forces the LED dark immediately.
	Off()
}

// BitBang generates the carrier in software by toggling a GPIO 13µs on, 13µs off.
type BitBang struct {
	out   Output
	pacer *Pacer
}

// NewBitBang returns a BitBang carrier driving out. Timing and
// cancellation come from pacer.
func NewBitBang(out Output, pacer *Pacer) *BitBang {
	out.Low()
	return &BitBang{out: out, pacer: pacer}
}

// Cycles is the number of whole carrier cycles emitted for a mark of d.
// The remainder is dropped.
func Cycles(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / CarrierPeriod)
}

// Mark toggles the output for Cycles(d) full cycles. The abort flag is
// checked once per cycle, so a cancel lands within 26µs. Edges are timed
// from the start of the mark, not from each other.
func (bb *BitBang) Mark(d time.Duration) error {
	abort := bb.pacer.Abort()
	clock := bb.pacer.Clock()
	n := Cycles(d)
	next := clock.Now()
	for i := 0; i < n; i++ {
		if abort.Requested() {
			bb.out.Low()
			return ErrAborted
		}
		// order matters; the cycle must end low
		bb.out.High()
		next += CarrierHalfPeriod
		clock.DelayUntil(next)
		bb.out.Low()
		next += CarrierHalfPeriod
		clock.DelayUntil(next)
	}
	return nil
}

func (bb *BitBang) Space(d time.Duration) error {
	if err := bb.pacer.Wait(d); err != nil {
		bb.out.Low()
		return err
	}
	return nil
}

func (bb *BitBang) Off() {
	bb.out.Low()
}
