//go:build rp2040

package irscram

import (
	. "machine"
	"time"

	"github.com/sparques/pwm"
)

// PWMCarrier produces the carrier with a hardware PWM slice instead of
// toggling the pin in software. Marks are timed with the Pacer, so they are
// abortable at Quantum granularity rather than per carrier cycle.
type PWMCarrier struct {
	pin    Pin
	pgroup pwm.Group
	ch     uint8
	duty   uint32
	pacer  *Pacer
}

func NewPWMCarrier(pin Pin, pacer *Pacer) (*PWMCarrier, error) {
	pin.Configure(PinConfig{Mode: PinPWM})
	pgroup := pwm.Get(pin)
	if err := pgroup.Configure(PWMConfig{Period: uint64(1e9) / uint64(Freq38Khz)}); err != nil {
		return nil, err
	}
	ch, err := pgroup.Channel(pin)
	if err != nil {
		return nil, err
	}
	pgroup.Set(ch, 0)
	return &PWMCarrier{
		pin:    pin,
		pgroup: pgroup,
		ch:     ch,
		duty:   pgroup.Top() / 2,
		pacer:  pacer,
	}, nil
}

func (pc *PWMCarrier) Mark(d time.Duration) error {
	// keep the same truncation as the bit-banged carrier
	d = time.Duration(Cycles(d)) * CarrierPeriod
	if d == 0 {
		return nil
	}
	pc.pgroup.Set(pc.ch, pc.duty)
	err := pc.pacer.Wait(d)
	pc.pgroup.Set(pc.ch, 0)
	return err
}

func (pc *PWMCarrier) Space(d time.Duration) error {
	return pc.pacer.Wait(d)
}

func (pc *PWMCarrier) Off() {
	pc.pgroup.Set(pc.ch, 0)
}
