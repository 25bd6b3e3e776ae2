package sim

import "time"

// Pin is an emulated digital output. It implements irscram.Output and only
// reports real transitions to OnEdge.
type Pin struct {
	b      *Board
	level  bool
	rises  int
	OnEdge func(level bool, at time.Duration)
}

func (b *Board) NewPin() *Pin {
	return &Pin{b: b}
}

func (p *Pin) High() { p.set(true) }
func (p *Pin) Low()  { p.set(false) }

func (p *Pin) set(level bool) {
	if p.level == level {
		return
	}
	p.level = level
	if level {
		p.rises++
	}
	if p.OnEdge != nil {
		p.OnEdge(level, p.b.now)
	}
}

// Level is the current output level.
func (p *Pin) Level() bool { return p.level }

// Rises counts low-to-high transitions, i.e. carrier cycles on the IR pin
// or blinks on the indicator.
func (p *Pin) Rises() int { return p.rises }
