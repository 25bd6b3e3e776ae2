package irscram

import (
	"errors"
	"sync/atomic"
	"time"
)

// ErrAborted is returned by every transmit and wait operation that was cut
// short because its Abort was raised.
var ErrAborted = errors.New("irscram: aborted")

// Abort is a one-bit cancel request. Set is safe to call from an interrupt
// handler; the busy-wait loops poll Requested.
type Abort struct {
	flag atomic.Bool
}

// Set requests cancellation.
func (a *Abort) Set() {
	a.flag.Store(true)
}

// Clear withdraws any pending request.
func (a *Abort) Clear() {
	a.flag.Store(false)
}

// Requested reports whether Set was called since the last Clear. A nil
// Abort is never requested.
func (a *Abort) Requested() bool {
	return a != nil && a.flag.Load()
}

// DefaultQuantum is the longest stretch a Pacer waits without checking its Abort.
const DefaultQuantum = time.Millisecond

// Pacer performs waits of arbitrary length in slices of at most Quantum,
// checking Abort before each slice.
type Pacer struct {
	delay   Delayer
	clock   Clock
	abort   *Abort
	Quantum time.Duration
}

// NewPacer returns a Pacer that waits with delay and gives up when abort is raised.
// abort may be nil, in which case waits always run to completion.
func NewPacer(delay Delayer, abort *Abort) *Pacer {
	clock, ok := delay.(Clock)
	if !ok {
		clock = &steadyClock{delay: delay}
	}
	return &Pacer{
		delay:   delay,
		clock:   clock,
		abort:   abort,
		Quantum: DefaultQuantum,
	}
}

// Abort returns the flag the pacer watches.
func (p *Pacer) Abort() *Abort {
	return p.abort
}

// Delayer returns the underlying delay source.
func (p *Pacer) Delayer() Delayer {
	return p.delay
}

// Clock returns the delay source as a Clock. A Delayer that cannot tell
// the time is assumed to wait exactly as long as asked.
func (p *Pacer) Clock() Clock {
	return p.clock
}

// Wait blocks for d or until the Abort is raised, whichever is first.
func (p *Pacer) Wait(d time.Duration) error {
	q := p.Quantum
	if q <= 0 {
		q = DefaultQuantum
	}
	end := p.clock.Now() + d
	for {
		if p.abort.Requested() {
			return ErrAborted
		}
		now := p.clock.Now()
		if now >= end {
			return nil
		}
		p.clock.DelayUntil(min(end, now+q))
	}
}

// steadyClock counts the time a plain Delayer was asked to wait.
type steadyClock struct {
	delay Delayer
	now   time.Duration
}

func (c *steadyClock) Now() time.Duration { return c.now }

func (c *steadyClock) Delay(d time.Duration) {
	c.DelayUntil(c.now + d)
}

func (c *steadyClock) DelayUntil(t time.Duration) {
	if t <= c.now {
		return
	}
	c.delay.Delay(t - c.now)
	c.now = t
}

// SpinDelayer busy-waits on the monotonic clock. On an rp2040 time.Now has
// microsecond resolution, which is enough for the 13µs carrier half period;
// time.Sleep is not, as it yields to the scheduler.
type SpinDelayer struct{}

var spinEpoch = time.Now()

func (SpinDelayer) Now() time.Duration {
	return time.Since(spinEpoch)
}

func (s SpinDelayer) Delay(d time.Duration) {
	s.DelayUntil(s.Now() + d)
}

func (s SpinDelayer) DelayUntil(t time.Duration) {
	for s.Now() < t {
	}
}
