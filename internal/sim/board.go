// Package sim emulates the device on a virtual clock so the firmware's
// engine can run, unmodified, on a host.
//
// Time only moves inside Board.Delay and LowPower.Halt. Button presses are
// scheduled ahead of time and take effect at the exact virtual instant they
// are due, which may be in the middle of a carrier cycle; the trigger
// handler then runs right away, the way an interrupt would.
package sim

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sparques/irscram/power"
)

// ErrStalled is the panic value when the board halts with nothing left that
// could ever wake it.
var ErrStalled = errors.New("sim: halted with no pending events")

// DefaultHold is how long a press lasts when none is given.
const DefaultHold = 50 * time.Millisecond

// Press is a button press starting At and held for Hold.
type Press struct {
	At   time.Duration `yaml:"at"`
	Hold time.Duration `yaml:"hold"`
}

type eventKind int

const (
	evPress eventKind = iota
	evRelease
)

type event struct {
	at   time.Duration
	kind eventKind
	seq  int
}

// Board is the emulated hardware: a clock, a trigger line, interrupt
// masking and a halt instruction.
type Board struct {
	now    time.Duration
	events []event
	seq    int

	irqOn bool
	inISR bool

	trigger    *Trigger
	lowPower   *LowPower
	interrupts *Interrupts

	// IdleWake, if non-zero, schedules a press IdleWake after the board
	// halts with nothing else pending. Otherwise such a halt panics with
	// ErrStalled.
	IdleWake time.Duration

	// OnPress is called at each press, before the trigger reacts to it.
	OnPress func(at time.Duration)

	violations []string
}

func NewBoard() *Board {
	b := &Board{irqOn: true}
	b.trigger = &Trigger{b: b}
	b.lowPower = &LowPower{b: b}
	b.interrupts = &Interrupts{b: b}
	return b
}

func (b *Board) Now() time.Duration { return b.now }

func (b *Board) Trigger() *Trigger       { return b.trigger }
func (b *Board) LowPower() *LowPower     { return b.lowPower }
func (b *Board) Interrupts() *Interrupts { return b.interrupts }

// Violations lists misuse of the hardware seen so far, such as halting with
// the trigger armed and interrupts unmasked.
func (b *Board) Violations() []string { return b.violations }

// Schedule queues a press. Presses in the past take effect immediately on
// the next Delay or Halt.
func (b *Board) Schedule(p Press) {
	if p.Hold <= 0 {
		p.Hold = DefaultHold
	}
	b.push(event{at: p.At, kind: evPress})
	b.push(event{at: p.At + p.Hold, kind: evRelease})
}

// Pending is the number of queued events.
func (b *Board) Pending() int { return len(b.events) }

func (b *Board) push(ev event) {
	ev.seq = b.seq
	b.seq++
	b.events = append(b.events, ev)
	sort.SliceStable(b.events, func(i, j int) bool {
		if b.events[i].at != b.events[j].at {
			return b.events[i].at < b.events[j].at
		}
		return b.events[i].seq < b.events[j].seq
	})
}

// Delay implements irscram.Delayer by advancing the clock, firing every
// event due on the way.
func (b *Board) Delay(d time.Duration) {
	target := b.now + d
	for len(b.events) > 0 && b.events[0].at <= target {
		b.step()
	}
	b.now = target
}

// DelayUntil implements irscram.Clock.
func (b *Board) DelayUntil(t time.Duration) {
	if t > b.now {
		b.Delay(t - b.now)
	}
}

func (b *Board) step() {
	ev := b.events[0]
	b.events = b.events[1:]
	if ev.at > b.now {
		b.now = ev.at
	}
	switch ev.kind {
	case evPress:
		if b.OnPress != nil {
			b.OnPress(b.now)
		}
		b.trigger.press()
	case evRelease:
		b.trigger.release()
	}
}

func (b *Board) violate(format string, args ...any) {
	b.violations = append(b.violations, fmt.Sprintf("%v: ", b.now)+fmt.Sprintf(format, args...))
}

// isr runs handler as an interrupt would: not nested, and only while
// interrupts are unmasked.
func (b *Board) isr(handler func()) {
	if handler == nil {
		return
	}
	b.inISR = true
	handler()
	b.inISR = false
}

// Trigger emulates the button pin and its interrupt.
type Trigger struct {
	b       *Board
	handler func()
	mode    power.Mode
	enabled bool
	pressed bool
	pending bool
	fired   int
}

func (t *Trigger) SetHandler(h func()) { t.handler = h }

func (t *Trigger) SetMode(m power.Mode) {
	if t.enabled {
		t.b.violate("trigger mode changed to %v while enabled", m)
	}
	t.mode = m
	t.pending = false
}

func (t *Trigger) Enable() {
	t.enabled = true
	if t.mode == power.LevelLow && t.pressed {
		t.raise()
	}
}

func (t *Trigger) Disable() {
	t.enabled = false
	t.pending = false
}

func (t *Trigger) Pressed() bool { return t.pressed }

// Mode is the sensitivity last configured.
func (t *Trigger) Mode() power.Mode { return t.mode }

// Enabled reports whether the trigger interrupt is enabled.
func (t *Trigger) Enabled() bool { return t.enabled }

// Fired counts handler invocations.
func (t *Trigger) Fired() int { return t.fired }

func (t *Trigger) press() {
	t.pressed = true
	if t.enabled {
		t.raise()
	}
}

func (t *Trigger) release() {
	t.pressed = false
}

func (t *Trigger) raise() {
	if !t.b.irqOn || t.b.inISR {
		t.pending = true
		return
	}
	t.fire()
}

func (t *Trigger) fire() {
	t.pending = false
	t.fired++
	t.b.isr(t.handler)
}

// deliver runs once interrupts are unmasked again. Edges are latched;
// a low level is sampled afresh.
func (t *Trigger) deliver() {
	if !t.enabled {
		return
	}
	if t.pending || (t.mode == power.LevelLow && t.pressed) {
		t.fire()
	}
}

// Interrupts emulates the global interrupt mask.
type Interrupts struct {
	b *Board
}

func (i *Interrupts) Disable() { i.b.irqOn = false }

func (i *Interrupts) Enable() {
	i.b.irqOn = true
	if !i.b.inISR {
		i.b.trigger.deliver()
	}
}

// LowPower emulates the halt instruction. Like WFI it returns at once if
// an enabled interrupt is already pending, masked or not; otherwise it
// jumps the clock to the next event.
type LowPower struct {
	b       *Board
	enabled bool
	halts   int
}

func (lp *LowPower) Enable()  { lp.enabled = true }
func (lp *LowPower) Disable() { lp.enabled = false }

// Enabled reports whether sleep is currently enabled.
func (lp *LowPower) Enabled() bool { return lp.enabled }

// Halts counts calls to Halt.
func (lp *LowPower) Halts() int { return lp.halts }

func (lp *LowPower) Halt() {
	b := lp.b
	lp.halts++
	if !lp.enabled {
		b.violate("halt with sleep disabled")
	}
	if b.irqOn && b.trigger.enabled {
		// the trigger could fire between the caller's last check and the
		// halt, leaving nothing to wake it
		b.violate("halt with trigger armed and interrupts unmasked")
	}
	if b.trigger.enabled && b.trigger.pending {
		return
	}
	if len(b.events) == 0 {
		if b.IdleWake <= 0 {
			panic(ErrStalled)
		}
		b.Schedule(Press{At: b.now + b.IdleWake})
	}
	b.step()
}
