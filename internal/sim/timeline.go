package sim

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/sparques/irscram"
	"github.com/sparques/irscram/nec"
	"github.com/sparques/irscram/power"
)

type Kind string

const (
	KindPress   Kind = "press"
	KindState   Kind = "state"
	KindLED     Kind = "led"
	KindFrame   Kind = "frame"
	KindPartial Kind = "partial"
)

// Entry is one line of a Timeline.
type Entry struct {
	At    time.Duration
	Kind  Kind
	State power.State
	On    bool
	Code  nec.Code
	Bits  int // data bits of a partial frame that went out

	seq int
}

func (e Entry) String() string {
	var detail string
	switch e.Kind {
	case KindState:
		detail = e.State.String()
	case KindLED:
		detail = "off"
		if e.On {
			detail = "on"
		}
	case KindFrame:
		detail = fmt.Sprintf("%-7s 0x%08X", e.Code, uint32(e.Code))
	case KindPartial:
		detail = fmt.Sprintf("%d/%d bits", e.Bits, nec.Bits)
	}
	line := fmt.Sprintf("%12s  %-7s  %s", FormatAt(e.At), e.Kind, detail)
	return strings.TrimRight(line, " ")
}

// FormatAt renders a virtual timestamp as seconds with microsecond precision.
func FormatAt(at time.Duration) string {
	return fmt.Sprintf("%d.%06ds", at/time.Second, (at%time.Second)/time.Microsecond)
}

// Timeline is an ordered record of what the device did.
type Timeline []Entry

// Frames returns the codes of every completed frame, in order.
func (tl Timeline) Frames() []nec.Code {
	var out []nec.Code
	for _, e := range tl {
		if e.Kind == KindFrame {
			out = append(out, e.Code)
		}
	}
	return out
}

// Filter returns the entries of the given kinds.
func (tl Timeline) Filter(kinds ...Kind) Timeline {
	var out Timeline
	for _, e := range tl {
		for _, k := range kinds {
			if e.Kind == k {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func (tl Timeline) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, e := range tl {
		m, err := fmt.Fprintln(w, e.String())
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Recorder builds a Timeline. The IR pin is fed through a demodulator and
// NEC decoder, so frames appear only if the waveform really decodes.
type Recorder struct {
	b       *Board
	demod   *irscram.Demodulator
	decoder *nec.StateMachine
	entries []Entry
	seq     int

	open       bool
	expectStop bool
	frameStart time.Duration
}

func NewRecorder(b *Board) *Recorder {
	r := &Recorder{b: b}
	r.decoder = nec.NewStateMachine(r.frame)
	r.demod = irscram.NewDemodulator(irscram.MultiRxStateMachine(r, r.decoder))
	return r
}

// IREdge is wired to the IR pin's OnEdge.
func (r *Recorder) IREdge(level bool, at time.Duration) {
	r.demod.Edge(level, at)
}

// LEDEdge is wired to the indicator pin's OnEdge.
func (r *Recorder) LEDEdge(level bool, at time.Duration) {
	r.add(Entry{At: at, Kind: KindLED, On: level})
}

// Press is wired to Board.OnPress.
func (r *Recorder) Press(at time.Duration) {
	r.add(Entry{At: at, Kind: KindPress})
}

// State is wired to the machine's OnState. Going to sleep closes out any
// frame left half sent.
func (r *Recorder) State(s power.State) {
	if s == power.Sleeping {
		r.Finish()
	}
	r.add(Entry{At: r.b.Now(), Kind: KindState, State: s})
}

// HandleTimePair implements irscram.RxStateMachine. It runs ahead of the
// NEC decoder to note where each frame began.
func (r *Recorder) HandleTimePair(pair irscram.TimePair) {
	switch {
	case r.expectStop:
		r.expectStop = false
	case !r.open:
		r.open = true
		r.frameStart = r.demod.MarkStart()
	}
}

func (r *Recorder) frame(code nec.Code) {
	r.add(Entry{At: r.frameStart, Kind: KindFrame, Code: code})
	r.open = false
	r.expectStop = true
}

// Finish flushes the demodulator and records an unfinished frame, if any.
func (r *Recorder) Finish() {
	r.demod.Flush()
	if r.open {
		r.add(Entry{At: r.frameStart, Kind: KindPartial, Bits: r.decoder.Partial()})
	}
	r.open = false
	r.expectStop = false
	r.decoder.Reset()
	r.demod.Reset()
}

func (r *Recorder) add(e Entry) {
	e.seq = r.seq
	r.seq++
	r.entries = append(r.entries, e)
}

// Timeline returns the entries recorded so far, ordered by time.
func (r *Recorder) Timeline() Timeline {
	tl := make(Timeline, len(r.entries))
	copy(tl, r.entries)
	sort.SliceStable(tl, func(i, j int) bool {
		if tl[i].At != tl[j].At {
			return tl[i].At < tl[j].At
		}
		return tl[i].seq < tl[j].seq
	})
	return tl
}
