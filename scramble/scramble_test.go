package scramble_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparques/irscram"
	"github.com/sparques/irscram/internal/sim"
	"github.com/sparques/irscram/nec"
	"github.com/sparques/irscram/scramble"
)

type rig struct {
	board *sim.Board
	ir    *sim.Pin
	led   *sim.Pin
	abort *irscram.Abort
	rec   *sim.Recorder
	seq   *scramble.Sequencer
}

func newRig(opts ...scramble.Option) *rig {
	b := sim.NewBoard()
	rec := sim.NewRecorder(b)
	ir := b.NewPin()
	ir.OnEdge = rec.IREdge
	led := b.NewPin()
	led.OnEdge = rec.LEDEdge
	abort := &irscram.Abort{}
	pacer := irscram.NewPacer(b, abort)
	tx := irscram.NewTxDevice(irscram.NewBitBang(ir, pacer))
	return &rig{
		board: b,
		ir:    ir,
		led:   led,
		abort: abort,
		rec:   rec,
		seq:   scramble.NewSequencer(tx, led, pacer, opts...),
	}
}

func (r *rig) abortAt(at time.Duration) {
	r.board.OnPress = func(time.Duration) { r.abort.Set() }
	r.board.Schedule(sim.Press{At: at})
}

func (r *rig) timeline() sim.Timeline {
	r.rec.Finish()
	return r.rec.Timeline()
}

// frameTime is how long one 16-ones NEC frame takes on the bit-banged carrier.
const frameTime = 67482 * time.Microsecond

func TestRun_MuteChannelPower(t *testing.T) {
	r := newRig()

	require.NoError(t, r.seq.Run(scramble.Params{StartDelay: 0, ChannelRepeats: 1, PowerRepeats: 1}))

	tl := r.timeline()
	assert.Equal(t, []nec.Code{nec.Mute, nec.ChannelUp, nec.Power}, tl.Frames())

	frames := tl.Filter(sim.KindFrame)
	require.Len(t, frames, 3)
	assert.Equal(t, time.Duration(0), frames[0].At)
	assert.Equal(t, frameTime+scramble.AfterMute, frames[1].At)
	assert.Equal(t, 2*frameTime+scramble.AfterMute+scramble.AfterChannel, frames[2].At)
	assert.Equal(t, 3*frameTime+scramble.AfterMute+scramble.AfterChannel+scramble.AfterPower, r.board.Now())
}

func TestRun_FrameCounts(t *testing.T) {
	for _, p := range []scramble.Params{
		{ChannelRepeats: 0, PowerRepeats: 0},
		{ChannelRepeats: 3, PowerRepeats: 1},
		{ChannelRepeats: 2, PowerRepeats: 5},
	} {
		r := newRig()
		require.NoError(t, r.seq.Run(p))

		frames := r.timeline().Frames()
		require.Len(t, frames, p.Frames(), "%+v", p)
		assert.Equal(t, nec.Mute, frames[0])
		for i := 0; i < int(p.ChannelRepeats); i++ {
			assert.Equal(t, nec.ChannelUp, frames[1+i])
		}
		for i := 0; i < int(p.PowerRepeats); i++ {
			assert.Equal(t, nec.Power, frames[1+int(p.ChannelRepeats)+i])
		}
	}
}

func TestRun_BlinksBeforeFirstFrame(t *testing.T) {
	r := newRig()

	require.NoError(t, r.seq.Run(scramble.Params{StartDelay: 3, ChannelRepeats: 1, PowerRepeats: 1}))

	tl := r.timeline()
	assert.Equal(t, 3, r.led.Rises())
	assert.False(t, r.led.Level())

	first := tl.Filter(sim.KindFrame)[0]
	assert.Equal(t, 3*time.Second, first.At)
	for _, e := range tl.Filter(sim.KindLED) {
		assert.Less(t, e.At, first.At)
	}
	leds := tl.Filter(sim.KindLED)
	require.Len(t, leds, 6)
	for i, e := range leds {
		assert.Equal(t, time.Duration(i)*500*time.Millisecond, e.At)
		assert.Equal(t, i%2 == 0, e.On)
	}
}

func TestRun_ChannelDown(t *testing.T) {
	codes := scramble.DefaultCodes()
	codes.Channel = nec.ChannelDown
	r := newRig(scramble.WithCodes(codes))

	require.NoError(t, r.seq.Run(scramble.Params{ChannelRepeats: 2, PowerRepeats: 1}))

	assert.Equal(t, []nec.Code{nec.Mute, nec.ChannelDown, nec.ChannelDown, nec.Power}, r.timeline().Frames())
	assert.Equal(t, codes, r.seq.Codes())
}

func TestRun_AbortedDuringBlink(t *testing.T) {
	r := newRig()
	r.abortAt(1200 * time.Millisecond)

	err := r.seq.Run(scramble.Params{StartDelay: 5, ChannelRepeats: 1, PowerRepeats: 1})

	require.ErrorIs(t, err, irscram.ErrAborted)
	assert.Contains(t, err.Error(), "start delay 2/5")
	assert.False(t, r.led.Level())
	assert.Zero(t, r.ir.Rises())
}

func TestRun_AbortedAfterMute(t *testing.T) {
	r := newRig()
	r.abortAt(300 * time.Millisecond)

	err := r.seq.Run(scramble.Params{ChannelRepeats: 1, PowerRepeats: 1})

	require.ErrorIs(t, err, irscram.ErrAborted)
	assert.Contains(t, err.Error(), "mute")
	assert.Equal(t, []nec.Code{nec.Mute}, r.timeline().Frames())
}

func TestRun_AbortedMidFrame(t *testing.T) {
	r := newRig()
	// inside the first channel-up frame
	r.abortAt(frameTime + scramble.AfterMute + 30*time.Millisecond)

	err := r.seq.Run(scramble.Params{ChannelRepeats: 3, PowerRepeats: 3})

	require.ErrorIs(t, err, irscram.ErrAborted)
	assert.Contains(t, err.Error(), "channel 1/3")
	tl := r.timeline()
	assert.Equal(t, []nec.Code{nec.Mute}, tl.Frames())
	require.Len(t, tl.Filter(sim.KindPartial), 1)
	assert.False(t, r.ir.Level())
}

func TestRun_Repeatable(t *testing.T) {
	p := scramble.Params{StartDelay: 1, ChannelRepeats: 2, PowerRepeats: 3}
	r := newRig()

	require.NoError(t, r.seq.Run(p))
	first := r.timeline().Frames()
	require.NoError(t, r.seq.Run(p))
	both := r.timeline().Frames()

	require.Len(t, both, 2*len(first))
	assert.Equal(t, first, both[len(first):])
}

func TestParams(t *testing.T) {
	def := scramble.DefaultParams()
	assert.Equal(t, scramble.Params{StartDelay: 20, ChannelRepeats: 10, PowerRepeats: 599}, def)
	assert.Equal(t, 610, def.Frames())
	assert.Empty(t, def.Warnings())

	even := scramble.Params{PowerRepeats: 4}
	require.Len(t, even.Warnings(), 1)
	assert.Contains(t, even.Warnings()[0], "even")
}

func TestParams_Duration(t *testing.T) {
	c := scramble.DefaultCodes()
	p := scramble.Params{StartDelay: 2, ChannelRepeats: 1, PowerRepeats: 1}

	want := 2*time.Second +
		nec.Mute.Duration() + 500*time.Millisecond +
		nec.ChannelUp.Duration() + time.Second +
		nec.Power.Duration() + 1500*time.Millisecond
	assert.Equal(t, want, p.Duration(c))
}

func TestRun_LogsThroughHclog(t *testing.T) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Trace})
	r := newRig(scramble.WithLogger(logger))

	require.NoError(t, r.seq.Run(scramble.Params{PowerRepeats: 1}))

	out := buf.String()
	assert.Contains(t, out, "scramble start")
	assert.Contains(t, out, "send: code=MUTE")
	assert.Contains(t, out, "send: code=POWER")
	assert.Contains(t, out, "scramble done")
}

func TestRun_DefaultLoggerIsSilent(t *testing.T) {
	r := newRig()

	require.NoError(t, r.seq.Run(scramble.Params{PowerRepeats: 1}))

	assert.Equal(t, []nec.Code{nec.Mute, nec.Power}, r.timeline().Frames())
}
