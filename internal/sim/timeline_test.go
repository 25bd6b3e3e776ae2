package sim_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparques/irscram/internal/sim"
	"github.com/sparques/irscram/nec"
	"github.com/sparques/irscram/power"
	"github.com/sparques/irscram/scramble"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// To regenerate golden files, run:
//
//	go test ./internal/sim -update
func TestTimeline_Golden(t *testing.T) {
	cases := []struct {
		name     string
		cfg      sim.Config
		outcomes []power.Outcome
	}{
		{
			name: "uninterrupted",
			cfg: sim.Config{
				Params:  scramble.Params{StartDelay: 0, ChannelRepeats: 1, PowerRepeats: 1},
				Presses: []sim.Press{{At: time.Second}},
			},
			outcomes: []power.Outcome{power.Completed},
		},
		{
			name: "cancel_after_mute",
			cfg: sim.Config{
				Params:  scramble.Params{StartDelay: 0, ChannelRepeats: 1, PowerRepeats: 1},
				Presses: []sim.Press{{At: time.Second}, {At: ms(1300)}},
			},
			outcomes: []power.Outcome{power.Cancelled},
		},
		{
			name: "blink_then_cancel_mid_frame",
			cfg: sim.Config{
				Params:  scramble.Params{StartDelay: 2, ChannelRepeats: 2, PowerRepeats: 1},
				Presses: []sim.Press{{At: time.Second}, {At: ms(3030)}},
			},
			outcomes: []power.Outcome{power.Cancelled},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dev, err := sim.NewDevice(c.cfg)
			require.NoError(t, err)

			outcomes, err := dev.Cycles(len(c.outcomes))
			require.NoError(t, err)
			assert.Equal(t, c.outcomes, outcomes)
			assert.Empty(t, dev.Board.Violations())

			var buf bytes.Buffer
			_, err = dev.Timeline().WriteTo(&buf)
			require.NoError(t, err)

			g := goldie.New(t)
			g.Assert(t, c.name, buf.Bytes())
		})
	}
}

func TestTimeline_Frames(t *testing.T) {
	tl := sim.Timeline{
		{Kind: sim.KindPress},
		{Kind: sim.KindFrame, Code: nec.Mute},
		{Kind: sim.KindPartial, Bits: 3},
		{Kind: sim.KindFrame, Code: nec.Power},
	}

	assert.Equal(t, []nec.Code{nec.Mute, nec.Power}, tl.Frames())
	assert.Len(t, tl.Filter(sim.KindPartial, sim.KindPress), 2)
}

func TestFormatAt(t *testing.T) {
	assert.Equal(t, "0.000000s", sim.FormatAt(0))
	assert.Equal(t, "1.567482s", sim.FormatAt(time.Second+567482*time.Microsecond))
	assert.Equal(t, "12.000001s", sim.FormatAt(12*time.Second+time.Microsecond))
}

func TestEntry_String(t *testing.T) {
	e := sim.Entry{At: time.Second, Kind: sim.KindFrame, Code: nec.ChannelUp}
	assert.Equal(t, "   1.000000s  frame    CH+     0x80BFA15E", e.String())

	e = sim.Entry{At: 0, Kind: sim.KindPress}
	assert.Equal(t, "   0.000000s  press", e.String())
}
