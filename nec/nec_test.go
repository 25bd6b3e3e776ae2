package nec_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparques/irscram"
	"github.com/sparques/irscram/internal/sim"
	"github.com/sparques/irscram/nec"
)

func sampleCodes() []nec.Code {
	codes := []nec.Code{nec.Power, nec.ChannelUp, nec.ChannelDown, nec.Mute, nec.Default, 0xFFFFFFFF, 0x00000001, 0x80000000}
	r := rand.New(rand.NewSource(562))
	for i := 0; i < 64; i++ {
		codes = append(codes, nec.Code(r.Uint32()))
	}
	return codes
}

func TestMarshalFrame_Structure(t *testing.T) {
	for _, code := range sampleCodes() {
		frame := code.MarshalFrame()
		require.Len(t, frame, 34)

		assert.Equal(t, irscram.TimePair{9000 * time.Microsecond, 4500 * time.Microsecond}, frame[0])
		for i := 0; i < 32; i++ {
			bit := (uint32(code) >> (31 - i)) & 1
			pair := frame[i+1]
			assert.Equal(t, 562*time.Microsecond, pair[0], "%v bit %d mark", code, 31-i)
			if bit == 1 {
				assert.Equal(t, 3*562*time.Microsecond, pair[1], "%v bit %d space", code, 31-i)
			} else {
				assert.Equal(t, 562*time.Microsecond, pair[1], "%v bit %d space", code, 31-i)
			}
		}
		assert.Equal(t, irscram.TimePair{562 * time.Microsecond, 0}, frame[33])
	}
}

func TestCode_Duration(t *testing.T) {
	// 16 ones and 16 zeros
	assert.Equal(t, 68014*time.Microsecond, nec.Mute.Duration())
	// leader + 32 zeros + stop
	assert.Equal(t, (13500+32*1124+562)*time.Microsecond, nec.Default.Duration())
}

func TestCode_String(t *testing.T) {
	assert.Equal(t, "POWER", nec.Power.String())
	assert.Equal(t, "CH+", nec.ChannelUp.String())
	assert.Equal(t, "CH-", nec.ChannelDown.String())
	assert.Equal(t, "MUTE", nec.Mute.String())
	assert.Equal(t, "DEFAULT", nec.Default.String())
	assert.Equal(t, "0x12345678", nec.Code(0x12345678).String())
}

func TestParse(t *testing.T) {
	cases := map[string]nec.Code{
		"POWER":      nec.Power,
		"MUTE":       nec.Mute,
		"CH-":        nec.ChannelDown,
		"0x80BF3BC4": nec.Power,
		"80bf39c6":   nec.Mute,
		"0X1":        1,
	}
	for in, want := range cases {
		got, err := nec.Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "volume", "0x1FFFFFFFF", "12zz"} {
		_, err := nec.Parse(bad)
		assert.Error(t, err, bad)
	}
}

// loopback sends code through the bit-banged carrier and decodes the
// resulting pin edges.
func loopback(t *testing.T, codes ...nec.Code) []nec.Code {
	t.Helper()
	b := sim.NewBoard()
	pin := b.NewPin()
	var got []nec.Code
	demod := irscram.NewDemodulator(nec.NewStateMachine(func(c nec.Code) {
		got = append(got, c)
	}))
	pin.OnEdge = demod.Edge
	pacer := irscram.NewPacer(b, nil)
	tx := irscram.NewTxDevice(irscram.NewBitBang(pin, pacer))

	for _, c := range codes {
		require.NoError(t, nec.Send(tx, c))
		require.NoError(t, pacer.Wait(100*time.Millisecond))
	}
	demod.Flush()
	return got
}

func TestSend_Loopback(t *testing.T) {
	codes := sampleCodes()
	assert.Equal(t, codes, loopback(t, codes...))
}

func TestSend_BitBangDuration(t *testing.T) {
	b := sim.NewBoard()
	tx := irscram.NewTxDevice(irscram.NewBitBang(b.NewPin(), irscram.NewPacer(b, nil)))

	require.NoError(t, nec.Send(tx, nec.Mute))

	// marks are truncated to whole 26µs cycles: 8996µs leader, 546µs bits
	assert.Equal(t, 67482*time.Microsecond, b.Now())
}

func TestSend_Aborted(t *testing.T) {
	b := sim.NewBoard()
	abort := &irscram.Abort{}
	b.OnPress = func(time.Duration) { abort.Set() }
	b.Schedule(sim.Press{At: 20 * time.Millisecond})
	pin := b.NewPin()
	tx := irscram.NewTxDevice(irscram.NewBitBang(pin, irscram.NewPacer(b, abort)))

	err := nec.Send(tx, nec.Power)

	require.ErrorIs(t, err, irscram.ErrAborted)
	assert.Contains(t, err.Error(), "send POWER")
	assert.False(t, pin.Level())
	assert.LessOrEqual(t, b.Now(), 21*time.Millisecond)
}
