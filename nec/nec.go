// nec implements the NEC pulse-distance infrared protocol: an encoder that
// marshals 32-bit codes into irscram.TimePairs and an irscram.RxStateMachine
// that decodes them again.
//
// A frame is a 9ms leader mark and 4.5ms space, then 32 bits sent MSB first,
// then a single stop mark. Every bit is a 562µs mark; the space that follows
// it is 562µs for a zero and three times that for a one.
package nec

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sparques/irscram"
)

const (
	BitTime     = 562 * time.Microsecond
	LeaderMark  = 9000 * time.Microsecond
	LeaderSpace = 4500 * time.Microsecond
	OneSpace    = 3 * BitTime
	ZeroSpace   = BitTime

	// Bits is the number of data bits in a frame.
	Bits = 32
)

// Code is a raw 32-bit NEC code, transmitted MSB first.
type Code uint32

const (
	Power       Code = 0x80BF3BC4
	ChannelUp   Code = 0x80BFA15E
	ChannelDown Code = 0x80BF619E
	Mute        Code = 0x80BF39C6
	Default     Code = 0x00000000
)

var names = map[Code]string{
	Power:       "POWER",
	ChannelUp:   "CH+",
	ChannelDown: "CH-",
	Mute:        "MUTE",
	Default:     "DEFAULT",
}

func (c Code) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return fmt.Sprintf("0x%08X", uint32(c))
}

var (
	LeaderPair = irscram.TimePair{LeaderMark, LeaderSpace}
	OnePair    = irscram.TimePair{BitTime, OneSpace}
	ZeroPair   = irscram.TimePair{BitTime, ZeroSpace}
	// StopPair has no space; whatever follows the frame is silence anyway.
	StopPair = irscram.TimePair{BitTime, 0}
)

// MarshalFrame implements irscram.FrameMarshaller.
func (c Code) MarshalFrame() []irscram.TimePair {
	out := make([]irscram.TimePair, Bits+2)

	out[0] = LeaderPair

	mask := uint32(1) << (Bits - 1)
	for bit := 0; bit < Bits; bit++ {
		if uint32(c)&mask != 0 {
			out[bit+1] = OnePair
		} else {
			out[bit+1] = ZeroPair
		}
		mask >>= 1
	}

	out[Bits+1] = StopPair

	return out
}

// Duration is the nominal on-air time of c's frame.
func (c Code) Duration() time.Duration {
	var total time.Duration
	for _, p := range c.MarshalFrame() {
		total += p.Duration()
	}
	return total
}

// Send transmits a single frame for code.
func Send(tx *irscram.TxDevice, code Code) error {
	if err := tx.SendFrame(code); err != nil {
		return fmt.Errorf("send %v: %w", code, err)
	}
	return nil
}

// Parse accepts a code name as returned by Code.String, or a hex value with
// or without a 0x prefix.
func Parse(s string) (Code, error) {
	for c, n := range names {
		if n == s {
			return c, nil
		}
	}
	hex := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Default, fmt.Errorf("nec: unknown code %q", s)
	}
	return Code(v), nil
}
