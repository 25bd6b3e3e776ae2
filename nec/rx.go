package nec

import (
	"time"

	"github.com/sparques/irscram"
)

// StateMachine decodes NEC frames from mark/space pairs.
type StateMachine struct {
	CmdHandler func(Code)

	buf      uint32
	bitcount int
	inFrame  bool
}

func NewStateMachine(cmdHandler func(Code)) *StateMachine {
	return &StateMachine{CmdHandler: cmdHandler}
}

// HandleTimePair implements the irscram.RxStateMachine interface
func (sm *StateMachine) HandleTimePair(pair irscram.TimePair) {
	on, off := pair[0], pair[1]
	switch {
	case on > 7*time.Millisecond: // 9ms leader
		sm.buf = 0
		sm.bitcount = 0
		sm.inFrame = true
		return
	case !sm.inFrame:
		return
	case off == 0:
		// a mark with no space after it carries no bit
		return
	case off > time.Millisecond:
		// one
		sm.buf = sm.buf<<1 | 1
	default:
		// zero
		sm.buf <<= 1
	}
	sm.bitcount++

	if sm.bitcount < Bits {
		return
	}
	// the stop pair that follows is not part of the code
	sm.inFrame = false
	if sm.CmdHandler != nil {
		sm.CmdHandler(Code(sm.buf))
	}
}

// Partial reports how many bits of an unfinished frame have been received.
// It is zero when no frame is in progress.
func (sm *StateMachine) Partial() int {
	if !sm.inFrame {
		return 0
	}
	return sm.bitcount
}

// InFrame reports whether a leader has been seen and its 32 bits are not yet complete.
func (sm *StateMachine) InFrame() bool {
	return sm.inFrame
}

// Reset abandons any frame in progress.
func (sm *StateMachine) Reset() {
	sm.buf = 0
	sm.bitcount = 0
	sm.inFrame = false
}
