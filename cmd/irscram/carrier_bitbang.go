//go:build rp2040 && !pwmcarrier

package main

import (
	"github.com/sparques/irscram"
	"github.com/sparques/irscram/board"
)

func newCarrier(pacer *irscram.Pacer) (irscram.Carrier, error) {
	return irscram.NewBitBang(board.Output(board.IRPin), pacer), nil
}
