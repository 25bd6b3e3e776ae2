//go:build rp2040 && pwmcarrier

package main

import (
	"github.com/sparques/irscram"
	"github.com/sparques/irscram/board"
)

func newCarrier(pacer *irscram.Pacer) (irscram.Carrier, error) {
	pc, err := irscram.NewPWMCarrier(board.IRPin, pacer)
	if err != nil {
		return nil, err
	}
	return pc, nil
}
