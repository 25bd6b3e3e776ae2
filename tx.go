package irscram

import "fmt"

// TxDevice sends mark/space pairs through a Carrier.
type TxDevice struct {
	carrier Carrier
}

func NewTxDevice(carrier Carrier) *TxDevice {
	carrier.Off()
	return &TxDevice{carrier: carrier}
}

// Carrier returns the carrier the device transmits with.
func (tx *TxDevice) Carrier() Carrier {
	return tx.carrier
}

// SendPair emits the mark, then the space. A zero space is skipped.
func (tx *TxDevice) SendPair(pair TimePair) error {
	if err := tx.carrier.Mark(pair[0]); err != nil {
		return err
	}
	if pair[1] == 0 {
		return nil
	}
	return tx.carrier.Space(pair[1])
}

// SendPairs sends each pair in order. On error the carrier is switched off
// and the index of the pair that failed is reported.
func (tx *TxDevice) SendPairs(pairs ...TimePair) error {
	for i, p := range pairs {
		if err := tx.SendPair(p); err != nil {
			tx.carrier.Off()
			return fmt.Errorf("pair %d of %d: %w", i, len(pairs), err)
		}
	}
	return nil
}

func (tx *TxDevice) SendFrame(fm FrameMarshaller) error {
	return tx.SendPairs(fm.MarshalFrame()...)
}

func (tx *TxDevice) SendFrames(fms ...FrameMarshaller) error {
	for _, fm := range fms {
		if err := tx.SendFrame(fm); err != nil {
			return err
		}
	}
	return nil
}
