// Package bitstream adapts AX.25 frames into transmit bit sequences and
// back, selecting between the plain HDLC wire format and the FX.25
// forward-error-corrected wire format.
package bitstream

import (
	"github.com/n0call/aprsmodem/internal/ax25"
	"github.com/n0call/aprsmodem/internal/fx25"
	"github.com/n0call/aprsmodem/internal/hdlc"
)

// Converter turns an AX.25 frame into the bits to key onto the channel.
// Implementations choose the wire format (plain HDLC or FX.25) but share
// the same contract, so a modem driver can swap converters without
// otherwise changing its transmit path.
type Converter interface {
	// Encode returns the NRZI-encoded bit sequence for one transmission of
	// frame, bracketed by txDelayFlags leading and txTailFlags trailing
	// HDLC flags. startLevel is the NRZI line level carried over from
	// whatever was last sent on the channel.
	Encode(frame ax25.Frame, txDelayFlags, txTailFlags int, startLevel byte) ([]byte, error)
}

// AX25Converter is the basic, non-FX.25 HDLC wire format: the frame's
// AX.25 bytes (destination/source/path/control/PID/info/FCS), bit-stuffed,
// bracketed by flags.
type AX25Converter struct{}

func (AX25Converter) Encode(frame ax25.Frame, txDelayFlags, txTailFlags int, startLevel byte) ([]byte, error) {
	payload, err := frame.Encode()
	if err != nil {
		return nil, err
	}
	return hdlc.EncodeFrame(payload, txDelayFlags, txTailFlags, startLevel), nil
}

// FX25Converter wraps the frame's AX.25 bytes in an FX.25 Reed-Solomon
// block before framing. The RS block is transmitted
// unstuffed — flags bracket it but bit-stuffing never applies to its
// interior.
type FX25Converter struct {
	// TagNum pins a specific FX.25 correlation tag (1-9). Zero selects
	// automatically, the smallest RS block that fits the frame.
	TagNum int
}

func (c FX25Converter) Encode(frame ax25.Frame, txDelayFlags, txTailFlags int, startLevel byte) ([]byte, error) {
	payload, err := frame.Encode()
	if err != nil {
		return nil, err
	}
	var block []byte
	if c.TagNum == 0 {
		block, err = fx25.Encode(payload)
	} else {
		block, err = fx25.EncodeWithTag(payload, c.TagNum)
	}
	if err != nil {
		return nil, err
	}
	return hdlc.EncodeRawFrame(block, txDelayFlags, txTailFlags, startLevel), nil
}
