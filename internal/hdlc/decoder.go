package hdlc

import "github.com/n0call/aprsmodem/internal/ax25"

// decState is the streaming decoder's phase: hunting for a flag, or
// accumulating bits of a frame in progress.
type decState int

const (
	decHunting decState = iota
	decAccumulating
)

// Result is one frame recovered by the streaming decoder, with diagnostic
// bit offsets into the input stream (1-based; zero when diagnostics are
// disabled).
type Result struct {
	Frame      ax25.Frame
	FrameStart int // 1-based bit offset of the opening flag's first bit
	FrameEnd   int // 1-based bit offset of the closing flag's last bit
}

// Decoder is a persistent bit-consuming HDLC streaming receive state
// machine. Bits are fed post-NRZI-decode; NRZILastLevel
// tracks the NRZI line level across calls so a caller doing its own NRZI
// decoding externally can resync state. Most callers instead feed raw
// (still NRZI-encoded) bits via DecodeNRZI, which maintains the NRZI level
// internally.
type Decoder struct {
	Diagnostics bool

	state         decState
	pendingOnes   int
	bitIndex      int // absolute count of bits fed to this decoder so far
	frameStartBit int // pending frame_start for the frame being accumulated

	partial    byte // up to 7 bits of the in-progress byte, LSB-first
	partialLen int
	bytesAcc   []byte

	// NRZILastLevel is the line level of the most recently decoded bit,
	// used by DecodeNRZI to continue decoding across calls.
	NRZILastLevel byte
}

// NewDecoder creates a streaming decoder. diagnostics enables FrameStart/
// FrameEnd population on Result.
func NewDecoder(diagnostics bool) *Decoder {
	return &Decoder{Diagnostics: diagnostics}
}

// DecodeNRZI is Decode, but bits are the still-NRZI-encoded line signal;
// it NRZI-decodes using d.NRZILastLevel (carried across calls) before
// feeding the state machine.
func (d *Decoder) DecodeNRZI(nrziBits []byte, startOffset int) (result Result, success bool, consumed int) {
	decoded := NRZIDecode(nrziBits[startOffset:], d.NRZILastLevel)
	r, ok, n := d.Decode(decoded, 0)
	if n > 0 {
		d.NRZILastLevel = nrziBits[startOffset+n-1]
	}
	return r, ok, n
}

// Decode consumes bits[startOffset:] until either one complete, valid
// frame is recovered (success=true) or the input is exhausted without one
// (success=false). Corrupt or aborted frame attempts encountered along the
// way are silently dropped and scanning continues within the same call —
// the decoder surface never raises. consumed is the
// number of bits of bits[startOffset:] that were processed; callers
// re-invoke with startOffset += consumed until consumed == 0 (meaning the
// buffer is exhausted and more input is needed).
func (d *Decoder) Decode(bits []byte, startOffset int) (result Result, success bool, consumed int) {
	i := startOffset
	for i < len(bits) {
		bit := bits[i]
		i++
		d.bitIndex++

		if bit == 1 {
			d.pendingOnes++
			if d.pendingOnes == 7 {
				// Abort: discard any partial frame, return to hunting.
				d.resetFrame()
				d.state = decHunting
				d.pendingOnes = 0
			}
			continue
		}

		// bit == 0: resolves whatever run of ones (0-6) preceded it.
		switch {
		case d.pendingOnes == 6:
			// Flag detected: 0 + six ones + 0.
			flagEnd := d.bitIndex
			flagStart := flagEnd - 7

			if d.state == decAccumulating {
				if r, ok := d.closeFrame(flagEnd); ok {
					result = r
					success = true
					consumed = i - startOffset
					d.startFrame(flagStart)
					d.pendingOnes = 0
					return result, success, consumed
				}
			}
			d.startFrame(flagStart)

		case d.pendingOnes == 5:
			// Stuffed bit: the five ones were real data; drop this zero.
			if d.state == decAccumulating {
				d.appendBits(1, 5)
			}

		default:
			// 0-4 ones followed by a plain zero: all of it is data.
			if d.state == decAccumulating {
				d.appendBits(1, d.pendingOnes)
				d.appendBits(0, 1)
			}
		}
		d.pendingOnes = 0
	}
	return Result{}, false, i - startOffset
}

func (d *Decoder) startFrame(frameStartBit int) {
	d.state = decAccumulating
	d.frameStartBit = frameStartBit
	d.partial = 0
	d.partialLen = 0
	d.bytesAcc = d.bytesAcc[:0]
}

func (d *Decoder) resetFrame() {
	d.partial = 0
	d.partialLen = 0
	d.bytesAcc = nil
}

// appendBits appends n copies of value (0 or 1) to the byte accumulator,
// LSB-first within each byte.
func (d *Decoder) appendBits(value byte, n int) {
	for k := 0; k < n; k++ {
		if value != 0 {
			d.partial |= 1 << d.partialLen
		}
		d.partialLen++
		if d.partialLen == 8 {
			d.bytesAcc = append(d.bytesAcc, d.partial)
			d.partial = 0
			d.partialLen = 0
		}
	}
}

// minFrameBytes is dest(7)+src(7)+control(1)+pid(1), a lower bound below
// which no candidate can be a valid AX.25 frame.
const minFrameBytes = 16

// closeFrame validates the accumulated bytes as a candidate frame: it must
// be byte-aligned, at least minFrameBytes long, and carry a valid FCS. On
// success it parses the frame and returns it; on failure it returns
// ok=false (the accumulator is reset by the caller via startFrame either
// way).
//
// The closing flag's opening 0 bit is only recognized as part of the flag
// once the flag's final 0 arrives, so for a byte-aligned frame exactly that
// one zero bit is pending in the accumulator here; anything else means the
// frame was misaligned.
func (d *Decoder) closeFrame(flagEnd int) (Result, bool) {
	if d.partialLen != 1 || d.partial != 0 || len(d.bytesAcc) < minFrameBytes {
		return Result{}, false
	}
	f, err := ax25.DecodeFrame(d.bytesAcc)
	if err != nil {
		return Result{}, false
	}
	res := Result{Frame: f}
	if d.Diagnostics {
		res.FrameStart = d.frameStartBit
		res.FrameEnd = flagEnd
	}
	return res, true
}
