package kiss

import (
	"errors"

	"github.com/n0call/aprsmodem/internal/ax25"
	"github.com/n0call/aprsmodem/internal/capability"
)

// ErrNotDataFrame is returned by decode helpers when a recovered KISS
// frame's command nibble is not CmdDataFrame; non-zero commands are not
// packet data and route to a command callback instead.
var ErrNotDataFrame = errors.New("kiss: frame is not a data frame")

// OnCommand, when set, is invoked for every recovered KISS frame whose
// command nibble is non-zero (set PTT, set TX-delay, etc.).
type OnCommand func(f Frame)

// AX25Formatter implements capability.Formatter over KISS-framed AX.25
// data: Encode strips the FCS AX.25 frames normally carry (KISS data
// frames carry the frame "sans FCS") and wraps it in a
// KISS data frame; TryDecode feeds a per-client KISS decoder and parses
// any recovered CmdDataFrame payload as a no-FCS AX.25 frame. One
// stateful Decoder plus a pending-frame queue per client, cloned lazily
// per client ID.
type AX25Formatter struct {
	Port int

	OnCommand OnCommand

	decoder *Decoder
	pending []Frame
}

// NewAX25Formatter constructs an AX25Formatter for the given KISS port
// nibble.
func NewAX25Formatter(port int) *AX25Formatter {
	return &AX25Formatter{Port: port, decoder: NewDecoder()}
}

// Encode renders frame as a KISS data frame: its AX.25 bytes with the
// trailing 2-byte FCS stripped.
func (f *AX25Formatter) Encode(frame ax25.Frame) ([]byte, error) {
	raw, err := frame.Encode()
	if err != nil {
		return nil, err
	}
	if len(raw) < 2 {
		return nil, ax25.ErrShortFrame
	}
	return Encode(f.Port, CmdDataFrame, raw[:len(raw)-2]), nil
}

// TryDecode feeds data into the formatter's KISS decoder. Any recovered
// CmdDataFrame is parsed as a no-FCS AX.25 frame and returned on the
// first match; non-zero-command frames are routed to OnCommand (if set)
// and are never surfaced as data. consumed is always len(data): KISS framing has no
// meaningful partial-consumption boundary narrower than whole input
// chunks, since escape/frame state is carried internally across calls.
func (f *AX25Formatter) TryDecode(data []byte) (frame ax25.Frame, ok bool, consumed int) {
	recovered := f.decoder.Feed(data)
	f.pending = append(f.pending, recovered...)

	for len(f.pending) > 0 {
		kf := f.pending[0]
		f.pending = f.pending[1:]

		if kf.Cmd != CmdDataFrame {
			if f.OnCommand != nil {
				f.OnCommand(kf)
			}
			continue
		}
		parsed, err := ax25.DecodeFrameNoFCS(kf.Data)
		if err != nil {
			continue
		}
		return parsed, true, len(data)
	}
	return ax25.Frame{}, false, len(data)
}

// Clone returns a fresh AX25Formatter sharing this one's Port and
// OnCommand callback but with independent decoder/queue state, for a
// newly connected client (per-client formatter clones).
func (f *AX25Formatter) Clone() capability.Formatter {
	return &AX25Formatter{
		Port:      f.Port,
		OnCommand: f.OnCommand,
		decoder:   NewDecoder(),
	}
}
