// Package modem implements the modem driver: it drives a
// DDS AFSK modulator and a bitstream converter to turn one AX.25 frame
// into samples on an audio sink, gating PTT and silence padding around
// the burst.
package modem

import (
	"errors"
	"time"

	"github.com/n0call/aprsmodem/internal/afsk"
	"github.com/n0call/aprsmodem/internal/ax25"
	"github.com/n0call/aprsmodem/internal/bitstream"
	"github.com/n0call/aprsmodem/internal/capability"
)

// ErrNotInitialized is returned by Transmit when Initialize has not been
// called.
var ErrNotInitialized = errors.New("modem: driver not initialized")

// AudioSinkError wraps a failure from the bound capability.AudioSink
// (Write or WaitWriteCompleted), distinguishing it from other transmit
// faults (encode errors, PTT errors). coordinator.Coordinator uses
// errors.As against capability.AudioSinkError to keep a separate
// audio-stream error count without needing to import package modem.
type AudioSinkError = capability.AudioSinkError

// Config holds the per-driver transmit parameters an AFSK/FX.25 modem needs
// out: HDLC flag counts, silence padding, and output gain.
type Config struct {
	TxDelayFlags int
	TxTailFlags  int
	StartSilence time.Duration
	EndSilence   time.Duration
	Gain         float64 // applied post-modulation
}

// DefaultConfig mirrors commonly used APRS 1200-baud AFSK defaults.
func DefaultConfig() Config {
	return Config{
		TxDelayFlags: 30,
		TxTailFlags:  3,
		StartSilence: 0,
		EndSilence:   0,
		Gain:         1.0,
	}
}

// Driver is the modem driver: it binds an audio sink, a DDS modulator, a
// bitstream converter, and (optionally) a PTT capability, and plays one
// frame at a time.
type Driver struct {
	cfg       Config
	sink      capability.AudioSink
	modulator *afsk.Modulator
	converter bitstream.Converter
	ptt       capability.PTT
	observer  capability.Observer

	nrziLevel byte
	bound     bool
}

// New constructs a Driver with the given config. Call Initialize to bind
// the sink, modulator, and converter before Transmit.
func New(cfg Config) *Driver {
	return &Driver{cfg: cfg, observer: capability.NopObserver{}}
}

// Initialize binds the audio sink, DDS modulator, and bitstream converter.
// ptt and observer may be nil; a nil PTT means PTT gating is skipped, a
// nil observer means events are dropped.
func (d *Driver) Initialize(sink capability.AudioSink, modulator *afsk.Modulator, converter bitstream.Converter, ptt capability.PTT, observer capability.Observer) {
	d.sink = sink
	d.modulator = modulator
	d.converter = converter
	d.ptt = ptt
	if observer != nil {
		d.observer = observer
	}
	d.bound = true
}

// Transmit plays frame through the bound audio sink:
// optional PTT assert, start silence, bit-sequence encode and modulate,
// end silence, wait for the sink to drain, PTT deassert. Any failure
// raises a transmit fault: PTT is always best-effort released, and the
// error is returned so the caller (coordinator) can leave the packet
// unacknowledged and disable the data stream.
func (d *Driver) Transmit(frame ax25.Frame) error {
	if !d.bound {
		return ErrNotInitialized
	}

	if d.ptt != nil {
		if err := d.ptt.Set(true); err != nil {
			return err
		}
	}
	// PTT is always best-effort released on the way out, success or
	// failure.
	defer func() {
		if d.ptt != nil {
			_ = d.ptt.Set(false)
		}
	}()

	if err := d.writeSilence(d.cfg.StartSilence); err != nil {
		return err
	}

	bits, err := d.converter.Encode(frame, d.cfg.TxDelayFlags, d.cfg.TxTailFlags, d.nrziLevel)
	if err != nil {
		return err
	}
	if len(bits) > 0 {
		d.nrziLevel = bits[len(bits)-1]
	}

	for _, bit := range bits {
		n := d.modulator.NextSamplesPerBit()
		samples := d.modulator.ModulateBit(bit, n)
		if d.cfg.Gain != 1.0 {
			for i := range samples {
				samples[i] *= d.cfg.Gain
			}
		}
		if _, err := d.sink.Write(samples); err != nil {
			return &AudioSinkError{Err: err}
		}
	}

	if err := d.writeSilence(d.cfg.EndSilence); err != nil {
		return err
	}

	if err := d.sink.WaitWriteCompleted(-1); err != nil {
		return &AudioSinkError{Err: err}
	}
	return nil
}

func (d *Driver) writeSilence(dur time.Duration) error {
	if dur <= 0 {
		return nil
	}
	n := int(dur.Seconds() * d.sink.SampleRate())
	if n <= 0 {
		return nil
	}
	silence := make([]float64, n)
	if _, err := d.sink.Write(silence); err != nil {
		return &AudioSinkError{Err: err}
	}
	return nil
}
