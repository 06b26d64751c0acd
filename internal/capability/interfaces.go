// Package capability declares the external collaborator contracts the
// pipeline core depends on but does not own: audio sinks/sources, byte
// transports, PTT control, frame formatters, and pipeline-event observers.
// Concrete implementations live outside this package
// (internal/audiofile, internal/serialtransport, internal/kiss, etc.).
package capability

import (
	"time"

	"github.com/n0call/aprsmodem/internal/ax25"
)

// AudioSink accepts modulated samples for playback or file/stream output.
type AudioSink interface {
	// Write writes samples (in [-1, 1]) and returns the count accepted.
	Write(samples []float64) (int, error)
	// WaitWriteCompleted blocks until queued samples have drained, or
	// timeout elapses; a negative timeout blocks indefinitely.
	WaitWriteCompleted(timeout time.Duration) error
	SampleRate() float64
	Channels() int
}

// AudioSource provides captured/decoded samples for the receive path's
// external discriminator (out of this core's scope, but the capability is
// declared here since the modem driver's symmetric counterpart binds it).
type AudioSource interface {
	Read(buf []float64) (int, error)
}

// Transport is a byte-oriented, possibly multi-client transport (serial or
// TCP) the coordinator polls for inbound bytes and writes outbound KISS
// frames to.
type Transport interface {
	Start() error
	Stop() error
	Write(data []byte) (int, error)
	// Read reads from a specific client's inbound buffer.
	Read(clientID string, buf []byte) (int, error)
	Clients() []string
	Flush() error
	// WaitDataReceived blocks up to timeout for new inbound data,
	// returning true if data arrived before the deadline.
	WaitDataReceived(timeout time.Duration) bool
	Enabled() bool
	SetEnabled(bool)
}

// PTT is the push-to-talk transmitter key-line capability.
type PTT interface {
	Set(on bool) error
	Get() bool
}

// Formatter encodes packets to bytes and decodes bytes back to packets for
// one client's byte-transport stream; Formatter instances are stateful
// across TryDecode calls (mid-frame progress persists) and are cloned per
// client.
type Formatter interface {
	Encode(frame ax25.Frame) ([]byte, error)
	// TryDecode consumes from data and reports whether a complete frame
	// was recovered; implementations retain any partial state between
	// calls.
	TryDecode(data []byte) (frame ax25.Frame, ok bool, consumed int)
	Clone() Formatter
}

// Observer receives pipeline lifecycle and fault events. All methods are
// optional to implement meaningfully; a no-op Observer is valid.
type Observer interface {
	OnPacketReceived(clientID string, frame ax25.Frame)
	OnTransmitStarted(frame ax25.Frame)
	OnTransmitCompleted(frame ax25.Frame)
	OnClientConnected(clientID string)
	OnClientDisconnected(clientID string)
	OnCommand(clientID string, cmd int, data []byte)
	OnFault(stage string, err error)
	OnRecovered(stage string)
}

// AudioSinkError wraps a failure returned by an AudioSink's Write or
// WaitWriteCompleted, distinguishing sink faults from other transmit
// faults (encode errors, PTT errors) so they can be counted separately.
type AudioSinkError struct {
	Err error
}

func (e *AudioSinkError) Error() string { return "audio sink: " + e.Err.Error() }
func (e *AudioSinkError) Unwrap() error { return e.Err }

// NopObserver implements Observer with no-op methods, for callers that
// don't need pipeline events.
type NopObserver struct{}

func (NopObserver) OnPacketReceived(string, ax25.Frame) {}
func (NopObserver) OnTransmitStarted(ax25.Frame)        {}
func (NopObserver) OnTransmitCompleted(ax25.Frame)      {}
func (NopObserver) OnClientConnected(string)            {}
func (NopObserver) OnClientDisconnected(string)         {}
func (NopObserver) OnCommand(string, int, []byte)       {}
func (NopObserver) OnFault(string, error)               {}
func (NopObserver) OnRecovered(string)                  {}

// MultiObserver fans every event out to each wrapped Observer in order,
// so a text logger and a metrics sink can both watch one pipeline.
type MultiObserver []Observer

func (m MultiObserver) OnPacketReceived(clientID string, frame ax25.Frame) {
	for _, o := range m {
		o.OnPacketReceived(clientID, frame)
	}
}
func (m MultiObserver) OnTransmitStarted(frame ax25.Frame) {
	for _, o := range m {
		o.OnTransmitStarted(frame)
	}
}
func (m MultiObserver) OnTransmitCompleted(frame ax25.Frame) {
	for _, o := range m {
		o.OnTransmitCompleted(frame)
	}
}
func (m MultiObserver) OnClientConnected(clientID string) {
	for _, o := range m {
		o.OnClientConnected(clientID)
	}
}
func (m MultiObserver) OnClientDisconnected(clientID string) {
	for _, o := range m {
		o.OnClientDisconnected(clientID)
	}
}
func (m MultiObserver) OnCommand(clientID string, cmd int, data []byte) {
	for _, o := range m {
		o.OnCommand(clientID, cmd, data)
	}
}
func (m MultiObserver) OnFault(stage string, err error) {
	for _, o := range m {
		o.OnFault(stage, err)
	}
}
func (m MultiObserver) OnRecovered(stage string) {
	for _, o := range m {
		o.OnRecovered(stage)
	}
}
