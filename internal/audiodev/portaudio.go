//go:build portaudio

// Package audiodev implements capability.AudioSink and capability.AudioSource
// over a live PortAudio stream, via github.com/gordonklaus/portaudio.
// Build-tagged because sandboxes and CI runners generally lack both the
// PortAudio shared library and an audio device.
package audiodev

import (
	"errors"
	"time"

	"github.com/gordonklaus/portaudio"
)

// ErrNotOpen is returned by Write/Read/Close before Open has succeeded.
var ErrNotOpen = errors.New("audiodev: stream not open")

// Stream is a capability.AudioSink and capability.AudioSource backed by
// one full-duplex PortAudio stream. Samples are float32 on the wire (the
// library's native sample format) and widened to/from float64 at the
// capability boundary, matching the modulator's [-1, 1] envelope contract.
type Stream struct {
	stream     *portaudio.Stream
	sampleRate float64
	channels   int

	outBuf []float32
	inBuf  []float32
}

// Open initializes PortAudio and opens the default full-duplex device at
// sampleRate Hz, channels channels, with framesPerBuffer frames per
// callback period.
func Open(sampleRate float64, channels int, framesPerBuffer int) (*Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	s := &Stream{
		sampleRate: sampleRate,
		channels:   channels,
		outBuf:     make([]float32, framesPerBuffer*channels),
		inBuf:      make([]float32, framesPerBuffer*channels),
	}
	stream, err := portaudio.OpenDefaultStream(channels, channels, sampleRate, framesPerBuffer, s.inBuf, s.outBuf)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	s.stream = stream
	if err := s.stream.Start(); err != nil {
		_ = s.stream.Close()
		portaudio.Terminate()
		return nil, err
	}
	return s, nil
}

// Write implements capability.AudioSink: it blocks (via PortAudio's
// stream.Write) until samples have been handed to the device, widening
// float64 [-1, 1] samples to the stream's native float32 buffer.
func (s *Stream) Write(samples []float64) (int, error) {
	if s.stream == nil {
		return 0, ErrNotOpen
	}
	n := 0
	for n < len(samples) {
		chunk := len(s.outBuf)
		if chunk > len(samples)-n {
			chunk = len(samples) - n
		}
		for i := 0; i < chunk; i++ {
			s.outBuf[i] = float32(samples[n+i])
		}
		for i := chunk; i < len(s.outBuf); i++ {
			s.outBuf[i] = 0
		}
		if err := s.stream.Write(); err != nil {
			return n, err
		}
		n += chunk
	}
	return n, nil
}

// WaitWriteCompleted blocks until the stream's internal buffer has
// drained or timeout elapses; PortAudio has no explicit drain call, so
// this polls AvailableToWrite against the buffer's full capacity.
func (s *Stream) WaitWriteCompleted(timeout time.Duration) error {
	if s.stream == nil {
		return ErrNotOpen
	}
	deadline := time.Now().Add(timeout)
	for {
		avail, err := s.stream.AvailableToWrite()
		if err != nil {
			return err
		}
		if avail >= len(s.outBuf) {
			return nil
		}
		if timeout >= 0 && time.Now().After(deadline) {
			return nil
		}
		time.Sleep(time.Millisecond)
	}
}

// Read implements capability.AudioSource, narrowing the stream's native
// float32 samples to float64.
func (s *Stream) Read(buf []float64) (int, error) {
	if s.stream == nil {
		return 0, ErrNotOpen
	}
	if err := s.stream.Read(); err != nil {
		return 0, err
	}
	n := len(buf)
	if n > len(s.inBuf) {
		n = len(s.inBuf)
	}
	for i := 0; i < n; i++ {
		buf[i] = float64(s.inBuf[i])
	}
	return n, nil
}

func (s *Stream) SampleRate() float64 { return s.sampleRate }
func (s *Stream) Channels() int       { return s.channels }

// Close stops the stream, closes it, and terminates PortAudio.
func (s *Stream) Close() error {
	if s.stream == nil {
		return nil
	}
	err := s.stream.Stop()
	if cerr := s.stream.Close(); err == nil {
		err = cerr
	}
	portaudio.Terminate()
	s.stream = nil
	return err
}
