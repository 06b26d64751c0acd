// Package audiofile implements a capability.AudioSink that renders
// modulated samples to a WAV file instead of a live device, so a
// transmission can be logged or inspected offline.
package audiofile

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16

// WAVSink is a capability.AudioSink that accumulates samples and encodes
// them as 16-bit PCM WAV on Close. It can serve as a modem driver sink
// double or as a standalone "what did we actually transmit" logger wired
// alongside a live sink.
type WAVSink struct {
	enc        *wav.Encoder
	sampleRate int
	channels   int
	closer     io.Closer
}

// New wraps w (typically an *os.File) with a WAV encoder at sampleRate Hz,
// mono unless channels is overridden. Call Close to flush the WAV header
// and footer; the underlying writer is closed too if it implements
// io.Closer.
func New(w io.WriteSeeker, sampleRate int, channels int) *WAVSink {
	if channels <= 0 {
		channels = 1
	}
	s := &WAVSink{
		enc:        wav.NewEncoder(w, sampleRate, bitDepth, channels, 1),
		sampleRate: sampleRate,
		channels:   channels,
	}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Write implements capability.AudioSink: samples in [-1, 1] are scaled to
// signed 16-bit PCM and appended to the WAV stream.
func (s *WAVSink) Write(samples []float64) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	data := make([]int, len(samples))
	for i, v := range samples {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		data[i] = int(math.Round(v * 32767))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: s.channels, SampleRate: s.sampleRate},
		SourceBitDepth: bitDepth,
		Data:           data,
	}
	if err := s.enc.Write(buf); err != nil {
		return 0, fmt.Errorf("audiofile: encode: %w", err)
	}
	return len(samples), nil
}

// WaitWriteCompleted is a no-op: Write is already synchronous, matching
// capability.AudioSink's contract for sinks with no internal queue.
func (s *WAVSink) WaitWriteCompleted(time.Duration) error {
	return nil
}

func (s *WAVSink) SampleRate() float64 { return float64(s.sampleRate) }
func (s *WAVSink) Channels() int       { return s.channels }

// Close flushes the WAV header/footer and closes the underlying writer if
// possible.
func (s *WAVSink) Close() error {
	if err := s.enc.Close(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
