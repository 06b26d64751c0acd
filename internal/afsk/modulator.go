// Package afsk implements the direct-digital-synthesis AFSK modulator: a
// per-bit sample generator that holds phase continuity across mark/space
// tone transitions and tracks fractional samples-per-bit.
package afsk

import "math"

// twoPi is kept as a named constant so the phase-advance formula reads as
// 2*pi*f/SR directly.
const twoPi = 2 * math.Pi

// Modulator is a DDS AFSK tone generator. It holds one phase accumulator
// that advances by 2*pi*f/SR per sample, where f is the mark frequency
// while the current bit is 1 and the space frequency while it is 0.
// Samples-per-bit is tracked fractionally via an accumulator pattern so
// the long-run average exactly tracks SR/B.
type Modulator struct {
	MarkFreq   float64 // fm, Hz
	SpaceFreq  float64 // fs, Hz
	Baud       float64 // B, bits/sec
	SampleRate float64 // SR, samples/sec

	phase     float64 // radians, wraps modulo 2*pi
	bitLenAcc float64 // accumulated fractional samples-per-bit error
}

// NewModulator constructs a Modulator for the given tone/baud/sample-rate
// parameters. Phase starts at zero.
func NewModulator(markFreq, spaceFreq, baud, sampleRate float64) *Modulator {
	return &Modulator{
		MarkFreq:   markFreq,
		SpaceFreq:  spaceFreq,
		Baud:       baud,
		SampleRate: sampleRate,
	}
}

// NextSamplesPerBit returns the number of samples to generate for the next
// bit: floor(SR/B) or ceil(SR/B), chosen via an accumulator so the
// cumulative sample count tracks n*SR/B within +-1 sample.
func (m *Modulator) NextSamplesPerBit() int {
	exact := m.SampleRate / m.Baud
	base := math.Floor(exact)
	frac := exact - base

	m.bitLenAcc += frac
	n := base
	if m.bitLenAcc >= 1.0 {
		n++
		m.bitLenAcc -= 1.0
	}
	return int(n)
}

// Modulate advances the phase by one sample's worth of the tone selected by
// bit (1 -> mark, 0 -> space) and returns sin(phase) in [-1, 1].
func (m *Modulator) Modulate(bit byte) float64 {
	freq := m.SpaceFreq
	if bit != 0 {
		freq = m.MarkFreq
	}
	m.phase += twoPi * freq / m.SampleRate
	if m.phase >= twoPi {
		m.phase = math.Mod(m.phase, twoPi)
	}
	return math.Sin(m.phase)
}

// ModulateBit generates exactly n samples (as returned by
// NextSamplesPerBit) for one bit, advancing phase continuously across all
// n samples and across the boundary into whatever bit follows.
func (m *Modulator) ModulateBit(bit byte, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = m.Modulate(bit)
	}
	return out
}

// ModulateBits generates the full sample stream for a sequence of bits
// (0/1 per byte, as produced by the hdlc package), one NextSamplesPerBit
// call per bit.
func (m *Modulator) ModulateBits(bits []byte) []float64 {
	var out []float64
	for _, bit := range bits {
		n := m.NextSamplesPerBit()
		out = append(out, m.ModulateBit(bit, n)...)
	}
	return out
}

// Phase returns the modulator's current phase accumulator, in radians,
// wrapped to [0, 2*pi). Exposed for diagnostics and tests that check
// continuity across calls.
func (m *Modulator) Phase() float64 {
	return m.phase
}
