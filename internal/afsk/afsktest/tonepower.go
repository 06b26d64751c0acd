// Package afsktest provides frequency-domain test helpers for verifying
// DDS AFSK modulator output.
package afsktest

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// TonePower returns the squared-magnitude spectral power nearest to freqHz
// in an FFT of samples sampled at sampleRate Hz. It is used by modulator
// tests to confirm that a run of constant-bit samples carries its energy
// at the expected mark or space frequency rather than elsewhere.
func TonePower(samples []float64, sampleRate float64, freqHz float64) float64 {
	spectrum := fft.FFTReal(samples)
	bin := int(freqHz / sampleRate * float64(len(samples)))
	if bin < 0 {
		bin = 0
	}
	if bin >= len(spectrum) {
		bin = len(spectrum) - 1
	}
	mag := cmplx.Abs(spectrum[bin])
	return mag * mag
}

// DominantFreq returns the frequency (Hz) of the largest-magnitude bin in
// the lower half of the spectrum (0..sampleRate/2).
func DominantFreq(samples []float64, sampleRate float64) float64 {
	spectrum := fft.FFTReal(samples)
	n := len(spectrum) / 2
	best := 0
	bestMag := 0.0
	for i := 1; i < n; i++ {
		mag := cmplx.Abs(spectrum[i])
		if mag > bestMag {
			bestMag = mag
			best = i
		}
	}
	return float64(best) * sampleRate / float64(len(samples))
}
