package hdlc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestBitsBytesRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.SliceOf(rapid.Byte()).Draw(t, "s")
		assert.Equal(t, s, BitsToBytes(BytesToBits(s)))
	})
}

func TestNRZIRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 200).Draw(t, "n")
		bits := make([]byte, n)
		for i := range bits {
			bits[i] = byte(rapid.IntRange(0, 1).Draw(t, "bit"))
		}
		start := byte(rapid.IntRange(0, 1).Draw(t, "start"))
		encoded := NRZIEncode(bits, start)
		decoded := NRZIDecode(encoded, start)
		assert.Equal(t, bits, decoded)
	})
}

// bitsWithNoSixOnesRun generates a bit sequence guaranteed to contain no
// run of six or more consecutive 1 bits, the domain BitUnstuff inverts.
func bitsWithNoSixOnesRun(t *rapid.T) []byte {
	groups := rapid.SliceOfN(rapid.IntRange(0, 5), 0, 40).Draw(t, "run_lengths")
	bits := []byte{}
	for _, g := range groups {
		for i := 0; i < g; i++ {
			bits = append(bits, 1)
		}
		bits = append(bits, 0)
	}
	return bits
}

func TestBitStuffUnstuffRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bits := bitsWithNoSixOnesRun(t)
		stuffed := BitStuff(bits)
		assert.Equal(t, bits, BitUnstuff(stuffed))
	})
}

func TestBitStuffHeavyOnesPayload(t *testing.T) {
	// S5 boundary scenario: info payload 8x 0xFF round-trips through
	// stuffing (every byte is all-ones, forcing a stuff bit every 5 bits).
	payload := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	bits := BytesToBits(payload)
	stuffed := BitStuff(bits)

	// No run of six consecutive 1s may appear in stuffed output.
	run := 0
	for _, b := range stuffed {
		if b == 1 {
			run++
			assert.LessOrEqual(t, run, 5)
		} else {
			run = 0
		}
	}
	assert.Equal(t, bits, BitUnstuff(stuffed))
}
