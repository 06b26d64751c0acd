package hdlc

import (
	"strconv"
	"testing"

	"github.com/n0call/aprsmodem/internal/ax25"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// buildSharedFlagStream encodes each frame's bytes, bit-stuffs them, and
// joins them with exactly one shared HDLC flag between consecutive frames
// (one leading flag overall, one trailing flag overall), then NRZI-encodes
// the whole thing — the S6 "shared flag chain" wire format.
func buildSharedFlagStream(frames [][]byte) []byte {
	var bits []byte
	bits = append(bits, flagBits()...)
	for _, f := range frames {
		bits = append(bits, BitStuff(BytesToBits(f))...)
		bits = append(bits, flagBits()...)
	}
	return NRZIEncode(bits, 0)
}

func decodeAll(t *testing.T, wire []byte) []ax25.Frame {
	t.Helper()
	d := NewDecoder(true)
	var got []ax25.Frame
	offset := 0
	for {
		res, ok, consumed := d.DecodeNRZI(wire, offset)
		if ok {
			got = append(got, res.Frame)
		}
		if consumed == 0 {
			break
		}
		offset += consumed
	}
	return got
}

func TestStreamingDecode_SingleFrame(t *testing.T) {
	f, err := ax25.ParseFrame("N0CALL-10>APZ001,WIDE1-1,WIDE2-2:Hello, APRS!")
	require.NoError(t, err)
	encoded, err := f.Encode()
	require.NoError(t, err)

	wire := buildSharedFlagStream([][]byte{encoded})
	got := decodeAll(t, wire)
	require.Len(t, got, 1)
	assert.Equal(t, f.Info, got[0].Info)
	assert.Equal(t, f.Source, got[0].Source)
}

// S6: seven packets back-to-back with a single shared HDLC flag between
// each, decode to exactly those seven packets in order.
func TestStreamingDecode_SharedFlagChain(t *testing.T) {
	var frames [][]byte
	var want []ax25.Frame
	for i := 9; i <= 15; i++ {
		f, err := ax25.ParseFrame("N0CALL-" + strconv.Itoa(i) + ">APZ001:ping")
		require.NoError(t, err)
		encoded, err := f.Encode()
		require.NoError(t, err)
		frames = append(frames, encoded)
		want = append(want, f)
	}

	wire := buildSharedFlagStream(frames)
	got := decodeAll(t, wire)
	require.Len(t, got, 7)
	for i := range want {
		assert.Equal(t, want[i].Source, got[i].Source, "frame %d out of order or wrong", i)
	}
}

// S5: heavy bit-stuffing payload round-trips.
func TestStreamingDecode_HeavyStuffing(t *testing.T) {
	f, err := ax25.ParseFrame("N0CALL>APZ001:")
	require.NoError(t, err)
	f.Info = []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	encoded, err := f.Encode()
	require.NoError(t, err)

	wire := buildSharedFlagStream([][]byte{encoded})
	got := decodeAll(t, wire)
	require.Len(t, got, 1)
	assert.Equal(t, f.Info, got[0].Info)
}

// Info containing the flag byte 0x7E repeatedly must round-trip: the
// decoder must not mistake escaped (bit-stuffed) data for a real flag.
func TestStreamingDecode_FlagByteInPayload(t *testing.T) {
	f, err := ax25.ParseFrame("N0CALL>APZ001:")
	require.NoError(t, err)
	f.Info = []byte{0x7E, 0x7E, 0x7E, 0x7E}
	encoded, err := f.Encode()
	require.NoError(t, err)

	wire := buildSharedFlagStream([][]byte{encoded})
	got := decodeAll(t, wire)
	require.Len(t, got, 1)
	assert.Equal(t, f.Info, got[0].Info)
}

// Chunking must not change what decodes: the same wire fed in arbitrary
// 8..512-bit chunks yields the same frames, in the same order, as feeding
// the whole buffer at once.
func TestStreamingDecode_ChunkedFeedMatchesWholeBuffer(t *testing.T) {
	var frames [][]byte
	for i := 0; i < 5; i++ {
		f, err := ax25.ParseFrame("N0CALL-" + strconv.Itoa(i) + ">APZ001:chunk test " + strconv.Itoa(i))
		require.NoError(t, err)
		encoded, err := f.Encode()
		require.NoError(t, err)
		frames = append(frames, encoded)
	}
	wire := buildSharedFlagStream(frames)
	whole := decodeAll(t, wire)
	require.Len(t, whole, 5)

	rapid.Check(t, func(t *rapid.T) {
		d := NewDecoder(false)
		var got []ax25.Frame
		pos := 0
		for pos < len(wire) {
			n := rapid.IntRange(8, 512).Draw(t, "chunk")
			if n > len(wire)-pos {
				n = len(wire) - pos
			}
			chunk := wire[pos : pos+n]
			offset := 0
			for {
				res, ok, consumed := d.DecodeNRZI(chunk, offset)
				if ok {
					got = append(got, res.Frame)
				}
				if consumed == 0 {
					break
				}
				offset += consumed
			}
			pos += n
		}
		require.Len(t, got, len(whole))
		for i := range whole {
			assert.Equal(t, whole[i].Source, got[i].Source)
			assert.Equal(t, whole[i].Info, got[i].Info)
		}
	})
}

// Abort pattern (seven consecutive 1 bits) mid-frame discards that frame
// but preserves subsequent ones.
func TestStreamingDecode_AbortPatternDiscardsOnlyThatFrame(t *testing.T) {
	f1, err := ax25.ParseFrame("N0CALL-10>APZ001:first")
	require.NoError(t, err)
	enc1, err := f1.Encode()
	require.NoError(t, err)
	f2, err := ax25.ParseFrame("N0CALL-11>APZ001:second")
	require.NoError(t, err)
	enc2, err := f2.Encode()
	require.NoError(t, err)

	var bits []byte
	bits = append(bits, flagBits()...)
	// Inject an abort (seven 1 bits) partway through frame 1's stuffed
	// bits, then a fresh flag, then frame 1 never completes; frame 2
	// follows normally.
	stuffed1 := BitStuff(BytesToBits(enc1))
	half := len(stuffed1) / 2
	bits = append(bits, stuffed1[:half]...)
	for i := 0; i < 7; i++ {
		bits = append(bits, 1)
	}
	bits = append(bits, flagBits()...)
	bits = append(bits, BitStuff(BytesToBits(enc2))...)
	bits = append(bits, flagBits()...)

	wire := NRZIEncode(bits, 0)
	got := decodeAll(t, wire)
	require.Len(t, got, 1)
	assert.Equal(t, f2.Info, got[0].Info)
}
