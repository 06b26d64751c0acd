package kiss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeEscapesSpecialBytes(t *testing.T) {
	data := []byte{0x01, FEND, 0x02, FESC, 0x03}
	out := Encode(0, CmdDataFrame, data)

	want := []byte{
		FEND, 0x00,
		0x01, FESC, TFEND, 0x02, FESC, TFESC, 0x03,
		FEND,
	}
	assert.Equal(t, want, out)
}

func TestEncodePortCommandNibble(t *testing.T) {
	out := Encode(3, CmdSetHardware, nil)
	require.Len(t, out, 3)
	assert.Equal(t, byte(FEND), out[0])
	assert.Equal(t, byte(0x36), out[1]) // port 3 << 4 | cmd 6
	assert.Equal(t, byte(FEND), out[2])
}

func TestDecoder_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(0, 15).Draw(t, "port")
		data := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "data")

		wire := Encode(port, CmdDataFrame, data)
		d := NewDecoder()
		frames := d.Feed(wire)
		require.Len(t, frames, 1)
		assert.Equal(t, port, frames[0].Port)
		assert.Equal(t, CmdDataFrame, frames[0].Cmd)
		assert.Equal(t, data, frames[0].Data)
	})
}

func TestDecoder_SharedFendBetweenFrames(t *testing.T) {
	a := Encode(0, CmdDataFrame, []byte{1, 2, 3})
	b := Encode(0, CmdDataFrame, []byte{4, 5, 6})
	// Drop the gap between a's closing FEND and b's opening FEND so they
	// share a single delimiter, same as the shared-flag convention in HDLC.
	shared := append(append([]byte{}, a...), b[1:]...)

	d := NewDecoder()
	frames := d.Feed(shared)
	require.Len(t, frames, 2)
	assert.Equal(t, []byte{1, 2, 3}, frames[0].Data)
	assert.Equal(t, []byte{4, 5, 6}, frames[1].Data)
}

func TestDecoder_ChunkedFeed(t *testing.T) {
	wire := Encode(0, CmdDataFrame, []byte{0xAA, 0xBB, 0xCC, 0xDD})
	d := NewDecoder()
	var got []Frame
	for _, b := range wire {
		got = append(got, d.Feed([]byte{b})...)
	}
	require.Len(t, got, 1)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0xDD}, got[0].Data)
}

func TestDecoder_NonZeroCommandNotTreatedAsData(t *testing.T) {
	wire := Encode(0, CmdTXDelay, []byte{50})
	d := NewDecoder()
	frames := d.Feed(wire)
	require.Len(t, frames, 1)
	assert.Equal(t, CmdTXDelay, frames[0].Cmd)
}
