package ax25

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// S1 from the literal end-to-end scenarios: N0CALL-10>APZ001,WIDE1-1,WIDE2-2:Hello, APRS!
func TestEncodeFrame_S1(t *testing.T) {
	f, err := ParseFrame("N0CALL-10>APZ001,WIDE1-1,WIDE2-2:Hello, APRS!")
	require.NoError(t, err)

	out, err := f.Encode()
	require.NoError(t, err)

	assert.Equal(t, 44, len(out))
	assert.Equal(t, []byte{0x82, 0xA0, 0xB4, 0x60, 0x60, 0x62, 0x60}, out[:7])
	assert.Equal(t, []byte{0x50, 0x7B}, out[len(out)-2:])
}

// S2: N0CALL-10>APZ001:Hello, APRS! (no path)
func TestEncodeFrame_S2(t *testing.T) {
	f, err := ParseFrame("N0CALL-10>APZ001:Hello, APRS!")
	require.NoError(t, err)

	out, err := f.Encode()
	require.NoError(t, err)

	assert.Equal(t, 30, len(out))
	assert.Equal(t, byte(0x75), out[13], "source byte 7 has the end-of-address bit set")
	assert.Equal(t, []byte{0xAE, 0xE6}, out[len(out)-2:])
}

func TestDigipeatedMarkChangesFCS(t *testing.T) {
	f, err := ParseFrame("N0CALL-10>APZ001,WIDE1-1,WIDE2-2:Hello, APRS!")
	require.NoError(t, err)
	f.Path[1].Mark = true

	out, err := f.Encode()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x25, 0x44}, out[len(out)-2:])
}

func TestFrameRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		callGen := rapid.StringMatching(`[A-Z0-9]{1,6}`)
		addrGen := rapid.Custom(func(t *rapid.T) Address {
			return Address{
				Callsign: callGen.Draw(t, "call"),
				SSID:     rapid.IntRange(0, 15).Draw(t, "ssid"),
				Mark:     rapid.Bool().Draw(t, "mark"),
			}
		})
		f := Frame{
			Destination: addrGen.Draw(t, "dest"),
			Source:      addrGen.Draw(t, "source"),
			Path:        rapid.SliceOfN(addrGen, 0, MaxPathAddresses).Draw(t, "path"),
			Info:        rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "info"),
		}

		encoded, err := f.Encode()
		require.NoError(t, err)

		decoded, err := DecodeFrame(encoded)
		require.NoError(t, err)

		assert.Equal(t, f.Destination, decoded.Destination)
		assert.Equal(t, f.Source, decoded.Source)
		assert.Equal(t, f.Path, decoded.Path)
		assert.Equal(t, f.Info, decoded.Info)
	})
}

func TestDecodeFrameNoFCS(t *testing.T) {
	f, err := ParseFrame("N0CALL-10>APZ001:Hello, APRS!")
	require.NoError(t, err)
	encoded, err := f.Encode()
	require.NoError(t, err)

	decoded, err := DecodeFrameNoFCS(encoded[:len(encoded)-2])
	require.NoError(t, err)
	assert.Equal(t, f.Info, decoded.Info)
}

func TestDecodeFrameRejectsBadFCS(t *testing.T) {
	f, err := ParseFrame("N0CALL-10>APZ001:Hello, APRS!")
	require.NoError(t, err)
	encoded, err := f.Encode()
	require.NoError(t, err)
	encoded[len(encoded)-1] ^= 0xFF

	_, err = DecodeFrame(encoded)
	assert.ErrorIs(t, err, ErrBadFCS)
}
