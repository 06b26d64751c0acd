package ax25

import (
	"fmt"
	"strconv"
	"strings"
)

// AddressLen is the fixed encoded size of an AX.25 address field.
const AddressLen = 7

// Address is one AX.25 address field: a callsign, SSID, and the two flag
// bits carried in byte 7 (the digipeated/"heard" mark and the reserved
// command/response bit is not modeled separately — APRS only uses UI
// frames, so this encoding does not distinguish C/R).
type Address struct {
	Callsign string // up to 6 chars, [A-Z0-9]; tolerant decode preserves other bytes verbatim
	SSID     int    // 0-15
	Mark     bool   // H-bit: digipeated / "heard" marker
}

// String renders the address as SRC-form text, e.g. "WIDE1-1" or "N0CALL"
// (SSID 0 is omitted), with a trailing "*" if Mark is set.
func (a Address) String() string {
	s := a.Callsign
	if a.SSID != 0 {
		s += "-" + strconv.Itoa(a.SSID)
	}
	if a.Mark {
		s += "*"
	}
	return s
}

// ParseAddress parses SRC-form text such as "WIDE1-1" or "N0CALL-10*".
func ParseAddress(s string) (Address, error) {
	mark := strings.HasSuffix(s, "*")
	if mark {
		s = s[:len(s)-1]
	}
	call, ssidStr, hasSSID := strings.Cut(s, "-")
	a := Address{Callsign: strings.ToUpper(call), Mark: mark}
	if hasSSID {
		ssid, err := strconv.Atoi(ssidStr)
		if err != nil || ssid < 0 || ssid > 15 {
			return Address{}, fmt.Errorf("ax25: invalid SSID %q in address %q", ssidStr, s)
		}
		a.SSID = ssid
	}
	if len(a.Callsign) == 0 || len(a.Callsign) > 6 {
		return Address{}, fmt.Errorf("ax25: invalid callsign length %q", a.Callsign)
	}
	return a, nil
}

// Valid reports whether the callsign consists only of upper-case
// alphanumerics, as required for a conformant (non-tolerant) address.
func (a Address) Valid() bool {
	if len(a.Callsign) == 0 || len(a.Callsign) > 6 {
		return false
	}
	for _, c := range a.Callsign {
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return a.SSID >= 0 && a.SSID <= 15
}

// Encode writes the 7-byte encoded form of a into the returned array.
// last indicates this is the final address in the header (dest/src/path
// sequence), which sets the end-of-address bit.
func (a Address) Encode(last bool) [AddressLen]byte {
	var out [AddressLen]byte
	callsign := a.Callsign
	if len(callsign) > 6 {
		callsign = callsign[:6]
	}
	for i := 0; i < 6; i++ {
		var c byte = ' '
		if i < len(callsign) {
			c = callsign[i]
		}
		out[i] = c << 1
	}
	out[6] = 0x60 | byte(a.SSID<<1)
	if a.Mark {
		out[6] |= 0x80
	}
	if last {
		out[6] |= 0x01
	}
	return out
}

// DecodeAddress decodes the first 7 bytes of b into an Address. It reports
// the end-of-address bit separately since callers scanning a header need
// it to know when to stop. Decoding is tolerant: non-alphanumeric decoded
// characters are preserved verbatim rather than rejected; use Valid to
// check conformance.
func DecodeAddress(b []byte) (addr Address, end bool, err error) {
	if len(b) < AddressLen {
		return Address{}, false, fmt.Errorf("ax25: short address, need %d bytes, got %d", AddressLen, len(b))
	}
	var call [6]byte
	for i := 0; i < 6; i++ {
		call[i] = b[i] >> 1
	}
	callsign := strings.TrimRight(string(call[:]), " ")
	b7 := b[6]
	addr = Address{
		Callsign: callsign,
		SSID:     int(b7>>1) & 0x0F,
		Mark:     b7&0x80 != 0,
	}
	end = b7&0x01 != 0
	return addr, end, nil
}
