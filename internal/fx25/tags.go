package fx25

// SPDX-FileCopyrightText: 2007 Jim McGuire KB3MPL
//
// Correlation tag table and RS(n,k) parameter set, from the FX.25
// draft specification (http://www.stensat.org/docs/FX-25_01_06.pdf).

import "math/bits"

// MaxData is the largest AX.25 frame (including bit-stuffing room) this
// codec will wrap: RS(255,239).
const MaxData = 239

// MaxCheck is the largest number of RS check bytes supported: RS(255,191).
const MaxCheck = 64

// BlockSize is the fixed RS block size for 8-bit symbols.
const BlockSize = 255

// TagMin and TagMax bound the active correlation-tag table indices: the
// closed set of nine (k, n-k) pairs this codec supports. Tag 0 and tags
// 0x0A-0x0F are reserved/undefined.
const (
	TagMin = 0x01
	TagMax = 0x09
)

// closeEnough is the bit-error tolerance when matching a received
// correlation tag against the table (the FX.25 format does not specify
// bit-error tolerance for tag matching; 8 is the conventional choice).
const closeEnough = 8

type tagEntry struct {
	value      uint64 // transmitted little-endian, LSB first
	nBlockTx   int    // bytes in the transmitted block (tag's own n)
	kDataTx    int    // bytes in the transmitted data part (tag's own k)
	nBlockRS   int    // RS algorithm's block size (always 255 here)
	kDataRS    int    // RS algorithm's data size
	tableIndex int    // index into rsTables, or -1 if unused
}

// tags holds the codec's closed set of nine (k, n-k) pairs: three data
// sizes under each of three check-byte strengths (16/32/64), plus the
// reserved/undefined slots that round the table out to 16 entries.
var tags = [16]tagEntry{
	{0x566ED2717946107E, 0, 0, 0, 0, -1}, // Tag_00, reserved

	{0xB74DB7DF8A532F3E, 255, 239, 255, 239, 0}, // Tag_01 RS(255,239)
	{0x26FF60A600CC8FDE, 144, 128, 255, 239, 0}, // Tag_02 RS(144,128)
	{0xC7DC0508F3D9B09E, 80, 64, 255, 239, 0},   // Tag_03 RS(80,64)

	{0x6E260B1AC5835FAE, 223, 191, 255, 223, 1}, // Tag_04 RS(223,191)
	{0xFF94DC634F1CFF4E, 160, 128, 255, 223, 1}, // Tag_05 RS(160,128)
	{0x1EB7B9CDBC09C00E, 96, 64, 255, 223, 1},   // Tag_06 RS(96,64)

	{0x3ADB0C13DEAE2836, 255, 191, 255, 191, 2}, // Tag_07 RS(255,191)
	{0xAB69DB6A543188D6, 192, 128, 255, 191, 2}, // Tag_08 RS(192,128)
	{0x4A4ABEC4A724B796, 128, 64, 255, 191, 2},  // Tag_09 RS(128,64)

	{0x8F056EB4369660EE, 0, 0, 0, 0, -1}, // Tag_0A, reserved (RS(48,32) in the wider table; outside this codec's closed set)
	{0xDBF869BD2DBB1776, 0, 0, 0, 0, -1}, // Tag_0B, reserved (RS(64,32) in the wider table; outside this codec's closed set)
	{0x0293D578626B67E6, 0, 0, 0, 0, -1}, // Tag_0C, undefined
	{0xE3B0B0D6917E58A6, 0, 0, 0, 0, -1}, // Tag_0D, undefined
	{0x720267AF1BE1F846, 0, 0, 0, 0, -1}, // Tag_0E, undefined
	{0x93210201E8F4C706, 0, 0, 0, 0, -1}, // Tag_0F, undefined
}

const rsTableCount = 3

var rsTables = [rsTableCount]struct {
	symsize, gfpoly, fcr, prim, nroots uint
	codec                              *rsCodec
}{
	{8, 0x11d, 1, 1, 16, nil}, // RS(255,239)
	{8, 0x11d, 1, 1, 32, nil}, // RS(255,223)
	{8, 0x11d, 1, 1, 64, nil}, // RS(255,191)
}

func init() {
	for i := range rsTables {
		t := &rsTables[i]
		t.codec = newRSCodec(t.symsize, t.gfpoly, t.fcr, t.prim, t.nroots)
		if t.codec == nil {
			panic("fx25: reed-solomon table construction failed")
		}
	}
}

// findTagMatch returns the tag index whose value is within closeEnough bit
// errors of t, or -1 if no tag matches closely enough.
func findTagMatch(t uint64) int {
	for c := TagMin; c <= TagMax; c++ {
		if bits.OnesCount64(t^tags[c].value) <= closeEnough {
			return c
		}
	}
	return -1
}

func rsFor(tagNum int) *rsCodec {
	return rsTables[tags[tagNum].tableIndex].codec
}

// pickTag chooses the smallest (fewest transmitted bytes, nBlockTx) tag
// whose data capacity covers dataLen bytes. The preference order below is
// the full nine-tag closed set sorted by ascending block size.
func pickTag(dataLen int) int {
	preferred := [9]int{0x03, 0x06, 0x09, 0x02, 0x05, 0x08, 0x04, 0x01, 0x07}
	for _, tagNum := range preferred {
		if dataLen <= tags[tagNum].kDataTx {
			return tagNum
		}
	}
	return -1
}
