// Package fx25 implements the FX.25 forward-error-correction wrapper:
// it frames an AX.25 HDLC-flag-delimited (but not yet bit-stuffed) frame
// inside a Reed-Solomon-protected block identified by a 64-bit correlation
// tag.
package fx25

import (
	"encoding/binary"
	"errors"
)

// PadByte is the HDLC flag byte used to pad a frame up to a tag's data
// capacity; it is also the flag the outer HDLC layer uses for preamble and
// postamble. The block itself is never bit-stuffed or NRZI-framed here.
const PadByte = 0x7E

// TagLen is the size, in bytes, of the little-endian correlation tag that
// precedes every FX.25 block.
const TagLen = 8

var (
	// ErrFrameTooLarge is returned by Encode when the frame does not fit
	// in the largest supported tag (RS(255,239), 239 data bytes).
	ErrFrameTooLarge = errors.New("fx25: frame exceeds maximum supported size (239 bytes)")
	// ErrShortBlock is returned by Decode when the input is too small to
	// contain a tag and at least one check byte.
	ErrShortBlock = errors.New("fx25: block too short to contain tag and data")
	// ErrTagNotFound is returned by Decode when no correlation tag in the
	// table matches closely enough.
	ErrTagNotFound = errors.New("fx25: no correlation tag match")
	// ErrUncorrectable is returned by Decode when the Reed-Solomon block
	// has more errors than it can correct.
	ErrUncorrectable = errors.New("fx25: block has uncorrectable errors")
)

// Encode wraps frame (a complete AX.25 frame, FCS included, not bit-stuffed)
// in an FX.25 block: an 8-byte little-endian correlation tag, the frame
// padded with PadByte up to the chosen tag's data capacity, and the RS
// check bytes. It picks the smallest capacity tag that fits the frame.
// Frames over MaxData bytes return ErrFrameTooLarge.
func Encode(frame []byte) ([]byte, error) {
	if len(frame) > MaxData {
		return nil, ErrFrameTooLarge
	}
	tagNum := pickTag(len(frame))
	if tagNum < 0 {
		return nil, ErrFrameTooLarge
	}
	return EncodeWithTag(frame, tagNum)
}

// EncodeWithTag wraps frame using a caller-chosen tag number (TagMin..TagMax)
// rather than automatic selection.
func EncodeWithTag(frame []byte, tagNum int) ([]byte, error) {
	if tagNum < TagMin || tagNum > TagMax {
		return nil, errors.New("fx25: invalid tag number")
	}
	tag := tags[tagNum]
	if len(frame) > tag.kDataTx {
		return nil, ErrFrameTooLarge
	}

	data := make([]byte, tag.kDataTx)
	copy(data, frame)
	for i := len(frame); i < tag.kDataTx; i++ {
		data[i] = PadByte
	}

	// The RS data area is the transmitted data followed by zero fill up to
	// the algorithm's data size; the fill is never transmitted and the
	// receiver reconstructs it.
	rs := rsFor(tagNum)
	nroots := int(rs.nroots)
	rsDataLen := int(rs.nn) - nroots // e.g. 239 for RS(255,239)
	padded := make([]byte, rsDataLen)
	copy(padded, data)

	check := rs.encode(padded)

	out := make([]byte, 0, TagLen+tag.kDataTx+nroots)
	var tagBytes [TagLen]byte
	binary.LittleEndian.PutUint64(tagBytes[:], tag.value)
	out = append(out, tagBytes[:]...)
	out = append(out, data...)
	out = append(out, check...)
	return out, nil
}

// Decode locates a correlation tag at the start of block, corrects up to
// nroots/2 symbol errors in the RS block, and returns the padded data area
// (still containing any PadByte trailer, which the caller strips after
// finding the real frame length, typically via HDLC flag/FCS parsing) along
// with the number of symbol errors corrected.
func Decode(block []byte) (data []byte, corrected int, err error) {
	if len(block) < TagLen+1 {
		return nil, 0, ErrShortBlock
	}
	tagValue := binary.LittleEndian.Uint64(block[:TagLen])
	tagNum := findTagMatch(tagValue)
	if tagNum < 0 {
		return nil, 0, ErrTagNotFound
	}
	tag := tags[tagNum]
	rs := rsFor(tagNum)
	nroots := int(rs.nroots)
	rsDataLen := int(rs.nn) - nroots

	rest := block[TagLen:]
	if len(rest) < tag.kDataTx+nroots {
		return nil, 0, ErrShortBlock
	}

	// Reconstruct the full codeword: data, zero fill, check bytes.
	codeword := make([]byte, rs.nn)
	copy(codeword, rest[:tag.kDataTx])
	copy(codeword[rsDataLen:], rest[tag.kDataTx:tag.kDataTx+nroots])

	n, err := rs.decode(codeword)
	if err != nil {
		return nil, 0, ErrUncorrectable
	}

	return append([]byte{}, codeword[:tag.kDataTx]...), n, nil
}
