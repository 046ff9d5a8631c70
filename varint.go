package quicker

import (
	"fmt"
	"io"
)

// MaxVarInt is the largest value representable by the variable-length
// integer encoding: 62 usable bits.
const MaxVarInt = uint64(1)<<62 - 1

// ParseVarInt unpacks the variable-length integer at the start of b.
// The top 2 bits of the first byte select the encoded length (1, 2, 4
// or 8 bytes); the remaining bits, big-endian, are the value.
// It returns the decoded value and the number of bytes consumed.
// For example:
//
//	0x0a -> 0xa, 1
//	0x80 0x10 0x00 0x00 -> 0x100000, 4
func ParseVarInt(b []byte) (val uint64, n int, err error) {
	if len(b) == 0 {
		return 0, 0, fmt.Errorf("%w: empty buffer", ErrTruncatedInput)
	}

	// check MSBs of the first byte
	switch b[0] & 0xc0 { // 0xc0 = 0b11000000
	case 0x00:
		n = 1
	case 0x40:
		n = 2
	case 0x80:
		n = 4
	case 0xc0:
		n = 8
	}

	if len(b) < n {
		return 0, 0, fmt.Errorf("%w: %d-byte variable-length integer in %d bytes", ErrTruncatedInput, n, len(b))
	}

	val = uint64(b[0] & 0x3f) // 0x3f = 0b00111111, clear the length selector
	for i := 1; i < n; i++ {
		val <<= 8
		val |= uint64(b[i])
	}

	return val, n, nil
}

// ReadNextVarInt unpacks the next variable-length integer from the given
// io.Reader. It returns the decoded value and the number of bytes read.
func ReadNextVarInt(r io.Reader) (val uint64, n int, err error) {
	var encodedBytes [8]byte
	if _, err = io.ReadFull(r, encodedBytes[:1]); err != nil {
		return 0, 0, err
	}

	switch encodedBytes[0] & 0xc0 {
	case 0x00:
		n = 1
	case 0x40:
		n = 2
	case 0x80:
		n = 4
	case 0xc0:
		n = 8
	}

	if n > 1 {
		if _, err = io.ReadFull(r, encodedBytes[1:n]); err != nil {
			return 0, 0, err
		}
	}

	val, _, err = ParseVarInt(encodedBytes[:n])
	return val, n, err
}

// VarIntLen returns the number of bytes the canonical (minimal)
// encoding of v occupies. It does not validate the 62-bit range:
// callers sizing buffers for values they already hold get 8.
func VarIntLen(v uint64) int {
	switch {
	case v <= 0x3f:
		return 1
	case v <= 0x3fff:
		return 2
	case v <= 0x3fffffff:
		return 4
	default:
		return 8
	}
}

// AppendVarInt appends the canonical encoding of v to dst.
// Values above MaxVarInt fail with ErrValueTooLarge.
func AppendVarInt(dst []byte, v uint64) ([]byte, error) {
	if v > MaxVarInt {
		return dst, fmt.Errorf("%w: 0x%x", ErrValueTooLarge, v)
	}

	n := VarIntLen(v)
	selector := byte(0x00)
	switch n {
	case 2:
		selector = 0x40
	case 4:
		selector = 0x80
	case 8:
		selector = 0xc0
	}

	dst = append(dst, selector|byte(v>>(8*(n-1))))
	for i := n - 2; i >= 0; i-- {
		dst = append(dst, byte(v>>(8*i)))
	}
	return dst, nil
}

// EncodeVarInt returns the canonical encoding of v.
func EncodeVarInt(v uint64) ([]byte, error) {
	return AppendVarInt(make([]byte, 0, VarIntLen(v)), v)
}
