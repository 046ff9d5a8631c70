package quicker

import "fmt"

// PacketNumber is the per-packet monotonic sequence value. Its wire
// width is not self-describing: long headers always carry 4 bytes,
// short headers 1, 2 or 4 bytes selected by the type field.
type PacketNumber uint64

// PacketNumberType is the 2-bit short header type selector choosing the
// packet number's octet width.
type PacketNumberType byte

const (
	PacketNumberOneOctet  PacketNumberType = 0x0
	PacketNumberTwoOctet  PacketNumberType = 0x1
	PacketNumberFourOctet PacketNumberType = 0x2
)

// Width returns the octet width selected by t. The fourth selector
// value (0x3) is unmapped and fails with ErrInvalidPacketNumberWidth.
func (t PacketNumberType) Width() (int, error) {
	switch t {
	case PacketNumberOneOctet:
		return 1, nil
	case PacketNumberTwoOctet:
		return 2, nil
	case PacketNumberFourOctet:
		return 4, nil
	}
	return 0, fmt.Errorf("%w: type selector 0x%x", ErrInvalidPacketNumberWidth, byte(t))
}

// readPacketNumber reads a big-endian packet number of the given octet
// width from the start of b.
func readPacketNumber(b []byte, width int) (PacketNumber, error) {
	if len(b) < width {
		return 0, fmt.Errorf("%w: %d-byte packet number in %d bytes", ErrTruncatedInput, width, len(b))
	}
	var pn PacketNumber
	for i := 0; i < width; i++ {
		pn = pn<<8 | PacketNumber(b[i])
	}
	return pn, nil
}

// appendPacketNumber appends the big-endian encoding of pn at the given
// octet width, truncating high bits that do not fit.
func appendPacketNumber(dst []byte, pn PacketNumber, width int) []byte {
	for i := width - 1; i >= 0; i-- {
		dst = append(dst, byte(pn>>(8*i)))
	}
	return dst
}

// Less reports whether p was sent before other, used for ordering
// acknowledged ranges.
func (p PacketNumber) Less(other PacketNumber) bool {
	return p < other
}

// Delta returns the unsigned distance between p and other.
func (p PacketNumber) Delta(other PacketNumber) uint64 {
	if p < other {
		return uint64(other - p)
	}
	return uint64(p - other)
}
