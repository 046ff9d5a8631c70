package quicker

import "errors"

var (
	// ErrTruncatedInput is returned when a fixed-size or length-prefixed
	// field claims more bytes than remain in the buffer.
	ErrTruncatedInput = errors.New("truncated input")

	// ErrInvalidFieldLength is returned when a wire value is constructed
	// from a byte length outside its defined domain.
	ErrInvalidFieldLength = errors.New("invalid field length")

	// ErrValueTooLarge is returned when a value exceeds the 62-bit range
	// representable by a variable-length integer.
	ErrValueTooLarge = errors.New("value too large for variable-length integer")

	// ErrInvalidPacketNumberWidth is returned when a short header carries
	// a packet number type selector with no mapped octet width.
	ErrInvalidPacketNumberWidth = errors.New("invalid packet number width")

	// ErrReservedBitsSet is returned, only when strict parsing is enabled,
	// for short headers with non-zero reserved or demux bits.
	ErrReservedBitsSet = errors.New("reserved bits set in short header")

	// ErrUnsupportedHeaderShape is reserved for header forms beyond the
	// long/short variants.
	ErrUnsupportedHeaderShape = errors.New("unsupported header shape")
)
