package quicker

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Connection ID length bounds. A connection ID is either absent
// (zero length) or 4 to 18 bytes long; the 4-bit wire encoding stores
// length-3 so that the nibble range 1..15 covers 4..18.
const (
	MinConnectionIDLen = 4
	MaxConnectionIDLen = 18
)

// ConnectionID is the opaque routing token chosen by a receiving
// endpoint. It references the buffer it was parsed from without
// copying.
type ConnectionID []byte

// NewConnectionID validates b as a connection ID. The slice is aliased,
// not copied.
func NewConnectionID(b []byte) (ConnectionID, error) {
	if len(b) != 0 && (len(b) < MinConnectionIDLen || len(b) > MaxConnectionIDLen) {
		return nil, fmt.Errorf("%w: connection ID of %d bytes", ErrInvalidFieldLength, len(b))
	}
	return ConnectionID(b), nil
}

func (c ConnectionID) Len() int {
	return len(c)
}

func (c ConnectionID) Equal(other ConnectionID) bool {
	return slices.Equal(c, other)
}

func (c ConnectionID) String() string {
	return fmt.Sprintf("%x", []byte(c))
}

// lenNibble returns the 4-bit length class of c: 0 for an absent ID,
// otherwise len-3.
func (c ConnectionID) lenNibble() byte {
	if len(c) == 0 {
		return 0
	}
	return byte(len(c) - 3)
}

// connIDLenFromNibble is the inverse of lenNibble: a stored nibble of 0
// means length 0, any other nibble n means length n+3.
func connIDLenFromNibble(nibble byte) int {
	if nibble == 0 {
		return 0
	}
	return int(nibble) + 3
}
