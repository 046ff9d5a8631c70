package quicker

import (
	"encoding/binary"
	"fmt"
)

// Version is a 4-byte, big-endian protocol version.
type Version uint32

// VersionNegotiation is the all-zero wire pattern indicating a Version
// Negotiation packet.
const VersionNegotiation Version = 0

// ParseVersion reads a version from exactly 4 bytes.
func ParseVersion(b []byte) (Version, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("%w: version of %d bytes", ErrInvalidFieldLength, len(b))
	}
	return Version(binary.BigEndian.Uint32(b)), nil
}

// Bytes returns the 4-byte big-endian encoding of v.
func (v Version) Bytes() []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return b[:]
}

func (v Version) String() string {
	return fmt.Sprintf("0x%08x", uint32(v))
}

// VersionValidator decides, once per long header, whether a version is
// the version-negotiation indicator. Long headers carrying such a
// version have neither a payload length nor a packet number.
type VersionValidator interface {
	IsVersionNegotiation(Version) bool
}

// StandardVersionValidator recognizes the all-zero negotiation version.
type StandardVersionValidator struct{}

func (StandardVersionValidator) IsVersionNegotiation(v Version) bool {
	return v == VersionNegotiation
}
