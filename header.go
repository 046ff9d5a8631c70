package quicker

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"
)

// Header is the tagged union over the two packet header shapes. Only
// *LongHeader and *ShortHeader implement it; consumers match with a
// type switch over those two cases.
type Header interface {
	// DestinationConnectionID returns the connection ID the packet is
	// routed by.
	DestinationConnectionID() ConnectionID

	// PacketNumber returns the decoded packet number. For a long header
	// in version-negotiation shape it is zero and carries no meaning.
	PacketNumber() PacketNumber

	// Raw returns the header's own wire bytes, [start, payload-start),
	// aliasing the parsed buffer. The packet-protection layer uses this
	// span as associated data.
	Raw() []byte

	isHeader()
}

// LongHeader is the pre-handshake header shape: explicit version, both
// connection IDs, and (outside version negotiation) a payload length
// and a 4-byte packet number.
type LongHeader struct {
	Subtype       byte // 7-bit packet type, wire MSB always set
	Version       Version
	DestConnID    ConnectionID
	SrcConnID     ConnectionID
	Negotiation   bool   // version-negotiation shape: no payload length, no packet number
	PayloadLength uint64 // bytes of payload following the header
	PktNumber     PacketNumber

	raw []byte
}

func (h *LongHeader) DestinationConnectionID() ConnectionID { return h.DestConnID }
func (h *LongHeader) PacketNumber() PacketNumber            { return h.PktNumber }
func (h *LongHeader) Raw() []byte                           { return h.raw }
func (h *LongHeader) isHeader()                             {}

// ShortHeader is the post-handshake header shape. The destination
// connection ID is prefixed with an explicit 1-byte length: the wire
// format does not self-describe the ID length, so this only
// interoperates with peers echoing IDs issued under the same
// convention.
type ShortHeader struct {
	KeyPhase      bool
	Spin          bool
	ReservedBits  byte // bits 5,4 of the first byte, not validated unless strict
	Demux         bool // bit 3, expected clear
	PktNumberType PacketNumberType
	DestConnID    ConnectionID
	PktNumber     PacketNumber

	raw []byte
}

func (h *ShortHeader) DestinationConnectionID() ConnectionID { return h.DestConnID }
func (h *ShortHeader) PacketNumber() PacketNumber            { return h.PktNumber }
func (h *ShortHeader) Raw() []byte                           { return h.raw }
func (h *ShortHeader) isHeader()                             {}

// HeaderParser parses packet headers out of datagram buffers. The zero
// value recognizes the all-zero negotiation version and tolerates
// non-zero reserved bits.
type HeaderParser struct {
	// Versions decides whether a long header is in version-negotiation
	// shape. Defaults to StandardVersionValidator.
	Versions VersionValidator

	// StrictReservedBits rejects short headers with non-zero reserved
	// or demux bits instead of tolerating them. Whether a violation is
	// a protocol violation or forward compatibility is unsettled, so
	// both behaviors stay available.
	StrictReservedBits bool
}

func (hp *HeaderParser) versions() VersionValidator {
	if hp.Versions != nil {
		return hp.Versions
	}
	return StandardVersionValidator{}
}

// Parse decodes one packet header starting at offset and returns it
// together with the offset of the first payload byte. The returned
// header aliases p: callers must keep the buffer immutable while the
// header is live. On error, no header is returned and p is untouched.
func (hp *HeaderParser) Parse(p []byte, offset int) (Header, int, error) {
	if offset >= len(p) {
		return nil, 0, fmt.Errorf("%w: no header byte at offset %d", ErrTruncatedInput, offset)
	}

	first := p[offset]
	if first&0x80 != 0 {
		return hp.parseLongHeader(p, offset, first)
	}
	return hp.parseShortHeader(p, offset, first)
}

// ParseHeader decodes one packet header with the default parser.
func ParseHeader(p []byte, offset int) (Header, int, error) {
	return defaultHeaderParser.Parse(p, offset)
}

var defaultHeaderParser = &HeaderParser{}

func (hp *HeaderParser) parseLongHeader(p []byte, offset int, first byte) (Header, int, error) {
	hdr := &LongHeader{Subtype: first & 0x7f}

	s := cryptobyte.String(p[offset+1:])

	var versionBytes []byte
	if !s.ReadBytes(&versionBytes, 4) {
		return nil, 0, fmt.Errorf("%w: long header version", ErrTruncatedInput)
	}
	version, err := ParseVersion(versionBytes)
	if err != nil {
		return nil, 0, err
	}
	hdr.Version = version

	// one byte of connection ID length classes: high nibble destination,
	// low nibble source
	var cidLens uint8
	if !s.ReadUint8(&cidLens) {
		return nil, 0, fmt.Errorf("%w: connection ID lengths", ErrTruncatedInput)
	}

	var dcid, scid []byte
	if !s.ReadBytes(&dcid, connIDLenFromNibble(cidLens>>4)) {
		return nil, 0, fmt.Errorf("%w: destination connection ID", ErrTruncatedInput)
	}
	if !s.ReadBytes(&scid, connIDLenFromNibble(cidLens&0x0f)) {
		return nil, 0, fmt.Errorf("%w: source connection ID", ErrTruncatedInput)
	}
	if hdr.DestConnID, err = NewConnectionID(dcid); err != nil {
		return nil, 0, err
	}
	if hdr.SrcConnID, err = NewConnectionID(scid); err != nil {
		return nil, 0, err
	}

	if hp.versions().IsVersionNegotiation(hdr.Version) {
		// the remainder of the packet is the supported-versions list,
		// opaque at this layer
		hdr.Negotiation = true
	} else {
		payloadLength, n, err := ParseVarInt(s)
		if err != nil {
			return nil, 0, err
		}
		s.Skip(n)
		hdr.PayloadLength = payloadLength

		var pnBytes []byte
		if !s.ReadBytes(&pnBytes, 4) {
			return nil, 0, fmt.Errorf("%w: long header packet number", ErrTruncatedInput)
		}
		if hdr.PktNumber, err = readPacketNumber(pnBytes, 4); err != nil {
			return nil, 0, err
		}
	}

	end := len(p) - len(s)
	hdr.raw = p[offset:end]
	return hdr, end, nil
}

func (hp *HeaderParser) parseShortHeader(p []byte, offset int, first byte) (Header, int, error) {
	hdr := &ShortHeader{
		KeyPhase:      first&0x40 != 0,
		ReservedBits:  (first >> 4) & 0x03,
		Demux:         first&0x08 != 0,
		Spin:          first&0x04 != 0,
		PktNumberType: PacketNumberType(first & 0x03),
	}

	if hp.StrictReservedBits && (hdr.ReservedBits != 0 || hdr.Demux) {
		return nil, 0, fmt.Errorf("%w: first byte 0x%02x", ErrReservedBitsSet, first)
	}

	width, err := hdr.PktNumberType.Width()
	if err != nil {
		return nil, 0, err
	}

	s := cryptobyte.String(p[offset+1:])

	var dcid cryptobyte.String
	if !s.ReadUint8LengthPrefixed(&dcid) {
		return nil, 0, fmt.Errorf("%w: destination connection ID", ErrTruncatedInput)
	}
	if hdr.DestConnID, err = NewConnectionID(dcid); err != nil {
		return nil, 0, err
	}

	var pnBytes []byte
	if !s.ReadBytes(&pnBytes, width) {
		return nil, 0, fmt.Errorf("%w: short header packet number", ErrTruncatedInput)
	}
	if hdr.PktNumber, err = readPacketNumber(pnBytes, width); err != nil {
		return nil, 0, err
	}

	end := len(p) - len(s)
	hdr.raw = p[offset:end]
	return hdr, end, nil
}

// Append serializes h onto dst. Field values are re-encoded from
// scratch; any raw span captured at parse time is not reused.
func (h *LongHeader) Append(dst []byte) ([]byte, error) {
	if _, err := NewConnectionID(h.DestConnID); err != nil {
		return dst, err
	}
	if _, err := NewConnectionID(h.SrcConnID); err != nil {
		return dst, err
	}

	var b cryptobyte.Builder
	b.AddUint8(0x80 | h.Subtype&0x7f)
	b.AddUint32(uint32(h.Version))
	b.AddUint8(h.DestConnID.lenNibble()<<4 | h.SrcConnID.lenNibble())
	b.AddBytes(h.DestConnID)
	b.AddBytes(h.SrcConnID)

	if !h.Negotiation {
		payloadLength, err := EncodeVarInt(h.PayloadLength)
		if err != nil {
			return dst, err
		}
		b.AddBytes(payloadLength)
		b.AddBytes(appendPacketNumber(nil, h.PktNumber, 4))
	}

	out, err := b.Bytes()
	if err != nil {
		return dst, err
	}
	return append(dst, out...), nil
}

// Bytes serializes h into a fresh buffer.
func (h *LongHeader) Bytes() ([]byte, error) {
	return h.Append(nil)
}

// Append serializes h onto dst.
func (h *ShortHeader) Append(dst []byte) ([]byte, error) {
	if _, err := NewConnectionID(h.DestConnID); err != nil {
		return dst, err
	}
	width, err := h.PktNumberType.Width()
	if err != nil {
		return dst, err
	}

	first := byte(h.PktNumberType) & 0x03
	if h.KeyPhase {
		first |= 0x40
	}
	first |= (h.ReservedBits & 0x03) << 4
	if h.Demux {
		first |= 0x08
	}
	if h.Spin {
		first |= 0x04
	}

	var b cryptobyte.Builder
	b.AddUint8(first)
	b.AddUint8LengthPrefixed(func(c *cryptobyte.Builder) {
		c.AddBytes(h.DestConnID)
	})
	b.AddBytes(appendPacketNumber(nil, h.PktNumber, width))

	out, err := b.Bytes()
	if err != nil {
		return dst, err
	}
	return append(dst, out...), nil
}

// Bytes serializes h into a fresh buffer.
func (h *ShortHeader) Bytes() ([]byte, error) {
	return h.Append(nil)
}
