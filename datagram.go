package quicker

// HeaderOffset pairs a parsed header with the absolute offset, within
// the datagram it was parsed from, of the first byte of its payload.
type HeaderOffset struct {
	Header Header
	Offset int
}

// SplitDatagram enumerates the coalesced packets in one UDP datagram.
// Packets follow each other back-to-back: each long header declares a
// payload length bounding its packet, while a short header (and a
// version-negotiation packet) carries no length, so it is terminal and
// claims the rest of the datagram.
//
// On a parse failure past the first packet, the successfully split
// prefix is returned alongside the error so the caller can choose
// between dropping the datagram and dropping only its unparsed tail.
func (hp *HeaderParser) SplitDatagram(p []byte) ([]HeaderOffset, error) {
	hdr, offset, err := hp.Parse(p, 0)
	if err != nil {
		return nil, err
	}
	packets := []HeaderOffset{{Header: hdr, Offset: offset}}

	consumed := 0
	for {
		lh, ok := hdr.(*LongHeader)
		if !ok || lh.Negotiation {
			return packets, nil
		}

		// uint64 arithmetic: a hostile payload length must not overflow
		// the cumulative offset
		headerSize := uint64(offset - consumed)
		need := headerSize + lh.PayloadLength
		if need >= uint64(len(p)-consumed) {
			return packets, nil
		}
		consumed += int(need)

		hdr, offset, err = hp.Parse(p, consumed)
		if err != nil {
			return packets, err
		}
		packets = append(packets, HeaderOffset{Header: hdr, Offset: offset})
	}
}

// SplitDatagram enumerates the coalesced packets in one UDP datagram
// with the default parser.
func SplitDatagram(p []byte) ([]HeaderOffset, error) {
	return defaultHeaderParser.SplitDatagram(p)
}
