package quicker

import (
	"errors"
	"io"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"go.uber.org/zap"
)

// DatagramHandler receives every datagram the sniffer split
// successfully. The datagram slice is owned by the handler; the headers
// alias it.
type DatagramHandler func(src, dst *net.UDPAddr, datagram []byte, packets []HeaderOffset)

// Sniffer reads UDP datagrams off raw IP sockets, splits the coalesced
// packets out of each, and hands the results to a handler. It is meant
// for wire observation next to a server, not as a transport itself.
type Sniffer struct {
	Port    uint16         // destination port filter, 0 matches all
	Parser  *HeaderParser  // defaults to the package default parser
	Handler DatagramHandler

	logger       *zap.Logger
	udpListener  *net.IPConn
	udp6Listener *net.IPConn
}

// NewSniffer returns an unstarted sniffer. A nil logger disables
// logging.
func NewSniffer(logger *zap.Logger, port uint16, handler DatagramHandler) *Sniffer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sniffer{
		Port:    port,
		Handler: handler,
		logger:  logger,
	}
}

// Start opens the ip4:udp and ip6:udp listeners and begins reading.
func (sn *Sniffer) Start() error {
	if sn.logger == nil {
		sn.logger = zap.NewNop()
	}

	var err error
	sn.udpListener, err = net.ListenIP("ip4:udp", &net.IPAddr{})
	if err != nil {
		return err
	}
	go sn.readLoop(sn.udpListener)

	sn.udp6Listener, err = net.ListenIP("ip6:udp", &net.IPAddr{})
	if err != nil {
		sn.udpListener.Close() // skipcq: GSC-G104
		return err
	}
	go sn.readLoop(sn.udp6Listener)

	sn.logger.Info("sniffer started")
	return nil
}

// Close shuts both listeners down; the read loops exit on the next read.
func (sn *Sniffer) Close() error {
	var firstErr error
	for _, l := range []*net.IPConn{sn.udpListener, sn.udp6Listener} {
		if l == nil {
			continue
		}
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (sn *Sniffer) parser() *HeaderParser {
	if sn.Parser != nil {
		return sn.Parser
	}
	return defaultHeaderParser
}

func (sn *Sniffer) readLoop(l *net.IPConn) {
	for {
		var buf [2048]byte
		n, ipAddr, err := l.ReadFromIP(buf[:])
		if err != nil {
			sn.logger.Error("UDP read error", zap.Error(err))
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
				return // return when listener is closed
			}
			continue
		}

		udpPkt, err := parseUDPPacket(buf[:n])
		if err != nil {
			sn.logger.Error("Failed to parse UDP packet", zap.Error(err))
			continue
		}
		if sn.Port != 0 && udpPkt.DstPort != layers.UDPPort(sn.Port) {
			continue
		}

		// the read buffer is reused, and split headers alias their
		// datagram, so each delivered datagram gets its own copy
		datagram := make([]byte, len(udpPkt.Payload))
		copy(datagram, udpPkt.Payload)

		SnifferDatagramsTotal.Inc()
		packets, err := sn.parser().SplitDatagram(datagram)
		if err != nil {
			SnifferParseErrorsTotal.WithLabelValues(errorKind(err)).Inc()
			sn.logger.Debug("Failed to split datagram",
				zap.String("src", ipAddr.String()),
				zap.Int("len", len(datagram)),
				zap.Error(err))
			if len(packets) == 0 {
				continue // nothing parseable, drop the datagram
			}
			// keep the parsed prefix, drop the unparsed tail
		}
		SnifferPacketsTotal.Add(float64(len(packets)))
		SnifferCoalescedPackets.Observe(float64(len(packets)))

		if sn.Handler != nil {
			src := &net.UDPAddr{IP: ipAddr.IP, Port: int(udpPkt.SrcPort)}
			dst := &net.UDPAddr{Port: int(udpPkt.DstPort)}
			sn.Handler(src, dst, datagram, packets)
		}
	}
}

// parseUDPPacket decodes the UDP layer of a raw IP payload.
func parseUDPPacket(buf []byte) (*layers.UDP, error) {
	var udp *layers.UDP = &layers.UDP{}
	err := udp.DecodeFromBytes(buf, gopacket.NilDecodeFeedback)
	if err != nil {
		return nil, err
	}
	return udp, nil
}
