package quicker

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SnifferDatagramsTotal counts UDP datagrams the sniffer inspected
	SnifferDatagramsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quicker_sniffer_datagrams_total",
			Help: "Total UDP datagrams inspected by the sniffer",
		},
	)

	// SnifferPacketsTotal counts packets split out of inspected datagrams
	SnifferPacketsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quicker_sniffer_packets_total",
			Help: "Total packets split out of inspected datagrams",
		},
	)

	// SnifferParseErrorsTotal counts parse failures by error kind
	SnifferParseErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quicker_sniffer_parse_errors_total",
			Help: "Total header parse failures by error kind",
		},
		[]string{"kind"},
	)

	// SnifferCoalescedPackets observes how many packets each datagram carried
	SnifferCoalescedPackets = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quicker_sniffer_coalesced_packets",
			Help:    "Packets carried per datagram",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)
)

// errorKind maps a codec failure to its metrics label.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrTruncatedInput):
		return "truncated_input"
	case errors.Is(err, ErrInvalidFieldLength):
		return "invalid_field_length"
	case errors.Is(err, ErrValueTooLarge):
		return "value_too_large"
	case errors.Is(err, ErrInvalidPacketNumberWidth):
		return "invalid_packet_number_width"
	case errors.Is(err, ErrReservedBitsSet):
		return "reserved_bits_set"
	case errors.Is(err, ErrUnsupportedHeaderShape):
		return "unsupported_header_shape"
	}
	return "other"
}
