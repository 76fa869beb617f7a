package session

import "sync/atomic"

// Stats holds running counters for a Session. It is safe for concurrent
// use; Session updates it from both the send path and the receive loop.
type Stats struct {
	packetsSent     atomic.Uint64
	packetsReceived atomic.Uint64
	bytesSent       atomic.Uint64
	bytesReceived   atomic.Uint64
	desyncs         atomic.Uint64
}

// PacketsSent returns the number of packets successfully written.
func (s *Stats) PacketsSent() uint64 { return s.packetsSent.Load() }

// PacketsReceived returns the number of packets successfully dispatched to
// the Handler.
func (s *Stats) PacketsReceived() uint64 { return s.packetsReceived.Load() }

// BytesSent returns the number of wire bytes written, including framing
// overhead.
func (s *Stats) BytesSent() uint64 { return s.bytesSent.Load() }

// BytesReceived returns the number of wire bytes read off the connection.
func (s *Stats) BytesReceived() uint64 { return s.bytesReceived.Load() }

// Desyncs returns the number of times the wire decoder had to resync after
// encountering a corrupted frame prefix.
func (s *Stats) Desyncs() uint64 { return s.desyncs.Load() }

// StatsSink is an external, presumably shared, collaborator a Session calls
// at most once per packet: on every successful send, every successful
// receive, and every packet dropped before it reached the Handler. A nil
// StatsSink is legal; Session skips the calls entirely.
type StatsSink interface {
	PacketSent()
	PacketReceived()
	PacketDropped(reason string)
}
