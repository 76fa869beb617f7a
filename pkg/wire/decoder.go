package wire

import (
	"bytes"

	"github.com/haldor/sockrelay/pkg/packet"
)

// state is the Decoder's position in the frame state machine.
type state int

const (
	stateAwaitingKind state = iota
	stateAwaitingHeaderLen
	stateAwaitingHeader
	stateAwaitingFlags
	stateAwaitingPayloadLen
	stateAwaitingPayload
	stateAwaitingDelimiter
	stateResync
)

// EventKind distinguishes the two outcomes Write can report. There is no
// explicit "NeedMore" value: Write simply returns no event when the buffer
// does not yet hold a complete frame.
type EventKind int

const (
	// EventPacketReady reports a fully reconstructed Packet.
	EventPacketReady EventKind = iota
	// EventDesync reports that the decoder could not interpret the next
	// bytes as a frame prefix and has begun scanning for the delimiter.
	EventDesync
)

// Event is one outcome of feeding bytes to a Decoder.
type Event struct {
	Kind   EventKind
	Packet *packet.Packet // valid only when Kind == EventPacketReady
}

// Decoder reconstructs Packets from an inbound byte stream whose arrival
// chunking is arbitrary: it tolerates 1..N byte writes at any state
// boundary and zero-byte writes are a no-op. It buffers chunks and
// advances a bounded state machine rather than comparing the delimiter
// byte-by-byte.
//
// A Decoder is not safe for concurrent use; pkg/session gives every
// connection its own Decoder, used only from that connection's receive
// loop.
type Decoder struct {
	cfg   Config
	state state

	buf []byte // unconsumed bytes accumulated across Write calls

	kind      byte
	headerLen uint16
	header    []byte
	flags     byte
	payloadLn uint32
	payload   []byte
}

// NewDecoder creates a Decoder bounded by cfg.
func NewDecoder(cfg Config) *Decoder {
	return &Decoder{cfg: cfg, state: stateAwaitingKind}
}

// Write appends data to the decoder's reassembly buffer and advances the
// state machine as far as the buffered bytes allow, returning every event
// produced. It never blocks and never allocates more than cfg's caps allow
// before validating a length field.
func (d *Decoder) Write(data []byte) []Event {
	if len(data) == 0 {
		return nil
	}
	d.buf = append(d.buf, data...)

	var events []Event
	for {
		switch d.state {
		case stateResync:
			idx := bytes.Index(d.buf, Delimiter[:])
			if idx < 0 {
				// Keep only a tail that could still be a delimiter prefix,
				// so the resync buffer never grows without bound.
				keep := len(Delimiter) - 1
				if len(d.buf) < keep {
					keep = len(d.buf)
				}
				d.buf = d.buf[len(d.buf)-keep:]
				return events
			}
			d.buf = d.buf[idx+len(Delimiter):]
			d.state = stateAwaitingKind

		case stateAwaitingKind:
			if len(d.buf) < kindSize {
				return events
			}
			d.kind = d.buf[0]
			d.buf = d.buf[kindSize:]
			if !packet.Kind(d.kind).IsValid() {
				// An unknown kind byte cannot start a frame: treat it as
				// corruption and scan forward for the next delimiter.
				events = append(events, Event{Kind: EventDesync})
				d.state = stateResync
				continue
			}
			d.state = stateAwaitingHeaderLen

		case stateAwaitingHeaderLen:
			if len(d.buf) < headerLenSize {
				return events
			}
			d.headerLen = byteOrder.Uint16(d.buf[:headerLenSize])
			d.buf = d.buf[headerLenSize:]
			if int(d.headerLen) > d.cfg.MaxHeaderBytes {
				events = append(events, Event{Kind: EventDesync})
				d.state = stateResync
				continue
			}
			if d.headerLen == 0 {
				d.header = nil
				d.state = stateAwaitingFlags
			} else {
				d.state = stateAwaitingHeader
			}

		case stateAwaitingHeader:
			if len(d.buf) < int(d.headerLen) {
				return events
			}
			d.header = append([]byte(nil), d.buf[:d.headerLen]...)
			d.buf = d.buf[d.headerLen:]
			d.state = stateAwaitingFlags

		case stateAwaitingFlags:
			if len(d.buf) < flagsSize {
				return events
			}
			d.flags = d.buf[0]
			d.buf = d.buf[flagsSize:]
			d.state = stateAwaitingPayloadLen

		case stateAwaitingPayloadLen:
			if len(d.buf) < payloadLenSize {
				return events
			}
			d.payloadLn = byteOrder.Uint32(d.buf[:payloadLenSize])
			d.buf = d.buf[payloadLenSize:]
			if d.payloadLn > uint32(d.cfg.MaxPayloadBytes) {
				events = append(events, Event{Kind: EventDesync})
				d.state = stateResync
				continue
			}
			if d.payloadLn == 0 {
				d.payload = nil
				d.state = stateAwaitingDelimiter
			} else {
				d.state = stateAwaitingPayload
			}

		case stateAwaitingPayload:
			if uint32(len(d.buf)) < d.payloadLn {
				return events
			}
			d.payload = append([]byte(nil), d.buf[:d.payloadLn]...)
			d.buf = d.buf[d.payloadLn:]
			d.state = stateAwaitingDelimiter

		case stateAwaitingDelimiter:
			if len(d.buf) < len(Delimiter) {
				return events
			}
			if !bytes.Equal(d.buf[:len(Delimiter)], Delimiter[:]) {
				events = append(events, Event{Kind: EventDesync})
				d.state = stateResync
				continue
			}
			d.buf = d.buf[len(Delimiter):]

			headers, err := decodeHeaders(d.header)
			if err != nil {
				// A malformed header block is itself framing corruption:
				// resync rather than surface a half-built Packet.
				events = append(events, Event{Kind: EventDesync})
				d.clearFrame()
				d.state = stateResync
				continue
			}

			pkt := &packet.Packet{
				Kind:    packet.Kind(d.kind),
				Flags:   packet.Flags(d.flags),
				Headers: headers,
				Payload: d.payload,
			}
			events = append(events, Event{Kind: EventPacketReady, Packet: pkt})
			d.clearFrame()
			d.state = stateAwaitingKind
		}
	}
}

// clearFrame resets the in-progress frame fields after a Packet is emitted
// or discarded. The reassembly buffer (d.buf) is left as it is: it may
// already hold bytes of the next frame, and it lives as long as the
// Decoder itself.
func (d *Decoder) clearFrame() {
	d.kind = 0
	d.headerLen = 0
	d.header = nil
	d.flags = 0
	d.payloadLn = 0
	d.payload = nil
}
