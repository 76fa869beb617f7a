// Package packet defines the Packet model: a typed, flagged, headered
// logical message and the invariants construction and validation enforce
// on it. Packet itself knows nothing about the wire; see pkg/wire for
// framing and pkg/pipeline for the compress/encrypt transform chain.
package packet

import "errors"

// ErrInvalidPacket is returned when a Packet fails one of its invariants:
// a reserved header holds a malformed value, a partial packet's part-index
// is not less than its part-total, or a header key/value contains a
// character forbidden on the wire ('=' or LF).
var ErrInvalidPacket = errors.New("packet: invalid packet")
