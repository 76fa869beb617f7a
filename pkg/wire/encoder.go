package wire

import "github.com/haldor/sockrelay/pkg/packet"

// Encode serialises p into a single frame under cfg's size caps. p's Flags
// and Payload must already reflect any compression or encryption the
// caller wants on the wire — Encode only frames, it does not transform
// (pkg/pipeline owns the transform chain).
//
// The returned slice's length is exactly
// 1 + 2 + len(headerBytes) + 1 + 4 + len(p.Payload) + DelimiterSize.
func Encode(p *packet.Packet, cfg Config) ([]byte, error) {
	if err := p.Headers.Validate(); err != nil {
		return nil, err
	}

	headerBytes := encodeHeaders(p.Headers)
	if len(headerBytes) > cfg.MaxHeaderBytes {
		return nil, ErrTooLarge
	}
	if len(p.Payload) > cfg.MaxPayloadBytes {
		return nil, ErrTooLarge
	}

	total := frameOverhead + len(headerBytes) + len(p.Payload)
	buf := make([]byte, total)

	offset := 0
	buf[offset] = byte(p.Kind)
	offset += kindSize

	byteOrder.PutUint16(buf[offset:], uint16(len(headerBytes)))
	offset += headerLenSize

	offset += copy(buf[offset:], headerBytes)

	buf[offset] = byte(p.Flags)
	offset += flagsSize

	byteOrder.PutUint32(buf[offset:], uint32(len(p.Payload)))
	offset += payloadLenSize

	offset += copy(buf[offset:], p.Payload)

	copy(buf[offset:], Delimiter[:])

	return buf, nil
}
