// Package wire implements the framed, length-delimited byte encoding for
// packet.Packet values: the encoder turns an
// already-transformed Packet into a frame, and the Decoder reconstructs
// Packets from an inbound byte stream of arbitrary chunking, resyncing on
// the delimiter sentinel when a kind byte or length field looks corrupt.
//
// Neither Encode nor Decoder applies compression or encryption; pkg/pipeline
// owns that transform chain and hands wire a Packet whose Flags and Payload
// are already final.
package wire

import "encoding/binary"

// Field sizes in the frame layout:
//
//	[kind : 1 byte]
//	[header-length : 2 bytes, big-endian]
//	[header-bytes : header-length bytes, UTF-8 "key=value\n..."]
//	[flags : 1 byte]
//	[payload-length : 4 bytes, big-endian]
//	[payload : payload-length bytes]
//	[delimiter : fixed 4-byte sentinel]
const (
	kindSize       = 1
	headerLenSize  = 2
	flagsSize      = 1
	payloadLenSize = 4

	// frameOverhead is the number of non-header, non-payload bytes in a
	// frame: kind + header-length + flags + payload-length + delimiter.
	frameOverhead = kindSize + headerLenSize + flagsSize + payloadLenSize + DelimiterSize
)

// DelimiterSize is the fixed length of the resync sentinel.
const DelimiterSize = 4

// Delimiter is the 4-byte magic sentinel closing every frame. It is
// redundant with the explicit payload-length field and exists solely so a
// desynchronised Decoder can scan forward and recover.
var Delimiter = [DelimiterSize]byte{0x53, 0x4D, 0xE0, 0x0F}

var byteOrder = binary.BigEndian
