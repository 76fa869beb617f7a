package packet

// Kind identifies the semantic handling of a Packet's payload at the
// application edge. The wire only ever carries the numeric tag; everything
// else about a Kind is convention enforced by this package and pkg/pipeline.
type Kind uint8

// Packet kinds, fixed at these numeric values so peers agree on the wire
// representation regardless of which order this file lists them in.
const (
	// KindAuth is the first packet sent on a new session: it
	// carries the preshared-hash and an optional client-id header.
	KindAuth Kind = 0
	// KindMessage carries a UTF-8 text payload.
	KindMessage Kind = 1
	// KindBytes carries an opaque byte payload; content-length is required.
	KindBytes Kind = 2
	// KindObject carries a caller-serialized value; object-type names its
	// schema.
	KindObject Kind = 3
	// KindFile carries raw file bytes; filename and content-length are
	// expected.
	KindFile Kind = 4
	// KindDirectory carries a compressed archive of a directory tree;
	// filename names the archive and the compressed flag is always set.
	KindDirectory Kind = 5
	// KindRequest carries an application-defined request payload awaiting
	// a KindResponse.
	KindRequest Kind = 6
	// KindResponse carries an application-defined reply to a KindRequest.
	KindResponse Kind = 7
)

// String returns a human-readable name for k, or "Unknown" for any value
// outside the defined kinds.
func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "Auth"
	case KindMessage:
		return "Message"
	case KindBytes:
		return "Bytes"
	case KindObject:
		return "Object"
	case KindFile:
		return "File"
	case KindDirectory:
		return "Directory"
	case KindRequest:
		return "Request"
	case KindResponse:
		return "Response"
	default:
		return "Unknown"
	}
}

// IsValid reports whether k is one of the defined kinds.
func (k Kind) IsValid() bool {
	return k <= KindResponse
}
