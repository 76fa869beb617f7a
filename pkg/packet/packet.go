package packet

import "strconv"

// Packet is a logical message: a kind, a flag bitset, short string headers,
// and an opaque payload. Payload is always the plaintext, uncompressed
// bytes — pkg/pipeline is responsible for applying and reversing the
// compress/encrypt transforms before a Packet ever exists on the decode
// side, or after one stops existing on the encode side.
type Packet struct {
	Kind    Kind
	Flags   Flags
	Headers Headers
	Payload []byte
}

// New constructs a Packet with the given kind and payload and an empty
// header set. Most callers want one of the kind-specific constructors
// below, which also populate the headers that kind conventionally carries.
func New(kind Kind, payload []byte) *Packet {
	return &Packet{
		Kind:    kind,
		Headers: make(Headers),
		Payload: payload,
	}
}

// NewAuth builds the Auth packet sent as the first message on a new
// session. presharedHash is the hex-encoded digest identifying
// the expected preshared key; clientID is optional and omitted when empty.
func NewAuth(presharedHash, clientID string) *Packet {
	p := New(KindAuth, nil)
	p.Flags = p.Flags.Set(FlagHasPresharedKey)
	p.Headers.Set(HeaderPresharedHash, presharedHash)
	if clientID != "" {
		p.Headers.Set(HeaderClientID, clientID)
	}
	return p
}

// NewMessage builds a Message packet from UTF-8 text.
func NewMessage(text string) *Packet {
	p := New(KindMessage, []byte(text))
	p.Headers.Set(HeaderContentLength, strconv.Itoa(len(p.Payload)))
	return p
}

// NewBytes builds a Bytes packet from an opaque payload. content-length is
// required for this kind and is populated automatically.
func NewBytes(data []byte) *Packet {
	p := New(KindBytes, data)
	p.Headers.Set(HeaderContentLength, strconv.Itoa(len(data)))
	return p
}

// NewObject builds an Object packet. objectType names the caller-defined
// schema the payload was serialized with.
func NewObject(objectType string, data []byte) *Packet {
	p := New(KindObject, data)
	p.Headers.Set(HeaderObjectType, objectType)
	p.Headers.Set(HeaderContentLength, strconv.Itoa(len(data)))
	return p
}

// NewFile builds a File packet from raw file bytes.
func NewFile(filename string, data []byte) *Packet {
	p := New(KindFile, data)
	p.Headers.Set(HeaderFilename, filename)
	p.Headers.Set(HeaderContentLength, strconv.Itoa(len(data)))
	return p
}

// NewDirectory builds a Directory packet from an already-produced archive
// (see pkg/codec.CompressTree). The compressed flag is always set for this
// kind: the payload on the wire is the archive bytes, which pkg/pipeline
// treats as pre-compressed and does not compress a second time.
func NewDirectory(filename string, archive []byte) *Packet {
	p := New(KindDirectory, archive)
	p.Flags = p.Flags.Set(FlagCompressed)
	p.Headers.Set(HeaderFilename, filename)
	p.Headers.Set(HeaderContentLength, strconv.Itoa(len(archive)))
	return p
}

// NewRequest builds a Request packet carrying an application-defined
// payload awaiting a Response.
func NewRequest(data []byte) *Packet {
	p := New(KindRequest, data)
	p.Headers.Set(HeaderContentLength, strconv.Itoa(len(data)))
	return p
}

// NewResponse builds a Response packet replying to a Request.
func NewResponse(data []byte) *Packet {
	p := New(KindResponse, data)
	p.Headers.Set(HeaderContentLength, strconv.Itoa(len(data)))
	return p
}

// ContentLength returns the content-length header, parsed as an int, and
// whether it was present and well-formed.
func (p *Packet) ContentLength() (int, bool) {
	return p.intHeader(HeaderContentLength)
}

// Filename returns the filename header and whether it was present.
func (p *Packet) Filename() (string, bool) {
	return p.Headers.Get(HeaderFilename)
}

// ObjectType returns the object-type header and whether it was present.
func (p *Packet) ObjectType() (string, bool) {
	return p.Headers.Get(HeaderObjectType)
}

// PresharedHash returns the preshared-hash header and whether it was
// present.
func (p *Packet) PresharedHash() (string, bool) {
	return p.Headers.Get(HeaderPresharedHash)
}

// PartIndex returns the part-index header, parsed as an int, and whether
// it was present and well-formed.
func (p *Packet) PartIndex() (int, bool) {
	return p.intHeader(HeaderPartIndex)
}

// PartTotal returns the part-total header, parsed as an int, and whether
// it was present and well-formed.
func (p *Packet) PartTotal() (int, bool) {
	return p.intHeader(HeaderPartTotal)
}

func (p *Packet) intHeader(key string) (int, bool) {
	v, ok := p.Headers.Get(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate enforces the packet's structural invariants:
//
//   - headers keys/values contain neither '=' nor LF.
//   - if FlagEncrypted is set, a preshared-hash header is present.
//   - if content-length is present, it equals len(Payload).
//   - if FlagPartial is set, part-index < part-total.
//
// Validate does not check the preshared-hash against a configured secret;
// that requires the secret, which only pkg/pipeline has access to.
func (p *Packet) Validate() error {
	if err := p.Headers.Validate(); err != nil {
		return err
	}

	if p.Flags.Has(FlagEncrypted) {
		if hash, ok := p.PresharedHash(); !ok || hash == "" {
			return ErrInvalidPacket
		}
	}

	if length, ok := p.ContentLength(); ok && length != len(p.Payload) {
		return ErrInvalidPacket
	}

	if p.Flags.Has(FlagPartial) {
		index, hasIndex := p.PartIndex()
		total, hasTotal := p.PartTotal()
		if !hasIndex || !hasTotal || index >= total {
			return ErrInvalidPacket
		}
	}

	return nil
}
