package packet

// Flags is the single-byte bitset carried in every frame.
type Flags uint8

const (
	// FlagCompressed indicates the payload was compressed before encoding;
	// the pipeline must decompress it after any decryption.
	FlagCompressed Flags = 1 << iota
	// FlagEncrypted indicates the payload was encrypted; a preshared-hash
	// header must be present and must verify.
	FlagEncrypted
	// FlagPartial indicates the packet is one part of a larger message;
	// part-index and part-total headers describe its position.
	FlagPartial
	// FlagHasMetadata indicates the headers block carries application
	// metadata beyond the headers the core itself requires.
	FlagHasMetadata
	// FlagHasPresharedKey indicates a preshared-hash header is present,
	// independent of whether the payload is encrypted (the Auth packet
	// sets this without setting FlagEncrypted).
	FlagHasPresharedKey
)

// Has reports whether all bits of want are set in f.
func (f Flags) Has(want Flags) bool {
	return f&want == want
}

// Set returns f with the bits of add set.
func (f Flags) Set(add Flags) Flags {
	return f | add
}

// Clear returns f with the bits of remove cleared.
func (f Flags) Clear(remove Flags) Flags {
	return f &^ remove
}
