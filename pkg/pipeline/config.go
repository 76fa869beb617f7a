package pipeline

import "github.com/haldor/sockrelay/pkg/wire"

// Config bundles the settings a Pipeline needs to transform Packets between
// their application form and their wire form. The zero Config disables both
// compression and encryption, but its Wire caps are zero, which rejects any
// non-empty header block or payload; DefaultConfig sets wire's default caps.
type Config struct {
	// Wire bounds header/payload sizes; see pkg/wire.DefaultConfig.
	Wire wire.Config

	// Compress, when true, applies pkg/codec.Compress to every outbound
	// payload and sets FlagCompressed. Directory packets are always
	// treated as pre-compressed regardless of this setting.
	Compress bool

	// EncryptionPassphrase, when non-empty, applies pkg/codec.Encrypt to
	// every outbound payload and sets FlagEncrypted. It must be paired
	// with PresharedKey so the receiver can verify the packet.
	EncryptionPassphrase string

	// PresharedKey identifies the shared secret both peers are configured
	// with. Build stamps its digest into the preshared-hash header;
	// Parse rejects any encrypted packet whose header does not match.
	PresharedKey string
}

// DefaultConfig returns a Config with compression and encryption disabled
// and wire.DefaultConfig's size caps.
func DefaultConfig() Config {
	return Config{Wire: wire.DefaultConfig()}
}
