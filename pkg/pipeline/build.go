package pipeline

import (
	"strconv"

	"github.com/haldor/sockrelay/pkg/codec"
	"github.com/haldor/sockrelay/pkg/packet"
)

// Build transforms a logical Packet (plaintext payload, as returned by the
// packet.NewXxx constructors) into its wire form: payload compressed and/or
// encrypted per cfg, with the corresponding flags and preshared-hash header
// stamped in. The returned Packet is what pkg/wire.Encode should serialize;
// the input p is not modified.
//
// Directory packets are already compressed by pkg/codec.CompressTree and
// carry FlagCompressed from packet.NewDirectory, so Build never compresses
// their payload a second time.
func Build(p *packet.Packet, cfg Config) (*packet.Packet, error) {
	out := &packet.Packet{
		Kind:    p.Kind,
		Flags:   p.Flags,
		Headers: p.Headers.Clone(),
		Payload: p.Payload,
	}

	if cfg.Compress && !out.Flags.Has(packet.FlagCompressed) {
		compressed, err := codec.Compress(out.Payload)
		if err != nil {
			return nil, err
		}
		out.Payload = compressed
		out.Flags = out.Flags.Set(packet.FlagCompressed)
	}

	if cfg.EncryptionPassphrase != "" {
		if cfg.PresharedKey == "" {
			return nil, ErrMissingPresharedKey
		}
		encrypted, err := codec.Encrypt(out.Payload, cfg.EncryptionPassphrase)
		if err != nil {
			return nil, err
		}
		out.Payload = encrypted
		out.Flags = out.Flags.Set(packet.FlagEncrypted)
		out.Headers.Set(packet.HeaderPresharedHash, codec.PresharedHashHex(cfg.PresharedKey))
	}

	out.Headers.Set(packet.HeaderContentLength, strconv.Itoa(len(out.Payload)))

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
