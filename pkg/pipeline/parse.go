package pipeline

import (
	"strconv"

	"github.com/haldor/sockrelay/pkg/codec"
	"github.com/haldor/sockrelay/pkg/packet"
)

// Parse reverses Build: given a Packet as reconstructed by pkg/wire.Decoder
// (payload still compressed and/or encrypted), it verifies the
// preshared-hash header when the packet is encrypted, decrypts, decompresses
// and returns a logical Packet with plaintext payload. p is not modified.
func Parse(p *packet.Packet, cfg Config) (*packet.Packet, error) {
	out := &packet.Packet{
		Kind:    p.Kind,
		Flags:   p.Flags,
		Headers: p.Headers.Clone(),
		Payload: p.Payload,
	}

	if out.Flags.Has(packet.FlagEncrypted) {
		hash, ok := out.PresharedHash()
		if !ok || hash != codec.PresharedHashHex(cfg.PresharedKey) {
			return nil, ErrIntegrityFailure
		}

		decrypted, err := codec.Decrypt(out.Payload, cfg.EncryptionPassphrase)
		if err != nil {
			return nil, err
		}
		out.Payload = decrypted
		out.Flags = out.Flags.Clear(packet.FlagEncrypted)
	}

	if out.Flags.Has(packet.FlagCompressed) && out.Kind != packet.KindDirectory {
		decompressed, err := codec.Decompress(out.Payload)
		if err != nil {
			return nil, err
		}
		out.Payload = decompressed
		out.Flags = out.Flags.Clear(packet.FlagCompressed)
	}

	out.Headers.Set(packet.HeaderContentLength, strconv.Itoa(len(out.Payload)))
	return out, nil
}
