package pipeline

import (
	"bytes"
	"testing"

	"github.com/haldor/sockrelay/pkg/packet"
	"github.com/haldor/sockrelay/pkg/wire"
)

func roundTrip(t *testing.T, p *packet.Packet, cfg Config) *packet.Packet {
	t.Helper()
	built, err := Build(p, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	encoded, err := wire.Encode(built, cfg.Wire)
	if err != nil {
		t.Fatalf("wire.Encode: %v", err)
	}

	d := wire.NewDecoder(cfg.Wire)
	events := d.Write(encoded)
	if len(events) != 1 || events[0].Kind != wire.EventPacketReady {
		t.Fatalf("got %d events, want exactly 1 PacketReady", len(events))
	}

	parsed, err := Parse(events[0].Packet, cfg)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return parsed
}

func TestPipelinePlainRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	p := packet.NewMessage("hello, world")
	got := roundTrip(t, p, cfg)
	if string(got.Payload) != "hello, world" {
		t.Errorf("got payload %q", got.Payload)
	}
}

func TestPipelineCompressedRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compress = true
	payload := bytes.Repeat([]byte("abcdefgh"), 512)
	p := packet.NewBytes(payload)
	got := roundTrip(t, p, cfg)
	if !bytes.Equal(got.Payload, payload) {
		t.Error("payload mismatch after compressed round trip")
	}
	if got.Flags.Has(packet.FlagCompressed) {
		t.Error("FlagCompressed should be cleared after Parse")
	}
}

func TestPipelineEncryptedRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EncryptionPassphrase = "correct horse battery staple"
	cfg.PresharedKey = "shared-secret"
	p := packet.NewBytes([]byte("top secret"))
	got := roundTrip(t, p, cfg)
	if string(got.Payload) != "top secret" {
		t.Errorf("got payload %q", got.Payload)
	}
	if got.Flags.Has(packet.FlagEncrypted) {
		t.Error("FlagEncrypted should be cleared after Parse")
	}
}

func TestPipelineCompressedAndEncryptedRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compress = true
	cfg.EncryptionPassphrase = "hunter2"
	cfg.PresharedKey = "shared-secret"
	payload := bytes.Repeat([]byte("zzzzzzzz"), 256)
	p := packet.NewBytes(payload)
	got := roundTrip(t, p, cfg)
	if !bytes.Equal(got.Payload, payload) {
		t.Error("payload mismatch after compressed+encrypted round trip")
	}
}

func TestPipelineWrongKeyFailsIntegrity(t *testing.T) {
	sendCfg := DefaultConfig()
	sendCfg.EncryptionPassphrase = "passphrase-a"
	sendCfg.PresharedKey = "key-a"

	recvCfg := DefaultConfig()
	recvCfg.EncryptionPassphrase = "passphrase-a"
	recvCfg.PresharedKey = "key-b" // different preshared key

	p := packet.NewBytes([]byte("secret"))
	built, err := Build(p, sendCfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	encoded, err := wire.Encode(built, sendCfg.Wire)
	if err != nil {
		t.Fatalf("wire.Encode: %v", err)
	}
	d := wire.NewDecoder(sendCfg.Wire)
	events := d.Write(encoded)
	if len(events) != 1 || events[0].Kind != wire.EventPacketReady {
		t.Fatalf("got %d events, want 1 PacketReady", len(events))
	}

	if _, err := Parse(events[0].Packet, recvCfg); err != ErrIntegrityFailure {
		t.Errorf("got %v, want ErrIntegrityFailure", err)
	}
}

func TestBuildRequiresPresharedKeyForEncryption(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EncryptionPassphrase = "passphrase-only"
	p := packet.NewMessage("hi")
	if _, err := Build(p, cfg); err != ErrMissingPresharedKey {
		t.Errorf("got %v, want ErrMissingPresharedKey", err)
	}
}

func TestBuildDoesNotDoubleCompressDirectory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compress = true
	archive := []byte("pretend this is tar+gzip bytes")
	p := packet.NewDirectory("tree.tar.gz", archive)

	built, err := Build(p, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !bytes.Equal(built.Payload, archive) {
		t.Error("Directory payload was compressed a second time")
	}
}

func TestPipelineEncryptionUsesFreshIVPerBuild(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EncryptionPassphrase = "static-test-key"
	cfg.PresharedKey = "shared"
	p := packet.NewMessage("deterministic")

	a, err := Build(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	// Without a fixed IV source, two Builds of identical input must differ
	// (random IV per encryption); determinism itself is exercised directly
	// against pkg/codec's injectable ivSource.
	if bytes.Equal(a.Payload, b.Payload) {
		t.Error("two encryptions of identical plaintext produced identical ciphertext")
	}
}
