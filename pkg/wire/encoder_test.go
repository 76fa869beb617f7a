package wire

import (
	"bytes"
	"testing"

	"github.com/haldor/sockrelay/pkg/packet"
)

func TestEncodeRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	tests := []*packet.Packet{
		packet.NewMessage("hello"),
		packet.NewBytes([]byte{0xDE, 0xAD, 0xBE, 0xEF}),
		packet.NewObject("widget.v1", []byte(`{"a":1}`)),
		packet.NewFile("report.txt", []byte("contents")),
		packet.NewAuth("deadbeef", "client-1"),
		func() *packet.Packet {
			p := packet.NewBytes(nil)
			p.Headers.Set(packet.HeaderContentLength, "0")
			return p
		}(),
	}

	for _, p := range tests {
		encoded, err := Encode(p, cfg)
		if err != nil {
			t.Fatalf("Encode(%v): %v", p.Kind, err)
		}

		d := NewDecoder(cfg)
		events := d.Write(encoded)
		if len(events) != 1 || events[0].Kind != EventPacketReady {
			t.Fatalf("Kind %v: got %d events, want exactly 1 PacketReady", p.Kind, len(events))
		}

		got := events[0].Packet
		if got.Kind != p.Kind || got.Flags != p.Flags {
			t.Errorf("Kind %v: kind/flags mismatch: got %v/%v, want %v/%v", p.Kind, got.Kind, got.Flags, p.Kind, p.Flags)
		}
		if !bytes.Equal(got.Payload, p.Payload) {
			t.Errorf("Kind %v: payload mismatch: got %x, want %x", p.Kind, got.Payload, p.Payload)
		}
		for k, v := range p.Headers {
			if got.Headers[k] != v {
				t.Errorf("Kind %v: header %q: got %q, want %q", p.Kind, k, got.Headers[k], v)
			}
		}
	}
}

func TestEncodeFrameLength(t *testing.T) {
	cfg := DefaultConfig()
	p := packet.NewBytes([]byte{1, 2, 3, 4})
	encoded, err := Encode(p, cfg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	headerBytes := encodeHeaders(p.Headers)
	want := frameOverhead + len(headerBytes) + len(p.Payload)
	if len(encoded) != want {
		t.Errorf("got length %d, want %d", len(encoded), want)
	}
}

func TestEncodeTooLargePayload(t *testing.T) {
	cfg := Config{MaxHeaderBytes: DefaultMaxHeaderBytes, MaxPayloadBytes: 4}
	p := packet.NewBytes([]byte("this payload is too long"))
	if _, err := Encode(p, cfg); err != ErrTooLarge {
		t.Errorf("got %v, want ErrTooLarge", err)
	}
}

func TestEncodeTooLargeHeader(t *testing.T) {
	cfg := Config{MaxHeaderBytes: 4, MaxPayloadBytes: DefaultMaxPayloadBytes}
	p := packet.NewMessage("hi")
	if _, err := Encode(p, cfg); err != ErrTooLarge {
		t.Errorf("got %v, want ErrTooLarge", err)
	}
}

func TestEncodeRejectsForbiddenHeaderChars(t *testing.T) {
	cfg := DefaultConfig()
	p := packet.NewMessage("hi")
	p.Headers.Set("bad", "a=b")
	if _, err := Encode(p, cfg); err != packet.ErrInvalidPacket {
		t.Errorf("got %v, want packet.ErrInvalidPacket", err)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	p := packet.NewAuth("deadbeef", "client-1")
	a, err := Encode(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encode(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("Encode is not deterministic for identical input")
	}
}
