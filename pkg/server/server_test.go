package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/haldor/sockrelay/pkg/packet"
	"github.com/haldor/sockrelay/pkg/pipeline"
	"github.com/haldor/sockrelay/pkg/session"
	"github.com/haldor/sockrelay/pkg/transport"
)

type recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *recorder) record(s *session.Session, p *packet.Packet) {
	r.mu.Lock()
	r.messages = append(r.messages, string(p.Payload))
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func waitForState(t *testing.T, s *session.Session, want session.State) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for s.State() != want {
		select {
		case <-deadline:
			t.Fatalf("session never reached %s, stuck at %s", want, s.State())
		case <-time.After(time.Millisecond):
		}
	}
}

func waitForCount(t *testing.T, r *recorder, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for r.count() < want {
		select {
		case <-deadline:
			t.Fatalf("got %d messages, want %d", r.count(), want)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestServerRequiresHandler(t *testing.T) {
	_, err := New(Config{ListenAddr: "127.0.0.1:0"})
	if err != ErrNoHandler {
		t.Errorf("got %v, want ErrNoHandler", err)
	}
}

func TestServerBroadcastReachesAllClients(t *testing.T) {
	rec := &recorder{}
	srv, err := New(Config{
		ListenAddr: "127.0.0.1:0",
		Session:    session.Config{Pipeline: pipeline.DefaultConfig(), Handler: func(*session.Session, *packet.Packet) {}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Close()

	clientCfg := session.Config{
		Pipeline: pipeline.DefaultConfig(),
		Handler:  rec.record,
	}

	var clients []*session.Session
	for i := 0; i < 3; i++ {
		c, _, err := transport.Dial(ctx, srv.Addr().String(), nil, clientCfg)
		if err != nil {
			t.Fatalf("Dial: %v", err)
		}
		waitForState(t, c, session.StateReady)
		clients = append(clients, c)
	}

	if err := srv.Broadcast(packet.NewMessage("hi all")); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}

	waitForCount(t, rec, 3)
	for _, m := range rec.messages {
		if m != "hi all" {
			t.Errorf("got %q, want %q", m, "hi all")
		}
	}

	for _, c := range clients {
		c.Close()
	}
}

func TestServerSendToClientID(t *testing.T) {
	var mu sync.Mutex
	received := make(map[string]string)
	recordAs := func(name string) session.Handler {
		return func(s *session.Session, p *packet.Packet) {
			mu.Lock()
			received[name] = string(p.Payload)
			mu.Unlock()
		}
	}
	srv, err := New(Config{
		ListenAddr: "127.0.0.1:0",
		Session: session.Config{
			Pipeline: pipeline.DefaultConfig(),
			Handler:  func(*session.Session, *packet.Packet) {},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Close()

	aliceCfg := session.Config{
		Pipeline: pipeline.DefaultConfig(),
		ClientID: "alice",
		Handler:  recordAs("alice"),
	}
	bobCfg := session.Config{
		Pipeline: pipeline.DefaultConfig(),
		ClientID: "bob",
		Handler:  recordAs("bob"),
	}

	alice, _, err := transport.Dial(ctx, srv.Addr().String(), nil, aliceCfg)
	if err != nil {
		t.Fatalf("Dial alice: %v", err)
	}
	waitForState(t, alice, session.StateReady)

	bob, _, err := transport.Dial(ctx, srv.Addr().String(), nil, bobCfg)
	if err != nil {
		t.Fatalf("Dial bob: %v", err)
	}
	waitForState(t, bob, session.StateReady)

	deadline := time.After(2 * time.Second)
	for len(srv.Sessions()) < 2 {
		select {
		case <-deadline:
			t.Fatal("server never tracked both sessions")
		case <-time.After(time.Millisecond):
		}
	}

	if err := srv.SendTo("bob", packet.NewMessage("only for bob")); err != nil {
		t.Fatalf("SendTo: %v", err)
	}

	deadline = time.After(2 * time.Second)
	for {
		mu.Lock()
		_, ok := received["bob"]
		mu.Unlock()
		if ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("bob never received the targeted message")
		case <-time.After(time.Millisecond):
		}
	}

	mu.Lock()
	if got := received["bob"]; got != "only for bob" {
		t.Errorf("got %q", got)
	}
	if _, ok := received["alice"]; ok {
		t.Error("alice should not have received the targeted message")
	}
	mu.Unlock()

	alice.Close()
	bob.Close()
}

func TestServerSendToUnknownClientFails(t *testing.T) {
	srv, err := New(Config{
		ListenAddr: "127.0.0.1:0",
		Session:    session.Config{Pipeline: pipeline.DefaultConfig(), Handler: func(*session.Session, *packet.Packet) {}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Close()

	if err := srv.SendTo("nobody", packet.NewMessage("hi")); err != ErrUnknownClient {
		t.Errorf("got %v, want ErrUnknownClient", err)
	}
}
