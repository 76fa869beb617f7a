package session

import (
	"time"

	"github.com/pion/logging"

	"github.com/haldor/sockrelay/pkg/packet"
	"github.com/haldor/sockrelay/pkg/pipeline"
)

// DefaultIdleTimeout is how long a Session waits for activity — either a
// completed Auth exchange or, once Ready, any received bytes — before
// closing itself.
const DefaultIdleTimeout = 2 * time.Minute

// Role identifies which side of a connection a Session represents. The
// client sends the first Auth packet; the server waits for it and answers
// with its own.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

// String returns a human-readable name for r.
func (r Role) String() string {
	if r == RoleServer {
		return "Server"
	}
	return "Client"
}

// Handler is invoked once per received packet after the Session reaches
// StateReady. It runs on the Session's receive goroutine, so a handler that
// blocks applies backpressure to that connection's reads — by design,
// matching the exclusive-write/serial-read model of the connection.
type Handler func(s *Session, p *packet.Packet)

// Config configures a Session's behavior.
type Config struct {
	// Pipeline carries the compression/encryption settings applied to
	// every packet after the Auth exchange completes.
	Pipeline pipeline.Config

	// ClientID is sent in the client's Auth packet (optional).
	ClientID string

	// IdleTimeout bounds how long the session waits for the Auth handshake
	// and, once Ready, for the next received bytes. Zero uses
	// DefaultIdleTimeout; a negative value disables the timeout.
	IdleTimeout time.Duration

	// Handler is called for every packet received once the session is
	// Ready. Required.
	Handler Handler

	// LoggerFactory creates the Session's logger. Nil disables logging.
	LoggerFactory logging.LoggerFactory

	// Stats, if set, is notified of every send, every dispatched receive,
	// and every packet dropped before reaching Handler. Nil is legal.
	Stats StatsSink
}

func (c Config) idleTimeout() time.Duration {
	if c.IdleTimeout == 0 {
		return DefaultIdleTimeout
	}
	return c.IdleTimeout
}
