// Package server runs a Listener and layers client-id addressed delivery on
// top of the raw set of connected Sessions: Broadcast fans a packet out to
// every connected peer, SendTo delivers to the one peer (if any) that
// authenticated with a given client id.
package server

import (
	"context"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/pion/logging"

	"github.com/haldor/sockrelay/pkg/packet"
	"github.com/haldor/sockrelay/pkg/session"
	"github.com/haldor/sockrelay/pkg/transport"
)

// Server accepts connections on a Listener and addresses connected Sessions
// by the client id they presented during authentication.
type Server struct {
	id       string
	listener *transport.Listener
	log      logging.LeveledLogger
}

// New creates a Server from cfg. It does not start accepting connections;
// call Start for that.
func New(cfg Config) (*Server, error) {
	if cfg.Session.Handler == nil {
		return nil, ErrNoHandler
	}

	s := &Server{id: uuid.NewString()}
	if cfg.LoggerFactory != nil {
		s.log = cfg.LoggerFactory.NewLogger("server")
	}

	ln, err := transport.NewListener(transport.ListenerConfig{
		ListenAddr:    cfg.ListenAddr,
		TLSConfig:     cfg.TLSConfig,
		Session:       cfg.Session,
		LoggerFactory: cfg.LoggerFactory,
	})
	if err != nil {
		return nil, err
	}
	s.listener = ln

	return s, nil
}

// ID returns the Server's own randomly generated instance id, useful for
// disambiguating log lines when several Servers run in one process.
func (s *Server) ID() string { return s.id }

// Addr returns the address the Server is listening on.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Start begins accepting connections in the background.
func (s *Server) Start(ctx context.Context) error {
	if s.log != nil {
		s.log.Infof("server %s starting", s.id)
	}
	return s.listener.Start(ctx)
}

// Close stops accepting connections and closes every connected Session.
func (s *Server) Close() error {
	return s.listener.Close()
}

// Sessions returns a snapshot of the currently connected sessions.
func (s *Server) Sessions() []*session.Session {
	return s.listener.Sessions()
}

// Broadcast sends p to every currently connected session, skipping (and
// collecting) any that reject the send rather than aborting early. It
// returns a combined error naming how many sends failed, or nil if every
// send succeeded.
func (s *Server) Broadcast(p *packet.Packet) error {
	sessions := s.listener.Sessions()
	var failed int
	for _, sess := range sessions {
		if err := sess.Send(clonePacket(p)); err != nil {
			failed++
			if s.log != nil {
				s.log.Warnf("broadcast to %s failed: %v", sess.RemoteAddr(), err)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("server: %d of %d broadcasts failed", failed, len(sessions))
	}
	return nil
}

// SendTo delivers p to the connected session whose Auth exchange presented
// clientID, if any. It returns ErrUnknownClient when no such session is
// currently connected.
func (s *Server) SendTo(clientID string, p *packet.Packet) error {
	for _, sess := range s.listener.Sessions() {
		if sess.PeerClientID() == clientID {
			return sess.Send(p)
		}
	}
	return ErrUnknownClient
}

// clonePacket returns a shallow copy of p with its own Headers map, so the
// Broadcast recipients never share one Packet value or header map.
// pipeline.Build itself does not modify its input.
func clonePacket(p *packet.Packet) *packet.Packet {
	cp := *p
	cp.Headers = p.Headers.Clone()
	return &cp
}
