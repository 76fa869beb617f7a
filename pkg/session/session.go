package session

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/haldor/sockrelay/pkg/codec"
	"github.com/haldor/sockrelay/pkg/packet"
	"github.com/haldor/sockrelay/pkg/pipeline"
	"github.com/haldor/sockrelay/pkg/wire"
	"github.com/pion/logging"
)

// Session drives one connection through Connecting, (optionally)
// Handshaking, Authenticating, Ready, Draining and Closed. It
// owns exactly one net.Conn; pkg/transport is responsible for creating that
// connection (dialing or accepting, wrapping it in TLS if configured)
// before handing it to New.
type Session struct {
	conn net.Conn
	role Role
	cfg  Config
	log  logging.LeveledLogger

	Stats Stats

	stateMu sync.RWMutex
	state   State

	writeMu sync.Mutex // serializes writes so frames are never interleaved

	peerClientID string

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// New constructs a Session around conn. conn may already be a *tls.Conn if
// the caller wants TLS; New itself never dials or listens.
func New(conn net.Conn, role Role, cfg Config) (*Session, error) {
	if cfg.Handler == nil {
		return nil, ErrNoHandler
	}

	s := &Session{
		conn:  conn,
		role:  role,
		cfg:   cfg,
		state: StateConnecting,
		done:  make(chan struct{}),
	}
	if cfg.LoggerFactory != nil {
		s.log = cfg.LoggerFactory.NewLogger("session")
	}
	return s, nil
}

// State returns the Session's current lifecycle state.
func (s *Session) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.stateMu.Lock()
	s.state = st
	s.stateMu.Unlock()
	if s.log != nil {
		s.log.Debugf("state -> %s", st)
	}
}

// RemoteAddr returns the underlying connection's remote address.
func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// Run drives the Session through its handshake and authentication, then
// blocks dispatching received packets to cfg.Handler until the connection
// closes, ctx is canceled, or Close is called. It returns the reason the
// loop stopped: the read error itself (io.EOF when the peer hangs up, a
// closed-connection error when Close interrupts a blocked read), ctx.Err()
// when cancellation is seen between reads, or nil when Close is seen
// between reads.
func (s *Session) Run(ctx context.Context) error {
	defer s.finish()

	if tc, ok := s.conn.(*tls.Conn); ok {
		s.setState(StateHandshaking)
		if err := tc.HandshakeContext(ctx); err != nil {
			return err
		}
	}

	s.setState(StateAuthenticating)
	if err := s.authenticate(ctx); err != nil {
		return err
	}

	s.setState(StateReady)
	return s.receiveLoop(ctx)
}

// authenticate performs the Auth packet exchange. The client
// sends first; the server waits, verifies, and answers in kind. Both sides
// end up having verified the other's preshared-key digest before any
// application packet is accepted.
func (s *Session) authenticate(ctx context.Context) (err error) {
	defer func() {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			err = ErrAuthTimeout
		}
	}()

	if deadline, ok := s.readDeadline(); ok {
		s.conn.SetDeadline(deadline)
		defer s.conn.SetDeadline(time.Time{})
	}

	ourHash := pipelineHash(s.cfg.Pipeline)

	if s.role == RoleClient {
		if err := s.writeRaw(packet.NewAuth(ourHash, s.cfg.ClientID)); err != nil {
			return err
		}
		peer, err := s.readOne(ctx)
		if err != nil {
			return err
		}
		return s.verifyAuth(peer, ourHash)
	}

	peer, err := s.readOne(ctx)
	if err != nil {
		return err
	}
	if err := s.verifyAuth(peer, ourHash); err != nil {
		return err
	}
	return s.writeRaw(packet.NewAuth(ourHash, s.cfg.ClientID))
}

func (s *Session) verifyAuth(p *packet.Packet, ourHash string) error {
	if p.Kind != packet.KindAuth {
		return ErrUnexpectedKind
	}
	hash, ok := p.PresharedHash()
	if !ok || hash != ourHash {
		return ErrAuthMismatch
	}
	if clientID, ok := p.Headers.Get(packet.HeaderClientID); ok {
		s.peerClientID = clientID
	}
	return nil
}

// PeerClientID returns the client-id the peer sent in its Auth packet, or
// "" if it sent none.
func (s *Session) PeerClientID() string {
	return s.peerClientID
}

// readOne blocks for exactly one frame, independent of the steady-state
// decoder used by receiveLoop, so the Auth exchange cannot be confused by a
// partially buffered application packet arriving early.
func (s *Session) readOne(ctx context.Context) (*packet.Packet, error) {
	dec := wire.NewDecoder(s.cfg.Pipeline.Wire)
	buf := make([]byte, wire.DefaultReadBufferBytes)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		n, err := s.conn.Read(buf)
		if n > 0 {
			for _, ev := range dec.Write(buf[:n]) {
				if ev.Kind == wire.EventPacketReady {
					return ev.Packet, nil
				}
			}
		}
		if err != nil {
			return nil, err
		}
	}
}

// writeRaw frames and writes p without going through pipeline.Build — used
// only for the Auth packet, which is never compressed or encrypted.
func (s *Session) writeRaw(p *packet.Packet) error {
	encoded, err := wire.Encode(p, s.cfg.Pipeline.Wire)
	if err != nil {
		return err
	}
	return s.writeBytes(encoded)
}

func (s *Session) writeBytes(b []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	n, err := s.conn.Write(b)
	s.Stats.bytesSent.Add(uint64(n))
	return err
}

// Send builds, frames and writes an application packet. It returns
// ErrNotReady before the session reaches StateReady and ErrClosed once
// draining or closed.
func (s *Session) Send(p *packet.Packet) error {
	switch s.State() {
	case StateReady:
	case StateDraining, StateClosed:
		return ErrClosed
	default:
		return ErrNotReady
	}

	built, err := pipeline.Build(p, s.cfg.Pipeline)
	if err != nil {
		return err
	}
	encoded, err := wire.Encode(built, s.cfg.Pipeline.Wire)
	if err != nil {
		return err
	}
	if err := s.writeBytes(encoded); err != nil {
		return err
	}
	s.Stats.packetsSent.Add(1)
	if s.cfg.Stats != nil {
		s.cfg.Stats.PacketSent()
	}
	return nil
}

// receiveLoop reads chunks off the connection, feeds them to a Decoder and
// dispatches every reconstructed packet to cfg.Handler. An idle timeout, if
// configured, is renewed as a read deadline before every read, so any
// received bytes keep the session alive.
func (s *Session) receiveLoop(ctx context.Context) error {
	dec := wire.NewDecoder(s.cfg.Pipeline.Wire)
	buf := make([]byte, wire.DefaultReadBufferBytes)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		default:
		}

		if deadline, ok := s.readDeadline(); ok {
			s.conn.SetReadDeadline(deadline)
		}

		n, err := s.conn.Read(buf)
		if n > 0 {
			s.Stats.bytesReceived.Add(uint64(n))
			for _, ev := range dec.Write(buf[:n]) {
				switch ev.Kind {
				case wire.EventDesync:
					s.Stats.desyncs.Add(1)
					if s.log != nil {
						s.log.Warn("decoder resyncing after corrupted frame")
					}
					if s.cfg.Stats != nil {
						s.cfg.Stats.PacketDropped("desync")
					}
				case wire.EventPacketReady:
					if derr := s.dispatch(ev.Packet); derr != nil {
						return derr
					}
				}
			}
		}
		if err != nil {
			return err
		}
	}
}

func (s *Session) dispatch(wirePacket *packet.Packet) error {
	parsed, err := pipeline.Parse(wirePacket, s.cfg.Pipeline)
	if err != nil {
		if s.log != nil {
			s.log.Warnf("dropping packet: %v", err)
		}
		if s.cfg.Stats != nil {
			s.cfg.Stats.PacketDropped(err.Error())
		}
		return nil
	}
	s.Stats.packetsReceived.Add(1)
	if s.cfg.Stats != nil {
		s.cfg.Stats.PacketReceived()
	}
	s.cfg.Handler(s, parsed)
	return nil
}

func (s *Session) readDeadline() (time.Time, bool) {
	timeout := s.cfg.idleTimeout()
	if timeout < 0 {
		return time.Time{}, false
	}
	return time.Now().Add(timeout), true
}

// Close moves the Session to Draining, stops the receive loop before its
// next read, and closes the underlying connection at once: a read or write
// already in progress on the connection fails rather than completing.
// Close is idempotent and safe to call from any goroutine.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.setState(StateDraining)
		close(s.done)
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

func (s *Session) finish() {
	s.setState(StateClosed)
	s.conn.Close()
}

// pipelineHash computes the Auth packet's preshared-hash header for cfg,
// independent of whether encryption is enabled: authentication always
// proves both peers share the same key, even on an unencrypted session.
func pipelineHash(cfg pipeline.Config) string {
	return codec.PresharedHashHex(cfg.PresharedKey)
}
