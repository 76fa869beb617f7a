// Package transport accepts and dials the TCP connections pkg/session runs
// on, with an optional TLS wrap during the Handshaking state. It keeps the
// registry of live sessions a Listener has accepted so callers can find,
// enumerate and close them.
package transport

import (
	"context"
	"crypto/tls"
	"net"
	"sync"

	"github.com/pion/logging"

	"github.com/haldor/sockrelay/pkg/session"
)

// ListenerConfig configures a Listener.
type ListenerConfig struct {
	// Listener is a pre-existing net.Listener to accept on. If nil, a new
	// listener is created on ListenAddr.
	Listener net.Listener

	// ListenAddr is used to create a listener when Listener is nil (e.g.
	// ":5540"). An empty address binds an ephemeral port.
	ListenAddr string

	// TLSConfig, if non-nil, wraps every accepted connection in a TLS
	// server handshake before it is handed to pkg/session.
	TLSConfig *tls.Config

	// Session configures every Session the Listener creates.
	Session session.Config

	// LoggerFactory creates the Listener's logger. Nil disables logging.
	LoggerFactory logging.LoggerFactory
}

// Listener accepts inbound TCP connections and drives each one as a
// pkg/session.Session, tracking the live set so a server can enumerate or
// broadcast to connected peers.
type Listener struct {
	listener net.Listener
	tlsCfg   *tls.Config
	sessCfg  session.Config
	log      logging.LeveledLogger

	wg sync.WaitGroup

	mu       sync.Mutex
	started  bool
	closed   bool
	sessions map[*session.Session]struct{}
}

// NewListener creates a Listener from cfg. It does not start accepting
// connections; call Start for that.
func NewListener(cfg ListenerConfig) (*Listener, error) {
	if cfg.Session.Handler == nil {
		return nil, ErrNoHandler
	}

	l := &Listener{
		listener: cfg.Listener,
		tlsCfg:   cfg.TLSConfig,
		sessCfg:  cfg.Session,
		sessions: make(map[*session.Session]struct{}),
	}
	if cfg.LoggerFactory != nil {
		l.log = cfg.LoggerFactory.NewLogger("transport-tcp")
	}

	if l.listener == nil {
		addr := cfg.ListenAddr
		if addr == "" {
			addr = ":0"
		}
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, err
		}
		l.listener = ln
	}

	return l, nil
}

// Addr returns the address the Listener is bound to.
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// Start begins accepting connections in the background. ctx cancellation
// stops the accept loop and every Session it has created.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.started {
		l.mu.Unlock()
		return ErrAlreadyStarted
	}
	l.started = true
	l.mu.Unlock()

	if l.log != nil {
		l.log.Infof("listening on %s", l.listener.Addr())
	}

	l.wg.Add(1)
	go l.acceptLoop(ctx)

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	return nil
}

// Close stops accepting connections and closes every tracked Session.
func (l *Listener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	sessions := make([]*session.Session, 0, len(l.sessions))
	for s := range l.sessions {
		sessions = append(sessions, s)
	}
	l.mu.Unlock()

	l.listener.Close()
	for _, s := range sessions {
		s.Close()
	}
	l.wg.Wait()
	return nil
}

// Sessions returns a snapshot of the currently connected sessions.
func (l *Listener) Sessions() []*session.Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*session.Session, 0, len(l.sessions))
	for s := range l.sessions {
		out = append(out, s)
	}
	return out
}

func (l *Listener) acceptLoop(ctx context.Context) {
	defer l.wg.Done()

	for {
		conn, err := l.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				l.mu.Lock()
				closed := l.closed
				l.mu.Unlock()
				if closed {
					return
				}
				continue
			}
		}

		l.wg.Add(1)
		go l.serve(ctx, conn)
	}
}

func (l *Listener) serve(ctx context.Context, conn net.Conn) {
	defer l.wg.Done()

	if l.tlsCfg != nil {
		conn = tls.Server(conn, l.tlsCfg)
	}

	sess, err := session.New(conn, session.RoleServer, l.sessCfg)
	if err != nil {
		if l.log != nil {
			l.log.Errorf("rejecting connection from %s: %v", conn.RemoteAddr(), err)
		}
		conn.Close()
		return
	}

	l.track(sess)
	defer l.untrack(sess)

	if err := sess.Run(ctx); err != nil && l.log != nil {
		l.log.Debugf("session with %s ended: %v", conn.RemoteAddr(), err)
	}
}

func (l *Listener) track(s *session.Session) {
	l.mu.Lock()
	l.sessions[s] = struct{}{}
	l.mu.Unlock()
}

func (l *Listener) untrack(s *session.Session) {
	l.mu.Lock()
	delete(l.sessions, s)
	l.mu.Unlock()
}

// Dial opens a TCP connection to addr, optionally wraps it in a TLS client
// handshake, and starts the resulting Session's Run loop in the background.
// Use the returned Session's State/Stats/Close to observe and manage it,
// and read the returned channel to learn why Run stopped.
func Dial(ctx context.Context, addr string, tlsCfg *tls.Config, cfg session.Config) (*session.Session, <-chan error, error) {
	var conn net.Conn
	var err error
	if tlsCfg != nil {
		dialer := &tls.Dialer{Config: tlsCfg}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, nil, err
	}

	sess, err := session.New(conn, session.RoleClient, cfg)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- sess.Run(ctx) }()

	return sess, errCh, nil
}
