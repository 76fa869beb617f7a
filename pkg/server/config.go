package server

import (
	"crypto/tls"

	"github.com/pion/logging"

	"github.com/haldor/sockrelay/pkg/session"
)

// Config configures a Server.
type Config struct {
	// ListenAddr is the TCP address to accept connections on, e.g. ":5540".
	// An empty address binds an ephemeral port.
	ListenAddr string

	// TLSConfig, if non-nil, wraps every accepted connection in a TLS server
	// handshake before authentication.
	TLSConfig *tls.Config

	// Session configures every Session the Server accepts. Session.Handler
	// must be set; Session.ClientID is the id this Server presents in its
	// half of the Auth exchange.
	Session session.Config

	// LoggerFactory creates the Server's logger and is passed through to the
	// Listener and every Session it creates. Nil disables logging.
	LoggerFactory logging.LoggerFactory
}
