package server

import "errors"

var (
	// ErrClosed names the closed-server condition. No Server method returns
	// it: Start after Close reports transport.ErrClosed from the Listener.
	ErrClosed = errors.New("server: closed")

	// ErrNoHandler is returned by New when cfg.Session.Handler is nil.
	ErrNoHandler = errors.New("server: no message handler configured")

	// ErrUnknownClient is returned by SendTo when no connected session has
	// authenticated with the given client ID.
	ErrUnknownClient = errors.New("server: no connected client with that id")
)
