package transport

import "errors"

// Transport errors.
var (
	// ErrClosed is returned when an operation is attempted on a closed Listener.
	ErrClosed = errors.New("transport: closed")

	// ErrNoHandler is returned when no session.Handler is configured.
	ErrNoHandler = errors.New("transport: no message handler configured")

	// ErrAlreadyStarted is returned when Start is called on an already running Listener.
	ErrAlreadyStarted = errors.New("transport: already started")
)
