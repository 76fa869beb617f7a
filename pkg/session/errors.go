package session

import "errors"

// Session errors.
var (
	// ErrClosed is returned by Send when the Session is draining or already
	// closed.
	ErrClosed = errors.New("session: closed")

	// ErrNotReady is returned by Send when the session has not finished
	// authenticating yet.
	ErrNotReady = errors.New("session: not ready")

	// ErrAuthTimeout is returned when the peer does not complete the Auth
	// exchange before the configured idle timeout elapses.
	ErrAuthTimeout = errors.New("session: authentication timed out")

	// ErrUnexpectedKind is returned when a packet other than Auth arrives
	// while the session is still Authenticating.
	ErrUnexpectedKind = errors.New("session: unexpected packet kind during authentication")

	// ErrAuthMismatch is returned when the peer's Auth packet carries a
	// preshared-key digest that does not match the locally configured key.
	ErrAuthMismatch = errors.New("session: preshared key mismatch during authentication")

	// ErrNoHandler is returned by New when no Handler is configured.
	ErrNoHandler = errors.New("session: no message handler configured")
)
