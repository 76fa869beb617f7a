// Package session drives a single connection through its lifecycle:
// connect, optional TLS handshake, authentication against a preshared key,
// steady-state message exchange, graceful drain, and close. It sits above
// pkg/wire and pkg/pipeline and below pkg/transport and pkg/server.
package session

// State is a Session's position in its lifecycle.
type State int

const (
	// StateConnecting is the state from construction until the transport
	// connection (and TLS handshake, if configured) completes.
	StateConnecting State = iota
	// StateHandshaking is entered only when TLS is configured and covers
	// the TLS handshake itself.
	StateHandshaking
	// StateAuthenticating covers the Auth packet exchange: the local side
	// has a connected transport but has not yet verified the peer's
	// preshared-key digest.
	StateAuthenticating
	// StateReady is the steady state: both peers are authenticated and the
	// session accepts Send calls and dispatches received packets.
	StateReady
	// StateDraining is entered by Close: no new sends are accepted. The
	// connection is closed at the same moment, so reads and writes already
	// in progress are not waited for; they fail.
	StateDraining
	// StateClosed is terminal; the underlying connection is closed and the
	// Session cannot be reused.
	StateClosed
)

// String returns a human-readable name for s.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateHandshaking:
		return "Handshaking"
	case StateAuthenticating:
		return "Authenticating"
	case StateReady:
		return "Ready"
	case StateDraining:
		return "Draining"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}
