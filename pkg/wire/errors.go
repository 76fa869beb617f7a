package wire

import "errors"

var (
	// ErrTooLarge is returned by Encode when a header or payload exceeds
	// the configured cap. Outbound only: encode fails, the caller is
	// notified, the session is preserved.
	ErrTooLarge = errors.New("wire: header or payload exceeds configured maximum")

	// ErrFramingError is returned when a header block cannot be parsed as
	// "key=value" lines. Recovered locally by the caller (resync, log,
	// continue); never surfaced as a hard failure.
	ErrFramingError = errors.New("wire: malformed frame")
)
