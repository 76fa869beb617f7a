// Package pipeline turns application values into wire-ready Packets and
// back, applying the compress-then-encrypt transform chain on the
// way out and reversing it on the way in. pkg/wire only ever sees Packets
// whose Payload is already in its final on-the-wire form.
package pipeline

import "errors"

var (
	// ErrIntegrityFailure is returned by Parse when an encrypted packet's
	// preshared-hash header does not match the configured preshared key.
	// The cipher itself has no authentication tag and this check covers the
	// preshared key only: a packet encrypted under a different passphrase
	// but carrying the same preshared key is not rejected.
	ErrIntegrityFailure = errors.New("pipeline: preshared key does not match")

	// ErrMissingPresharedKey is returned by Build when the caller asks for
	// encryption but the pipeline has no preshared key configured.
	ErrMissingPresharedKey = errors.New("pipeline: encryption requested without a preshared key")
)
