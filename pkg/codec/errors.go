// Package codec provides the stateless transform primitives used by the
// message pipeline: payload compression, directory archiving, the
// passphrase-derived symmetric cipher, and the preshared-key digest.
//
// All functions here are pure: given the same inputs (and, for the cipher,
// the same IV source) they produce the same outputs. None of them retain
// state between calls.
package codec

import "errors"

// Sentinel errors returned by codec operations. Callers compare with
// errors.Is; none of these carry per-call data.
var (
	// ErrCompressionFailed is returned when compressing a payload fails.
	ErrCompressionFailed = errors.New("codec: compression failed")

	// ErrDecompressionFailed is returned when decompressing a payload fails,
	// typically because the input is corrupt or was never compressed.
	ErrDecompressionFailed = errors.New("codec: decompression failed")

	// ErrDecryptionFailed is returned when decrypting a payload fails
	// because the input is shorter than the prepended IV. The cipher is
	// unauthenticated AES-CTR, so a wrong passphrase does not produce it.
	ErrDecryptionFailed = errors.New("codec: decryption failed")

	// ErrInvalidPassphrase is returned when an empty passphrase is supplied
	// to Encrypt or Decrypt.
	ErrInvalidPassphrase = errors.New("codec: invalid passphrase")
)
