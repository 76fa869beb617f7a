package codec

import (
	"crypto/sha256"
	"encoding/hex"
)

// PresharedHashSize is the length, in bytes, of a preshared-key digest.
const PresharedHashSize = sha256.Size

// PresharedHash produces a fixed-width digest identifying which preshared
// key a peer expects. It binds an encrypted packet to a shared secret but,
// unlike the cipher, is not itself relied upon for payload integrity: a
// collision only misidentifies the key in use, it does not forge a packet.
func PresharedHash(key string) [PresharedHashSize]byte {
	return sha256.Sum256([]byte(key))
}

// PresharedHashHex is PresharedHash encoded as lowercase hex, the form
// carried in the Auth packet's preshared-hash header.
func PresharedHashHex(key string) string {
	sum := PresharedHash(key)
	return hex.EncodeToString(sum[:])
}
