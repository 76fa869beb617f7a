package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// cipherKeySize is the AES-128 key size used to derive the passphrase key.
const cipherKeySize = 16

// cipherInfo is the fixed HKDF info string binding key derivation to this
// library's cipher, so the same passphrase never collides with keys derived
// for an unrelated purpose.
var cipherInfo = []byte("sockrelay/packet-cipher/v1")

// ivSource supplies the initialization vector for Encrypt. Tests inject a
// deterministic reader to get reproducible ciphertext for a fixed
// plaintext/passphrase pair; production code leaves it at crypto/rand.Reader.
var ivSource io.Reader = rand.Reader

// deriveKey stretches a passphrase into a 16-byte AES key via HKDF-SHA256.
// No salt is used: the passphrase itself is the shared secret, and both
// peers derive the identical key deterministically.
func deriveKey(passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrInvalidPassphrase
	}
	reader := hkdf.New(sha256.New, []byte(passphrase), nil, cipherInfo)
	key := make([]byte, cipherKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Encrypt encrypts plaintext with a key derived from passphrase using
// AES-128 in CTR mode (a block cipher run in a streaming mode). The output
// is self-contained: a random IV is prepended to the ciphertext so Decrypt
// never needs an out-of-band nonce.
func Encrypt(plaintext []byte, passphrase string) ([]byte, error) {
	key, err := deriveKey(passphrase)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(ivSource, iv); err != nil {
		return nil, err
	}

	out := make([]byte, aes.BlockSize+len(plaintext))
	copy(out, iv)

	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(out[aes.BlockSize:], plaintext)

	return out, nil
}

// Decrypt reverses Encrypt: it splits the prepended IV from ciphertext and
// runs the same AES-CTR keystream derived from passphrase. A ciphertext
// shorter than one AES block cannot contain an IV and is rejected as
// ErrDecryptionFailed. A wrong passphrase decrypts without error and yields
// garbage (CTR has no built-in authentication). The preshared-key digest
// check in pkg/pipeline compares preshared keys only, so it does not detect
// a wrong passphrase either.
func Decrypt(ciphertext []byte, passphrase string) ([]byte, error) {
	if len(ciphertext) < aes.BlockSize {
		return nil, ErrDecryptionFailed
	}

	key, err := deriveKey(passphrase)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	iv := ciphertext[:aes.BlockSize]
	body := ciphertext[aes.BlockSize:]

	plaintext := make([]byte, len(body))
	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(plaintext, body)

	return plaintext, nil
}
