package dcc

import (
	"golang.org/x/crypto/chacha20"
)

// Key is the fixed compile-time symmetric key every DCC transfer uses (16
// bytes). This, together with the all-zero nonce below, is a documented,
// preserved insecurity: a correct deployment would negotiate a per-transfer
// key and nonce instead.
var Key = []byte("0123456789ABCDEF")

// cipherKey pads Key out to chacha20.KeySize (32 bytes): the 128-bit
// constant key doesn't fit golang.org/x/crypto/chacha20's fixed 256-bit key
// requirement, so it's repeated once. It is still the same fixed,
// non-secret 16-byte constant underneath — doubling it doesn't add entropy,
// it only satisfies the library's size contract.
var cipherKey = append(append([]byte{}, Key...), Key...)

// nonce is zero-filled. golang.org/x/crypto/chacha20 requires a 12-byte
// (IETF) nonce; the extra four bytes are zero-padded, so the all-zero
// property is unchanged — it is still a constant, attacker-predictable
// nonce used for every chunk of every transfer.
var nonce = make([]byte, chacha20.NonceSize)

// EncryptChunk XORs plaintext with the ChaCha20 keystream derived from Key
// and the zero nonce.
func EncryptChunk(plaintext []byte) ([]byte, error) {
	c, err := chacha20.NewUnauthenticatedCipher(cipherKey, nonce)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(plaintext))
	c.XORKeyStream(out, plaintext)
	return out, nil
}

// DecryptChunk reverses EncryptChunk; ChaCha20 is its own inverse given the
// same key/nonce.
func DecryptChunk(ciphertext []byte) ([]byte, error) {
	return EncryptChunk(ciphertext)
}
