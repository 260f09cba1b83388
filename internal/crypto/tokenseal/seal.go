// Package tokenseal seals slot values at rest with a passphrase-derived key.
package tokenseal

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Sealing parameters. Blob layout: salt(16) || nonce(24) || ciphertext.
const (
	SaltLen = 16
	KeyLen  = chacha20poly1305.KeySize

	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
)

// ErrMalformed is returned when a sealed blob is too short to contain salt and nonce.
var ErrMalformed = errors.New("sealed value malformed")

func random(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// DeriveKey derives the sealing key from passphrase and salt using Argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, KeyLen)
}

// Seal encrypts plaintext as salt||nonce||ciphertext. aad binds the blob to its slot key.
func Seal(passphrase, aad, plaintext []byte) ([]byte, error) {
	salt, err := random(SaltLen)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	nonce, err := random(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(salt)+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, plaintext, aad)...)
	return out, nil
}

// Open reverses Seal. A wrong passphrase or aad fails authentication.
func Open(passphrase, aad, blob []byte) ([]byte, error) {
	if len(blob) < SaltLen+chacha20poly1305.NonceSizeX {
		return nil, ErrMalformed
	}
	salt := blob[:SaltLen]
	nonce := blob[SaltLen : SaltLen+chacha20poly1305.NonceSizeX]
	ct := blob[SaltLen+chacha20poly1305.NonceSizeX:]
	aead, err := chacha20poly1305.NewX(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, ct, aad)
}
