package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"parley/internal/domain"
)

const (
	// NonceSize is the AEAD nonce length in bytes.
	NonceSize = chacha20poly1305.NonceSize
	// TagSize is the authentication tag length appended to ciphertexts.
	TagSize = chacha20poly1305.Overhead
)

// ErrAuthentication is returned by Open when the ciphertext or associated
// data fails verification, or the wrong key or nonce was supplied.
var ErrAuthentication = errors.New("crypto: message authentication failed")

// NewNonce returns a fresh random AEAD nonce.
func NewNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return nonce, nil
}

// Seal encrypts plaintext with the single-use message key, authenticating ad.
func Seal(key domain.MessageKey, nonce, plaintext, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key.Slice())
	if err != nil {
		return nil, fmt.Errorf("aead init: %w", err)
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("aead seal: bad nonce length %d", len(nonce))
	}
	return aead.Seal(nil, nonce, plaintext, ad), nil
}

// Open decrypts and authenticates a ciphertext produced by Seal.
func Open(key domain.MessageKey, nonce, ciphertext, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key.Slice())
	if err != nil {
		return nil, fmt.Errorf("aead init: %w", err)
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("aead open: bad nonce length %d", len(nonce))
	}
	pt, err := aead.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return nil, ErrAuthentication
	}
	return pt, nil
}
