package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveTwoKeys expands input keyed on salt into two independent 32-byte
// keys using HKDF-SHA256. Changing any input changes both outputs.
func DeriveTwoKeys(input, salt []byte, info string) (a, b [32]byte) {
	r := hkdf.New(sha256.New, input, salt, []byte(info))
	// Reads from an hkdf reader cannot fail within the expand limit.
	_, _ = io.ReadFull(r, a[:])
	_, _ = io.ReadFull(r, b[:])
	return
}

// DeriveKey performs a single one-way keyed-hash step:
// HMAC-SHA256(key, label) truncated to the hash size.
func DeriveKey(key []byte, label byte) (out [32]byte) {
	h := hmac.New(sha256.New, key)
	h.Write([]byte{label})
	copy(out[:], h.Sum(nil))
	return
}
