package store

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"parley/internal/util/memzero"
)

// keystoreFormatVersion guards the encrypted blob layout stored on disk.
const keystoreFormatVersion = 1

// errWrongPassphrase is returned when the passphrase is incorrect or the
// ciphertext has been modified or corrupted.
var errWrongPassphrase = errors.New("wrong passphrase or corrupted identity")

// keystoreBlob holds the ciphertext and KDF parameters for an encrypted record.
type keystoreBlob struct {
	V      int    `cbor:"v"`
	Salt   []byte `cbor:"salt"`
	N      int    `cbor:"scrypt_n"`
	R      int    `cbor:"scrypt_r"`
	P      int    `cbor:"scrypt_p"`
	Cipher []byte `cbor:"cipher"`
}

// sealSecret derives a key from passphrase and seals raw into a blob.
func sealSecret(passphrase string, raw []byte, N, r, p int) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	// Zero nonce: the salt-bound key is unique per seal.
	var nonce [chacha20poly1305.NonceSize]byte
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return cbor.Marshal(keystoreBlob{
		V:      keystoreFormatVersion,
		Salt:   salt[:],
		N:      N,
		R:      r,
		P:      p,
		Cipher: ct,
	})
}

// openSecret opens a blob using a key derived from passphrase.
func openSecret(passphrase string, b []byte) ([]byte, error) {
	var bl keystoreBlob
	if err := cbor.Unmarshal(b, &bl); err != nil {
		return nil, err
	}
	if bl.V > keystoreFormatVersion {
		return nil, fmt.Errorf("unsupported keystore version %d", bl.V)
	}

	key, err := scrypt.Key([]byte(passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], bl.Cipher, bl.Salt)
	if err != nil {
		return nil, errWrongPassphrase
	}
	return pt, nil
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }
