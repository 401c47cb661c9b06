package store

import (
	"errors"

	"github.com/fxamacker/cbor/v2"

	"parley/internal/domain"
)

var identityKey = []byte("local")

// ErrNoIdentity is returned when no identity has been generated yet.
var ErrNoIdentity = errors.New("no identity found; run init first")

// SaveIdentity encrypts the identity with the passphrase and stores it.
func (s *Store) SaveIdentity(passphrase string, id domain.Identity) error {
	raw, err := cbor.Marshal(id)
	if err != nil {
		return err
	}
	N, r, p := scryptParamsDefault()
	blob, err := sealSecret(passphrase, raw, N, r, p)
	if err != nil {
		return err
	}
	return s.putRaw(bucketIdentity, identityKey, blob)
}

// LoadIdentity decrypts and returns the stored identity.
func (s *Store) LoadIdentity(passphrase string) (domain.Identity, error) {
	blob, ok, err := s.getRaw(bucketIdentity, identityKey)
	if err != nil {
		return domain.Identity{}, err
	}
	if !ok {
		return domain.Identity{}, ErrNoIdentity
	}
	raw, err := openSecret(passphrase, blob)
	if err != nil {
		return domain.Identity{}, err
	}
	var id domain.Identity
	if err := cbor.Unmarshal(raw, &id); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

// Compile-time assertion that Store implements domain.IdentityStore.
var _ domain.IdentityStore = (*Store)(nil)
