package prekey

import (
	"errors"
	"fmt"
	"time"

	"parley/internal/crypto"
	"parley/internal/domain"
)

// ErrNoSignedPreKey is returned when no signed pre-key has been generated yet.
var ErrNoSignedPreKey = errors.New("no signed pre-key available; run register first")

// Service manages pre-key pairs and builds the public bundle.
type Service struct {
	ids     domain.IdentityStore
	prekeys domain.PreKeyStore
	bundles domain.PreKeyBundleStore
}

// New returns a pre-key service over the given stores.
func New(
	ids domain.IdentityStore,
	prekeys domain.PreKeyStore,
	bundles domain.PreKeyBundleStore,
) *Service {
	return &Service{ids: ids, prekeys: prekeys, bundles: bundles}
}

// GenerateAndStorePreKeys creates a signed pre-key pair and count one-time
// pairs, marking the new signed pre-key as current.
func (s *Service) GenerateAndStorePreKeys(
	passphrase string,
	count int,
) (domain.X25519Public, []domain.X25519Public, error) {
	id, err := s.ids.LoadIdentity(passphrase)
	if err != nil {
		return domain.X25519Public{}, nil, err
	}

	// Signed pre-key, bound to the identity by an Ed25519 signature.
	spkPriv, spkPub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.X25519Public{}, nil, err
	}
	spkID := domain.SignedPreKeyID(fmt.Sprintf("spk-%d", time.Now().Unix()))
	sig := crypto.SignEd25519(id.EdPriv, spkPub.Slice())
	if err := s.prekeys.SaveSignedPreKey(spkID, spkPriv, spkPub, sig); err != nil {
		return domain.X25519Public{}, nil, err
	}
	if err := s.prekeys.SetCurrentSignedPreKeyID(spkID); err != nil {
		return domain.X25519Public{}, nil, err
	}

	// One-time pre-keys.
	pairs := make([]domain.OneTimePreKeyPair, 0, count)
	publics := make([]domain.X25519Public, 0, count)
	for i := 0; i < count; i++ {
		priv, pub, err := crypto.GenerateX25519()
		if err != nil {
			return domain.X25519Public{}, nil, err
		}
		opkID := domain.OneTimePreKeyID(fmt.Sprintf("opk-%d-%d", time.Now().Unix(), i))
		pairs = append(pairs, domain.OneTimePreKeyPair{ID: opkID, Priv: priv, Pub: pub})
		publics = append(publics, pub)
	}
	if err := s.prekeys.SaveOneTimePreKeys(pairs); err != nil {
		return domain.X25519Public{}, nil, err
	}
	return spkPub, publics, nil
}

// LoadPreKeyBundle assembles the public bundle from the current signed
// pre-key and remaining one-time publics, caches it, and returns it.
func (s *Service) LoadPreKeyBundle(
	passphrase string,
	username domain.Username,
) (domain.PreKeyBundle, error) {
	id, err := s.ids.LoadIdentity(passphrase)
	if err != nil {
		return domain.PreKeyBundle{}, err
	}

	spkID, ok, err := s.prekeys.CurrentSignedPreKeyID()
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	if !ok {
		return domain.PreKeyBundle{}, ErrNoSignedPreKey
	}
	_, spkPub, sig, found, err := s.prekeys.LoadSignedPreKey(spkID)
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	if !found {
		return domain.PreKeyBundle{}, ErrNoSignedPreKey
	}

	oneTime, err := s.prekeys.ListOneTimePreKeyPublics()
	if err != nil {
		return domain.PreKeyBundle{}, err
	}

	bundle := domain.PreKeyBundle{
		Username:              username,
		IdentityKey:           id.XPub,
		SigningKey:            id.EdPub,
		SignedPreKeyID:        spkID,
		SignedPreKey:          spkPub,
		SignedPreKeySignature: sig,
		OneTimePreKeys:        oneTime,
	}
	if err := s.bundles.SavePreKeyBundle(bundle); err != nil {
		return domain.PreKeyBundle{}, err
	}
	return bundle, nil
}

// Compile-time assertion that Service implements domain.PreKeyService.
var _ domain.PreKeyService = (*Service)(nil)
