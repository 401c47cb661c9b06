package store

import (
	"bytes"
	"time"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"

	"parley/internal/domain"
)

var (
	spkPrefix     = []byte("spk/")
	opkPrefix     = []byte("opk/")
	currentSPKKey = []byte("current_spk")
)

type signedPreKeyRecord struct {
	Priv domain.X25519Private `cbor:"priv"`
	Pub  domain.X25519Public  `cbor:"pub"`
	Sig  []byte               `cbor:"sig"`
	At   int64                `cbor:"at"`
}

type oneTimePreKeyRecord struct {
	Priv domain.X25519Private `cbor:"priv"`
	Pub  domain.X25519Public  `cbor:"pub"`
	At   int64                `cbor:"at"`
}

// SaveSignedPreKey stores a signed pre-key pair with its signature.
func (s *Store) SaveSignedPreKey(
	id domain.SignedPreKeyID,
	priv domain.X25519Private,
	pub domain.X25519Public,
	sig []byte,
) error {
	rec := signedPreKeyRecord{
		Priv: priv,
		Pub:  pub,
		Sig:  append([]byte(nil), sig...),
		At:   time.Now().Unix(),
	}
	return s.put(bucketPreKeys, spkKey(id), rec)
}

// LoadSignedPreKey retrieves a signed pre-key pair by identifier.
func (s *Store) LoadSignedPreKey(
	id domain.SignedPreKeyID,
) (
	priv domain.X25519Private,
	pub domain.X25519Public,
	sig []byte,
	ok bool,
	err error,
) {
	var rec signedPreKeyRecord
	ok, err = s.get(bucketPreKeys, spkKey(id), &rec)
	if err != nil || !ok {
		return
	}
	return rec.Priv, rec.Pub, rec.Sig, true, nil
}

// SaveOneTimePreKeys stores a batch of one-time pre-key pairs.
func (s *Store) SaveOneTimePreKeys(pairs []domain.OneTimePreKeyPair) error {
	now := time.Now().Unix()
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPreKeys)
		for _, p := range pairs {
			raw, err := cbor.Marshal(oneTimePreKeyRecord{Priv: p.Priv, Pub: p.Pub, At: now})
			if err != nil {
				return err
			}
			if err := b.Put(opkKey(p.ID), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

// ConsumeOneTimePreKey loads and deletes a one-time pre-key in one
// transaction so the same pre-key can never serve two handshakes.
func (s *Store) ConsumeOneTimePreKey(id domain.OneTimePreKeyID) (
	priv domain.X25519Private,
	pub domain.X25519Public,
	ok bool,
	err error,
) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPreKeys)
		key := opkKey(id)
		raw := b.Get(key)
		if raw == nil {
			return nil
		}
		var rec oneTimePreKeyRecord
		if err := cbor.Unmarshal(raw, &rec); err != nil {
			return err
		}
		priv, pub, ok = rec.Priv, rec.Pub, true
		return b.Delete(key)
	})
	return
}

// ListOneTimePreKeyPublics returns the remaining one-time pre-key publics.
func (s *Store) ListOneTimePreKeyPublics() ([]domain.OneTimePreKeyPublic, error) {
	var out []domain.OneTimePreKeyPublic
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketPreKeys).Cursor()
		for k, v := c.Seek(opkPrefix); k != nil && bytes.HasPrefix(k, opkPrefix); k, v = c.Next() {
			var rec oneTimePreKeyRecord
			if err := cbor.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, domain.OneTimePreKeyPublic{
				ID:  domain.OneTimePreKeyID(k[len(opkPrefix):]),
				Pub: rec.Pub,
			})
		}
		return nil
	})
	return out, err
}

// SetCurrentSignedPreKeyID marks the signed pre-key to publish in bundles.
func (s *Store) SetCurrentSignedPreKeyID(id domain.SignedPreKeyID) error {
	return s.putRaw(bucketMeta, currentSPKKey, []byte(id))
}

// CurrentSignedPreKeyID returns the currently published signed pre-key.
func (s *Store) CurrentSignedPreKeyID() (domain.SignedPreKeyID, bool, error) {
	raw, ok, err := s.getRaw(bucketMeta, currentSPKKey)
	if err != nil || !ok {
		return "", false, err
	}
	return domain.SignedPreKeyID(raw), true, nil
}

func spkKey(id domain.SignedPreKeyID) []byte {
	return append(append([]byte(nil), spkPrefix...), id...)
}

func opkKey(id domain.OneTimePreKeyID) []byte {
	return append(append([]byte(nil), opkPrefix...), id...)
}

// Compile-time assertion that Store implements domain.PreKeyStore.
var _ domain.PreKeyStore = (*Store)(nil)
