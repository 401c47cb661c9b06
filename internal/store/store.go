package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"
)

const dbFile = "parley.db"

var (
	bucketIdentity      = []byte("identity")
	bucketPreKeys       = []byte("prekeys")
	bucketMeta          = []byte("meta")
	bucketBundles       = []byte("bundles")
	bucketSessions      = []byte("sessions")
	bucketConversations = []byte("conversations")
)

// Store is the single on-disk database behind all persistence interfaces.
type Store struct {
	db *bolt.DB
}

// Open creates or opens the database under dir and ensures all buckets exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(filepath.Join(dir, dbFile), 0o600, &bolt.Options{
		Timeout: 2 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbFile, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{
			bucketIdentity, bucketPreKeys, bucketMeta,
			bucketBundles, bucketSessions, bucketConversations,
		} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database file.
func (s *Store) Close() error { return s.db.Close() }

// put CBOR-encodes v under (bucket, key).
func (s *Store) put(bucket, key []byte, v any) error {
	b, err := cbor.Marshal(v)
	if err != nil {
		return err
	}
	return s.putRaw(bucket, key, b)
}

func (s *Store) putRaw(bucket, key, val []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(key, val)
	})
}

// get decodes (bucket, key) into out, reporting whether the key existed.
func (s *Store) get(bucket, key []byte, out any) (bool, error) {
	raw, ok, err := s.getRaw(bucket, key)
	if err != nil || !ok {
		return ok, err
	}
	return true, cbor.Unmarshal(raw, out)
}

func (s *Store) getRaw(bucket, key []byte) ([]byte, bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get(key); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return raw, raw != nil, nil
}
