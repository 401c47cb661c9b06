package store

import "parley/internal/domain"

// SavePreKeyBundle caches the last bundle registered for this account.
func (s *Store) SavePreKeyBundle(bundle domain.PreKeyBundle) error {
	return s.put(bucketBundles, []byte(bundle.Username), bundle)
}

// LoadPreKeyBundle returns the cached bundle and whether it was present.
func (s *Store) LoadPreKeyBundle(username domain.Username) (domain.PreKeyBundle, bool, error) {
	var b domain.PreKeyBundle
	ok, err := s.get(bucketBundles, []byte(username), &b)
	if err != nil || !ok {
		return domain.PreKeyBundle{}, false, err
	}
	return b, true, nil
}

// Compile-time assertion that Store implements domain.PreKeyBundleStore.
var _ domain.PreKeyBundleStore = (*Store)(nil)
