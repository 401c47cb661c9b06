package store

import "parley/internal/domain"

// SaveSession writes a key-agreement session record for peer.
func (s *Store) SaveSession(peer domain.Username, session domain.Session) error {
	return s.put(bucketSessions, []byte(peer), session)
}

// LoadSession retrieves a stored session for peer.
func (s *Store) LoadSession(peer domain.Username) (domain.Session, bool, error) {
	var sess domain.Session
	ok, err := s.get(bucketSessions, []byte(peer), &sess)
	if err != nil || !ok {
		return domain.Session{}, false, err
	}
	return sess, true, nil
}

// Compile-time assertion that Store implements domain.SessionStore.
var _ domain.SessionStore = (*Store)(nil)
