package store

import "parley/internal/domain"

// SaveConversation stores the serialized ratchet state for peer. The blob is
// opaque here; only the ratchet package interprets it.
func (s *Store) SaveConversation(peer domain.PeerID, state []byte) error {
	return s.putRaw(bucketConversations, []byte(peer), state)
}

// LoadConversation retrieves the serialized ratchet state for peer.
func (s *Store) LoadConversation(peer domain.PeerID) ([]byte, bool, error) {
	return s.getRaw(bucketConversations, []byte(peer))
}

// Compile-time assertion that Store implements domain.ConversationStore.
var _ domain.ConversationStore = (*Store)(nil)
