package session

import (
	"context"
	"fmt"
	"time"

	"parley/internal/domain"
	"parley/internal/protocol/x3dh"
)

// Service establishes and retrieves sessions.
type Service struct {
	ids      domain.IdentityStore
	sessions domain.SessionStore
	relay    domain.RelayClient
}

// New returns a session service over the given stores and relay client.
func New(
	ids domain.IdentityStore,
	sessions domain.SessionStore,
	relay domain.RelayClient,
) *Service {
	return &Service{ids: ids, sessions: sessions, relay: relay}
}

// InitiateSession fetches peer's bundle from the relay, runs the initiator
// side of the handshake, and persists the resulting session.
func (s *Service) InitiateSession(
	ctx context.Context,
	passphrase string,
	peer domain.Username,
) (domain.Session, error) {
	id, err := s.ids.LoadIdentity(passphrase)
	if err != nil {
		return domain.Session{}, err
	}

	bundle, err := s.relay.FetchPreKeyBundle(ctx, peer)
	if err != nil {
		return domain.Session{}, fmt.Errorf("fetch pre-key bundle for %s: %w", peer, err)
	}

	secret, spkID, opkID, ephPub, err := x3dh.InitiatorSecret(id, bundle)
	if err != nil {
		return domain.Session{}, err
	}

	sess := domain.Session{
		PeerUsername:          peer,
		Secret:                secret,
		PeerIdentityKey:       bundle.IdentityKey,
		PeerSignedPreKey:      bundle.SignedPreKey,
		SignedPreKeyID:        spkID,
		OneTimePreKeyID:       opkID,
		InitiatorEphemeralKey: ephPub,
		CreatedUTC:            time.Now().Unix(),
	}
	if err := s.sessions.SaveSession(peer, sess); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// GetSession returns the stored session for peer, if any.
func (s *Service) GetSession(peer domain.Username) (domain.Session, bool, error) {
	return s.sessions.LoadSession(peer)
}

// Compile-time assertion that Service implements domain.SessionService.
var _ domain.SessionService = (*Service)(nil)
