package message

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"parley/internal/domain"
	"parley/internal/protocol/envelope"
	"parley/internal/protocol/ratchet"
	"parley/internal/protocol/x3dh"
)

var (
	// ErrNoSession is returned when sending to a peer without an established
	// session.
	ErrNoSession = errors.New("no session with peer; start one first")
	// ErrUnknownSignedPreKey is returned when a first message references a
	// signed pre-key this account no longer holds.
	ErrUnknownSignedPreKey = errors.New("handshake references unknown signed pre-key")
	// ErrOneTimePreKeyConsumed is returned when a first message references a
	// one-time pre-key that was already used up.
	ErrOneTimePreKeyConsumed = errors.New("handshake references consumed one-time pre-key")
)

// Service encrypts outgoing and decrypts incoming messages, keeping the
// per-peer ratchet state in the conversation store.
type Service struct {
	ids      domain.IdentityStore
	prekeys  domain.PreKeyStore
	sessions domain.SessionStore
	convs    domain.ConversationStore
	relay    domain.RelayClient
}

// New returns a message service over the given stores and relay client.
func New(
	ids domain.IdentityStore,
	prekeys domain.PreKeyStore,
	sessions domain.SessionStore,
	convs domain.ConversationStore,
	relay domain.RelayClient,
) *Service {
	return &Service{
		ids:      ids,
		prekeys:  prekeys,
		sessions: sessions,
		convs:    convs,
		relay:    relay,
	}
}

// SendMessage seals plaintext for to and submits it to the relay. The first
// message of a conversation carries the handshake parameters the peer needs
// to derive the same secret. Ratchet state is persisted before the envelope
// leaves the machine, so a relay failure can never replay a message key.
func (s *Service) SendMessage(
	ctx context.Context,
	passphrase string,
	from domain.Username,
	to domain.Username,
	plaintext []byte,
) error {
	sess, ok, err := s.sessions.LoadSession(to)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSession
	}

	blob, found, err := s.convs.LoadConversation(domain.PeerID(to))
	if err != nil {
		return err
	}

	var dr *ratchet.Session
	var hs *domain.PreKeyMessage
	if found {
		dr = new(ratchet.Session)
		if err := dr.UnmarshalBinary(blob); err != nil {
			return fmt.Errorf("conversation state for %s: %w", to, err)
		}
	} else {
		dr, err = ratchet.NewInitiator(sess.Secret)
		if err != nil {
			return err
		}
		id, err := s.ids.LoadIdentity(passphrase)
		if err != nil {
			return err
		}
		hs = &domain.PreKeyMessage{
			InitiatorIdentityKey: id.XPub,
			EphemeralKey:         sess.InitiatorEphemeralKey,
			SignedPreKeyID:       sess.SignedPreKeyID,
			OneTimePreKeyID:      sess.OneTimePreKeyID,
		}
	}

	env, err := dr.Encrypt(plaintext, authContext(from, to))
	if err != nil {
		return err
	}
	env.Handshake = hs

	payload, err := envelope.Encode(env)
	if err != nil {
		return err
	}
	state, err := dr.MarshalBinary()
	if err != nil {
		return err
	}
	if err := s.convs.SaveConversation(domain.PeerID(to), state); err != nil {
		return err
	}

	return s.relay.SendMessage(ctx, domain.Envelope{
		From:      from,
		To:        to,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	})
}

// ReceiveMessages drains up to limit envelopes from the relay queue in order,
// decrypting each against its conversation. Envelopes that can never decrypt
// (malformed, replayed, tampered) are dropped and acknowledged so they cannot
// wedge the queue. A first message from an unknown peer without handshake
// parameters stops the drain, leaving it and everything behind it queued.
func (s *Service) ReceiveMessages(
	ctx context.Context,
	passphrase string,
	me domain.Username,
	limit int,
) ([]domain.DecryptedMessage, error) {
	queued, err := s.relay.FetchMessages(ctx, me, limit)
	if err != nil {
		return nil, err
	}

	var out []domain.DecryptedMessage
	processed := 0
	for _, wire := range queued {
		env, err := envelope.Decode(wire.Payload)
		if err != nil {
			// Structurally broken; it will never parse. Drop it.
			processed++
			continue
		}

		blob, found, err := s.convs.LoadConversation(domain.PeerID(wire.From))
		if err != nil {
			return out, s.ackThenErr(ctx, me, processed, err)
		}

		var dr *ratchet.Session
		if found {
			dr = new(ratchet.Session)
			if err := dr.UnmarshalBinary(blob); err != nil {
				return out, s.ackThenErr(ctx, me, processed,
					fmt.Errorf("conversation state for %s: %w", wire.From, err))
			}
		} else {
			if env.Handshake == nil {
				// No conversation and no handshake: the opening message may
				// still be in flight behind this one. Stop and retry later.
				break
			}
			dr, err = s.openConversation(passphrase, env)
			if err != nil {
				return out, s.ackThenErr(ctx, me, processed, err)
			}
		}

		if !bytes.Equal(env.AD, authContext(wire.From, me)) {
			// Bound to a different sender/recipient pair; reflected or
			// misrouted. Drop it.
			processed++
			continue
		}

		pt, err := dr.Decrypt(env)
		if err != nil {
			// Replay, eviction, or tampering. Retrying cannot help.
			processed++
			continue
		}

		state, err := dr.MarshalBinary()
		if err != nil {
			return out, s.ackThenErr(ctx, me, processed, err)
		}
		if err := s.convs.SaveConversation(domain.PeerID(wire.From), state); err != nil {
			return out, s.ackThenErr(ctx, me, processed, err)
		}

		out = append(out, domain.DecryptedMessage{
			From:      wire.From,
			To:        wire.To,
			Plaintext: pt,
			Timestamp: wire.Timestamp,
		})
		processed++
	}

	if processed > 0 {
		if err := s.relay.AckMessages(ctx, me, processed); err != nil {
			return out, err
		}
	}
	return out, nil
}

// openConversation derives the shared secret from a first message's handshake
// parameters and seeds the responder side of the ratchet.
func (s *Service) openConversation(
	passphrase string,
	env *envelope.Envelope,
) (*ratchet.Session, error) {
	hs := env.Handshake
	id, err := s.ids.LoadIdentity(passphrase)
	if err != nil {
		return nil, err
	}

	spkPriv, _, _, found, err := s.prekeys.LoadSignedPreKey(hs.SignedPreKeyID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUnknownSignedPreKey
	}

	var opkPriv *domain.X25519Private
	if hs.OneTimePreKeyID != "" {
		priv, _, ok, err := s.prekeys.ConsumeOneTimePreKey(hs.OneTimePreKeyID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrOneTimePreKeyConsumed
		}
		opkPriv = &priv
	}

	secret, err := x3dh.ResponderSecret(id, spkPriv, opkPriv, *hs)
	if err != nil {
		return nil, err
	}

	var initiatorPub domain.X25519Public
	copy(initiatorPub[:], env.RatchetPub)
	return ratchet.NewResponder(secret, initiatorPub)
}

// ackThenErr acknowledges the envelopes consumed so far before surfacing err,
// so a later retry resumes at the right queue position.
func (s *Service) ackThenErr(
	ctx context.Context,
	me domain.Username,
	processed int,
	err error,
) error {
	if processed > 0 {
		if ackErr := s.relay.AckMessages(ctx, me, processed); ackErr != nil {
			return errors.Join(err, ackErr)
		}
	}
	return err
}

// authContext binds a ciphertext to its sender and recipient.
func authContext(from, to domain.Username) []byte {
	return []byte("parley:" + string(from) + ">" + string(to))
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
