package ratchet

import (
	"parley/internal/crypto"
	"parley/internal/domain"
	"parley/internal/protocol/envelope"
	"parley/internal/util/memzero"
)

// defaultMaxSkip bounds how far a receiving chain may be advanced to reach a
// single envelope's position.
const defaultMaxSkip = 1000

// Session is the per-conversation ratchet state machine. It owns the root
// key, the sending and receiving chains, the current ratchet key pairs, the
// message counters, and the skipped-key store. Exactly one goroutine may use
// a Session at a time.
type Session struct {
	root domain.RootKey

	localPriv domain.X25519Private
	localPub  domain.X25519Public

	remotePub  domain.X25519Public
	haveRemote bool

	sendCK   domain.ChainKey
	haveSend bool
	recvCK   domain.ChainKey
	haveRecv bool

	sendN uint32
	recvN uint32
	prevN uint32

	maxSkip uint32
	skipped *skippedKeys
}

// Option adjusts session limits at establishment.
type Option func(*Session)

// WithMaxSkip bounds the chain-index gap a single decrypt may bridge.
func WithMaxSkip(n uint32) Option {
	return func(s *Session) { s.maxSkip = n }
}

// WithSkippedCapacity bounds the skipped-key store: perKey entries per remote
// ratchet key and total entries overall.
func WithSkippedCapacity(perKey, total int) Option {
	return func(s *Session) { s.skipped = newSkippedKeys(perKey, total) }
}

// NewInitiator establishes the sending side of a fresh conversation from the
// shared secret produced by the key agreement. The session's ratchet public
// key (carried in every envelope header) is all the responder needs besides
// the same secret.
func NewInitiator(secret domain.SharedSecret, opts ...Option) (*Session, error) {
	s := newSession(opts)
	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		return nil, err
	}
	s.root, s.sendCK = bootstrapKeys(secret)
	s.haveSend = true
	s.localPriv, s.localPub = priv, pub
	return s, nil
}

// NewResponder establishes the receiving side of a fresh conversation.
// initiatorPub is the initiator's first ratchet public key, taken from the
// handshake or the first envelope header.
func NewResponder(
	secret domain.SharedSecret,
	initiatorPub domain.X25519Public,
	opts ...Option,
) (*Session, error) {
	if initiatorPub.IsZero() {
		return nil, ErrNotEstablished
	}
	s := newSession(opts)
	s.root, s.recvCK = bootstrapKeys(secret)
	s.haveRecv = true
	s.remotePub = initiatorPub
	s.haveRemote = true
	return s, nil
}

func newSession(opts []Option) *Session {
	s := &Session{maxSkip: defaultMaxSkip}
	for _, opt := range opts {
		opt(s)
	}
	if s.skipped == nil {
		s.skipped = newSkippedKeys(defaultSkippedPerKey, defaultSkippedTotal)
	}
	return s
}

// LocalPublic returns the session's current ratchet public key.
func (s *Session) LocalPublic() domain.X25519Public { return s.localPub }

// Encrypt advances the sending chain one step and seals plaintext into an
// envelope. The first send after a peer rotation (or, for a responder, the
// first send ever) also performs a DH ratchet step with a freshly generated
// key pair. State commits only if the whole call succeeds.
func (s *Session) Encrypt(plaintext, ad []byte) (*envelope.Envelope, error) {
	if s == nil || s.skipped == nil {
		return nil, ErrNotEstablished
	}
	c := s.clone()

	if !c.haveSend {
		if !c.haveRemote {
			return nil, ErrNotEstablished
		}
		priv, pub, err := crypto.GenerateX25519()
		if err != nil {
			return nil, err
		}
		root, ck, err := stepRoot(c.root, priv, c.remotePub)
		if err != nil {
			return nil, err
		}
		c.prevN = c.sendN
		c.sendN = 0
		c.root = root
		c.localPriv, c.localPub = priv, pub
		c.sendCK = ck
		c.haveSend = true
	}

	next, mk := advanceChain(c.sendCK)
	nonce, err := crypto.NewNonce()
	if err != nil {
		memzero.Zero(mk[:])
		return nil, err
	}

	env := &envelope.Envelope{
		Version:    envelope.Version,
		RatchetPub: append([]byte(nil), c.localPub.Slice()...),
		PrevCount:  c.prevN,
		Count:      c.sendN,
		Nonce:      nonce,
		AD:         ad,
	}
	ct, err := crypto.Seal(mk, nonce, plaintext, env.AuthBytes())
	memzero.Zero(mk[:])
	if err != nil {
		return nil, err
	}
	env.Ciphertext = ct

	c.sendCK = next
	c.sendN++
	c.commit(s)
	return env, nil
}

// Decrypt opens an envelope, walking the receiving chain as needed and
// consulting the skipped-key store for out-of-order positions. A replayed or
// evicted position fails with ErrMessageKeyNotFound; tampering fails with
// crypto.ErrAuthentication. Failed calls leave the session unchanged.
func (s *Session) Decrypt(env *envelope.Envelope) ([]byte, error) {
	if s == nil || s.skipped == nil {
		return nil, ErrNotEstablished
	}
	var hdrPub domain.X25519Public
	copy(hdrPub[:], env.RatchetPub)

	c := s.clone()

	// A cached key covers both delayed messages from a superseded chain and
	// out-of-order positions that were already skipped past.
	if mk, ok := c.skipped.take(hdrPub, env.Count); ok {
		pt, err := c.open(mk, env)
		if err != nil {
			return nil, err
		}
		c.commit(s)
		return pt, nil
	}

	sameKey := c.haveRemote && hdrPub == c.remotePub
	if sameKey && env.Count < c.recvN {
		// Position already consumed and not cached: replay or duplicate.
		return nil, ErrMessageKeyNotFound
	}

	if !sameKey {
		// New remote ratchet key. Close out the old receiving chain, caching
		// any not-yet-consumed positions, then step the root twice: once for
		// the new receiving chain with our current key pair, once for a new
		// sending chain with a fresh one. The second step is what restores
		// security after a compromise, one full round-trip at a time.
		if err := c.skipTo(env.PrevCount); err != nil {
			return nil, err
		}
		root, rck, err := stepRoot(c.root, c.localPriv, hdrPub)
		if err != nil {
			return nil, err
		}
		priv, pub, err := crypto.GenerateX25519()
		if err != nil {
			return nil, err
		}
		root, sck, err := stepRoot(root, priv, hdrPub)
		if err != nil {
			return nil, err
		}
		c.prevN = c.sendN
		c.sendN, c.recvN = 0, 0
		c.root = root
		c.localPriv, c.localPub = priv, pub
		c.remotePub = hdrPub
		c.haveRemote = true
		c.recvCK, c.haveRecv = rck, true
		c.sendCK, c.haveSend = sck, true
	}

	if !c.haveRecv {
		return nil, ErrNotEstablished
	}
	if err := c.skipTo(env.Count); err != nil {
		return nil, err
	}

	next, mk := advanceChain(c.recvCK)
	pt, err := c.open(mk, env)
	if err != nil {
		return nil, err
	}
	c.recvCK = next
	c.recvN++
	c.commit(s)
	return pt, nil
}

// open unseals the ciphertext with mk and wipes the key.
func (c *Session) open(mk domain.MessageKey, env *envelope.Envelope) ([]byte, error) {
	pt, err := crypto.Open(mk, env.Nonce, env.Ciphertext, env.AuthBytes())
	memzero.Zero(mk[:])
	return pt, err
}

// skipTo advances the receiving chain up to (not including) index n, caching
// each intermediate message key. A no-op when the chain is not yet seeded.
func (c *Session) skipTo(n uint32) error {
	if !c.haveRecv || n <= c.recvN {
		return nil
	}
	if n-c.recvN > c.maxSkip {
		return ErrTooManySkipped
	}
	for c.recvN < n {
		next, mk := advanceChain(c.recvCK)
		c.skipped.put(c.remotePub, c.recvN, mk)
		c.recvCK = next
		c.recvN++
	}
	return nil
}

// clone returns a deep working copy; mutations happen there and are committed
// back only on success.
func (s *Session) clone() *Session {
	c := *s
	c.skipped = s.skipped.clone()
	return &c
}

func (c *Session) commit(dst *Session) {
	*dst = *c
}
