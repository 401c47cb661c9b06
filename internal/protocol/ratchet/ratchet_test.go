package ratchet_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"parley/internal/crypto"
	"parley/internal/domain"
	"parley/internal/protocol/envelope"
	"parley/internal/protocol/ratchet"
)

func newSecret(t *testing.T) domain.SharedSecret {
	t.Helper()
	var s domain.SharedSecret
	_, err := rand.Read(s[:])
	require.NoError(t, err)
	return s
}

// pairedSessions establishes both ends of a conversation from one secret.
func pairedSessions(t *testing.T, opts ...ratchet.Option) (a, b *ratchet.Session) {
	t.Helper()
	secret := newSecret(t)
	a, err := ratchet.NewInitiator(secret, opts...)
	require.NoError(t, err)
	b, err = ratchet.NewResponder(secret, a.LocalPublic(), opts...)
	require.NoError(t, err)
	return a, b
}

func encrypt(t *testing.T, s *ratchet.Session, msg string) *envelope.Envelope {
	t.Helper()
	env, err := s.Encrypt([]byte(msg), nil)
	require.NoError(t, err)
	return env
}

func decrypt(t *testing.T, s *ratchet.Session, env *envelope.Envelope) string {
	t.Helper()
	pt, err := s.Decrypt(env)
	require.NoError(t, err)
	return string(pt)
}

func TestStrictOrderRoundTrip(t *testing.T) {
	a, b := pairedSessions(t)

	for i := 0; i < 5; i++ {
		require.Equal(t, "ping", decrypt(t, b, encrypt(t, a, "ping")))
	}
	for i := 0; i < 5; i++ {
		require.Equal(t, "pong", decrypt(t, a, encrypt(t, b, "pong")))
	}
}

func TestAssociatedDataRoundTrip(t *testing.T) {
	a, b := pairedSessions(t)

	env, err := a.Encrypt([]byte("payload"), []byte("alice>bob"))
	require.NoError(t, err)
	require.Equal(t, []byte("alice>bob"), env.AD)

	pt, err := b.Decrypt(env)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), pt)
}

func TestBidirectionalRatchetSteps(t *testing.T) {
	a, b := pairedSessions(t)

	// Each full round trip rotates both ratchet key pairs.
	for round := 0; round < 5; round++ {
		require.Equal(t, "a", decrypt(t, b, encrypt(t, a, "a")))
		require.Equal(t, "a2", decrypt(t, b, encrypt(t, a, "a2")))
		require.Equal(t, "b", decrypt(t, a, encrypt(t, b, "b")))
	}
}

func TestOutOfOrderDelivery(t *testing.T) {
	a, b := pairedSessions(t)

	m1 := encrypt(t, a, "one")
	m2 := encrypt(t, a, "two")
	m3 := encrypt(t, a, "three")

	require.Equal(t, "three", decrypt(t, b, m3))
	require.Equal(t, "one", decrypt(t, b, m1))
	require.Equal(t, "two", decrypt(t, b, m2))
}

func TestOutOfOrderAcrossRatchetStep(t *testing.T) {
	a, b := pairedSessions(t)

	m0 := encrypt(t, a, "m0")
	m1 := encrypt(t, a, "m1") // delayed past the ratchet step below

	require.Equal(t, "m0", decrypt(t, b, m0))
	require.Equal(t, "r0", decrypt(t, a, encrypt(t, b, "r0")))

	// New sending chain on a's side after the round trip.
	m2 := encrypt(t, a, "m2")
	require.Equal(t, "m2", decrypt(t, b, m2))

	// The delayed message from the superseded chain still decrypts.
	require.Equal(t, "m1", decrypt(t, b, m1))
}

func TestReplayRejected(t *testing.T) {
	a, b := pairedSessions(t)

	env := encrypt(t, a, "once")
	require.Equal(t, "once", decrypt(t, b, env))

	_, err := b.Decrypt(env)
	require.ErrorIs(t, err, ratchet.ErrMessageKeyNotFound)
}

func TestReplayOfSkippedKeyRejected(t *testing.T) {
	a, b := pairedSessions(t)

	m0 := encrypt(t, a, "zero")
	m1 := encrypt(t, a, "one")

	require.Equal(t, "one", decrypt(t, b, m1))
	require.Equal(t, "zero", decrypt(t, b, m0))

	_, err := b.Decrypt(m0)
	require.ErrorIs(t, err, ratchet.ErrMessageKeyNotFound)
}

func TestTamperDetected(t *testing.T) {
	a, b := pairedSessions(t)

	env := encrypt(t, a, "intact")
	env.Ciphertext[0] ^= 0x01
	_, err := b.Decrypt(env)
	require.ErrorIs(t, err, crypto.ErrAuthentication)

	// The failed call must not have advanced the chain.
	env.Ciphertext[0] ^= 0x01
	require.Equal(t, "intact", decrypt(t, b, env))
}

func TestTamperedAssociatedData(t *testing.T) {
	a, b := pairedSessions(t)

	env, err := a.Encrypt([]byte("payload"), []byte("context"))
	require.NoError(t, err)

	env.AD = []byte("Context")
	_, err = b.Decrypt(env)
	require.ErrorIs(t, err, crypto.ErrAuthentication)
}

func TestTamperedHeaderCounter(t *testing.T) {
	a, b := pairedSessions(t)

	_ = encrypt(t, a, "zero")
	env := encrypt(t, a, "one")

	// Rewriting the index to a not-yet-used position must fail
	// authentication, not silently decrypt at the wrong position.
	env.Count = 5
	_, err := b.Decrypt(env)
	require.ErrorIs(t, err, crypto.ErrAuthentication)
}

func TestSkippedKeyEviction(t *testing.T) {
	a, b := pairedSessions(t, ratchet.WithSkippedCapacity(3, 3))

	envs := make([]*envelope.Envelope, 5)
	for i := range envs {
		envs[i] = encrypt(t, a, "msg")
	}

	// Jumping to the last position caches four keys; capacity three means
	// the earliest-skipped position is evicted, not a crash.
	require.Equal(t, "msg", decrypt(t, b, envs[4]))

	_, err := b.Decrypt(envs[0])
	require.ErrorIs(t, err, ratchet.ErrMessageKeyNotFound)

	require.Equal(t, "msg", decrypt(t, b, envs[1]))
	require.Equal(t, "msg", decrypt(t, b, envs[2]))
	require.Equal(t, "msg", decrypt(t, b, envs[3]))
}

func TestMaxSkipEnforced(t *testing.T) {
	a, b := pairedSessions(t, ratchet.WithMaxSkip(5))

	var last *envelope.Envelope
	first := encrypt(t, a, "first")
	for i := 0; i < 7; i++ {
		last = encrypt(t, a, "later")
	}

	_, err := b.Decrypt(last)
	require.ErrorIs(t, err, ratchet.ErrTooManySkipped)

	// The rejected call must not have advanced the receiving chain.
	require.Equal(t, "first", decrypt(t, b, first))
}

func TestStateSaveResume(t *testing.T) {
	a, b := pairedSessions(t)

	require.Equal(t, "before", decrypt(t, b, encrypt(t, a, "before")))

	// Leave a skipped position behind so the store round-trips too.
	delayed := encrypt(t, a, "delayed")
	require.Equal(t, "after-gap", decrypt(t, b, encrypt(t, a, "after-gap")))

	blobA, err := a.MarshalBinary()
	require.NoError(t, err)
	blobB, err := b.MarshalBinary()
	require.NoError(t, err)

	var a2, b2 ratchet.Session
	require.NoError(t, a2.UnmarshalBinary(blobA))
	require.NoError(t, b2.UnmarshalBinary(blobB))

	require.Equal(t, "delayed", decrypt(t, &b2, delayed))
	require.Equal(t, "resumed", decrypt(t, &b2, encrypt(t, &a2, "resumed")))
	require.Equal(t, "reply", decrypt(t, &a2, encrypt(t, &b2, "reply")))
}

func TestLoadRejectsGarbageState(t *testing.T) {
	var s ratchet.Session
	require.ErrorIs(t, s.UnmarshalBinary([]byte("not cbor")), ratchet.ErrBadState)
	require.ErrorIs(t, s.UnmarshalBinary(nil), ratchet.ErrBadState)
}

func TestForwardSecrecy(t *testing.T) {
	a, b := pairedSessions(t)

	m0 := encrypt(t, a, "past")
	require.Equal(t, "past", decrypt(t, b, m0))
	require.Equal(t, "present", decrypt(t, b, encrypt(t, a, "present")))

	// Attacker snapshots b's state after both messages were consumed. The
	// chain only moves forward, so the old position is unreachable.
	stolen, err := b.MarshalBinary()
	require.NoError(t, err)

	var attacker ratchet.Session
	require.NoError(t, attacker.UnmarshalBinary(stolen))
	_, err = attacker.Decrypt(m0)
	require.ErrorIs(t, err, ratchet.ErrMessageKeyNotFound)
}

func TestPostCompromiseRecovery(t *testing.T) {
	a, b := pairedSessions(t)

	require.Equal(t, "m0", decrypt(t, b, encrypt(t, a, "m0")))

	// Attacker snapshots a's full state here.
	stolen, err := a.MarshalBinary()
	require.NoError(t, err)

	// One full round trip with fresh key pairs on both sides.
	require.Equal(t, "r0", decrypt(t, a, encrypt(t, b, "r0")))
	require.Equal(t, "m1", decrypt(t, b, encrypt(t, a, "m1")))

	// Messages after the round trip are independent of the stolen state.
	var attacker ratchet.Session
	require.NoError(t, attacker.UnmarshalBinary(stolen))
	env := encrypt(t, b, "post-recovery")
	_, err = attacker.Decrypt(env)
	require.Error(t, err)
	require.Equal(t, "post-recovery", decrypt(t, a, env))
}

func TestEncryptBeforeEstablishmentFails(t *testing.T) {
	var s ratchet.Session
	_, err := s.Encrypt([]byte("x"), nil)
	require.ErrorIs(t, err, ratchet.ErrNotEstablished)

	_, err = s.Decrypt(&envelope.Envelope{})
	require.ErrorIs(t, err, ratchet.ErrNotEstablished)
}

func TestResponderRequiresInitiatorKey(t *testing.T) {
	_, err := ratchet.NewResponder(newSecret(t), domain.X25519Public{})
	require.ErrorIs(t, err, ratchet.ErrNotEstablished)
}
