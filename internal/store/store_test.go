package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"parley/internal/domain"
	"parley/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestIdentitySaveLoad(t *testing.T) {
	s := openStore(t)

	id := domain.Identity{
		XPub:   domain.X25519Public{1},
		XPriv:  domain.X25519Private{2},
		EdPub:  domain.Ed25519Public{3},
		EdPriv: domain.Ed25519Private{4},
	}
	require.NoError(t, s.SaveIdentity("passphrase", id))

	got, err := s.LoadIdentity("passphrase")
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestIdentityWrongPassphrase(t *testing.T) {
	s := openStore(t)

	id := domain.Identity{XPub: domain.X25519Public{1}}
	require.NoError(t, s.SaveIdentity("correct", id))

	_, err := s.LoadIdentity("wrong")
	require.Error(t, err)
}

func TestIdentityMissing(t *testing.T) {
	s := openStore(t)
	_, err := s.LoadIdentity("any")
	require.ErrorIs(t, err, store.ErrNoIdentity)
}

func TestSignedPreKeyRoundTrip(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.SaveSignedPreKey(
		"spk-1",
		domain.X25519Private{9},
		domain.X25519Public{8},
		[]byte("sig"),
	))
	require.NoError(t, s.SetCurrentSignedPreKeyID("spk-1"))

	id, ok, err := s.CurrentSignedPreKeyID()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.SignedPreKeyID("spk-1"), id)

	priv, pub, sig, ok, err := s.LoadSignedPreKey("spk-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.X25519Private{9}, priv)
	require.Equal(t, domain.X25519Public{8}, pub)
	require.Equal(t, []byte("sig"), sig)
}

func TestOneTimePreKeyConsumeOnce(t *testing.T) {
	s := openStore(t)

	pairs := []domain.OneTimePreKeyPair{
		{ID: "opk-1", Priv: domain.X25519Private{1}, Pub: domain.X25519Public{2}},
		{ID: "opk-2", Priv: domain.X25519Private{3}, Pub: domain.X25519Public{4}},
	}
	require.NoError(t, s.SaveOneTimePreKeys(pairs))

	publics, err := s.ListOneTimePreKeyPublics()
	require.NoError(t, err)
	require.Len(t, publics, 2)

	priv, pub, ok, err := s.ConsumeOneTimePreKey("opk-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.X25519Private{1}, priv)
	require.Equal(t, domain.X25519Public{2}, pub)

	// Consumed means gone.
	_, _, ok, err = s.ConsumeOneTimePreKey("opk-1")
	require.NoError(t, err)
	require.False(t, ok)

	publics, err = s.ListOneTimePreKeyPublics()
	require.NoError(t, err)
	require.Len(t, publics, 1)
	require.Equal(t, domain.OneTimePreKeyID("opk-2"), publics[0].ID)
}

func TestSessionRoundTrip(t *testing.T) {
	s := openStore(t)

	sess := domain.Session{
		PeerUsername:   "bob",
		Secret:         domain.SharedSecret{7},
		SignedPreKeyID: "spk-1",
		CreatedUTC:     1234,
	}
	require.NoError(t, s.SaveSession("bob", sess))

	got, ok, err := s.LoadSession("bob")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, sess, got)

	_, ok, err = s.LoadSession("nobody")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConversationRoundTrip(t *testing.T) {
	s := openStore(t)

	blob := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, s.SaveConversation("bob", blob))

	got, ok, err := s.LoadConversation("bob")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, blob, got)

	_, ok, err = s.LoadConversation("nobody")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBundleCacheRoundTrip(t *testing.T) {
	s := openStore(t)

	bundle := domain.PreKeyBundle{
		Username:       "alice",
		SignedPreKeyID: "spk-7",
	}
	require.NoError(t, s.SavePreKeyBundle(bundle))

	got, ok, err := s.LoadPreKeyBundle("alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bundle, got)
}
