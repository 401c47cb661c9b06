package message_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"parley/internal/domain"
	"parley/internal/relay"
	"parley/internal/services/identity"
	"parley/internal/services/message"
	"parley/internal/services/prekey"
	"parley/internal/services/session"
	"parley/internal/store"
)

const (
	alicePass = "Correct-horse1!"
	bobPass   = "Battery-staple2!"
)

type party struct {
	name     domain.Username
	pass     string
	store    *store.Store
	identity *identity.Service
	prekeys  *prekey.Service
	sessions *session.Service
	messages *message.Service
}

func newParty(t *testing.T, name domain.Username, pass string, rc *relay.Client) *party {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	p := &party{
		name:     name,
		pass:     pass,
		store:    st,
		identity: identity.New(st),
		prekeys:  prekey.New(st, st, st),
		sessions: session.New(st, st, rc),
		messages: message.New(st, st, st, st, rc),
	}
	_, _, err = p.identity.GenerateIdentity(pass)
	require.NoError(t, err)
	return p
}

func (p *party) register(t *testing.T, ctx context.Context, rc *relay.Client, opkCount int) {
	t.Helper()
	_, _, err := p.prekeys.GenerateAndStorePreKeys(p.pass, opkCount)
	require.NoError(t, err)
	bundle, err := p.prekeys.LoadPreKeyBundle(p.pass, p.name)
	require.NoError(t, err)
	require.NoError(t, rc.RegisterPreKeyBundle(ctx, bundle))
}

func TestConversationRoundTrip(t *testing.T) {
	ctx := context.Background()
	ts := httptest.NewServer(relay.NewServer(nil).Handler())
	defer ts.Close()
	rc := relay.NewClient(ts.URL, ts.Client())

	alice := newParty(t, "alice", alicePass, rc)
	bob := newParty(t, "bob", bobPass, rc)
	bob.register(t, ctx, rc, 2)

	_, err := alice.sessions.InitiateSession(ctx, alice.pass, bob.name)
	require.NoError(t, err)

	// First contact carries the handshake; Bob opens the conversation from it.
	require.NoError(t, alice.messages.SendMessage(ctx, alice.pass, alice.name, bob.name, []byte("hello bob")))
	got, err := bob.messages.ReceiveMessages(ctx, bob.pass, bob.name, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, alice.name, got[0].From)
	require.Equal(t, []byte("hello bob"), got[0].Plaintext)

	// The one-time pre-key Alice used is gone.
	remaining, err := bob.store.ListOneTimePreKeyPublics()
	require.NoError(t, err)
	require.Len(t, remaining, 1)

	// Reply and a few more rounds, exercising the ratchet both ways.
	require.NoError(t, bob.messages.SendMessage(ctx, bob.pass, bob.name, alice.name, []byte("hi alice")))
	got, err = alice.messages.ReceiveMessages(ctx, alice.pass, alice.name, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []byte("hi alice"), got[0].Plaintext)

	for i := 0; i < 3; i++ {
		require.NoError(t, alice.messages.SendMessage(ctx, alice.pass, alice.name, bob.name, []byte("ping")))
		require.NoError(t, bob.messages.SendMessage(ctx, bob.pass, bob.name, alice.name, []byte("pong")))
	}
	got, err = bob.messages.ReceiveMessages(ctx, bob.pass, bob.name, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	got, err = alice.messages.ReceiveMessages(ctx, alice.pass, alice.name, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Everything acknowledged; the queues are drained.
	got, err = bob.messages.ReceiveMessages(ctx, bob.pass, bob.name, 0)
	require.NoError(t, err)
	require.Empty(t, got)
	got, err = alice.messages.ReceiveMessages(ctx, alice.pass, alice.name, 0)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSendWithoutSession(t *testing.T) {
	ctx := context.Background()
	ts := httptest.NewServer(relay.NewServer(nil).Handler())
	defer ts.Close()
	rc := relay.NewClient(ts.URL, ts.Client())

	alice := newParty(t, "alice", alicePass, rc)
	err := alice.messages.SendMessage(ctx, alice.pass, alice.name, "stranger", []byte("hello?"))
	require.ErrorIs(t, err, message.ErrNoSession)
}

func TestBurstBeforeFirstReceive(t *testing.T) {
	ctx := context.Background()
	ts := httptest.NewServer(relay.NewServer(nil).Handler())
	defer ts.Close()
	rc := relay.NewClient(ts.URL, ts.Client())

	alice := newParty(t, "alice", alicePass, rc)
	bob := newParty(t, "bob", bobPass, rc)
	bob.register(t, ctx, rc, 1)

	_, err := alice.sessions.InitiateSession(ctx, alice.pass, bob.name)
	require.NoError(t, err)

	// Several messages pile up before Bob ever connects. Only the first
	// carries the handshake; the rest ride the already-advanced chain.
	want := []string{"one", "two", "three"}
	for _, m := range want {
		require.NoError(t, alice.messages.SendMessage(ctx, alice.pass, alice.name, bob.name, []byte(m)))
	}
	got, err := bob.messages.ReceiveMessages(ctx, bob.pass, bob.name, 0)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i, m := range want {
		require.Equal(t, []byte(m), got[i].Plaintext)
	}
}

func TestReceiveLimit(t *testing.T) {
	ctx := context.Background()
	ts := httptest.NewServer(relay.NewServer(nil).Handler())
	defer ts.Close()
	rc := relay.NewClient(ts.URL, ts.Client())

	alice := newParty(t, "alice", alicePass, rc)
	bob := newParty(t, "bob", bobPass, rc)
	bob.register(t, ctx, rc, 1)

	_, err := alice.sessions.InitiateSession(ctx, alice.pass, bob.name)
	require.NoError(t, err)
	for _, m := range []string{"a", "b", "c"} {
		require.NoError(t, alice.messages.SendMessage(ctx, alice.pass, alice.name, bob.name, []byte(m)))
	}

	got, err := bob.messages.ReceiveMessages(ctx, bob.pass, bob.name, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// The remainder is still queued for the next drain.
	got, err = bob.messages.ReceiveMessages(ctx, bob.pass, bob.name, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []byte("c"), got[0].Plaintext)
}

func TestReplayedEnvelopeDropped(t *testing.T) {
	ctx := context.Background()
	ts := httptest.NewServer(relay.NewServer(nil).Handler())
	defer ts.Close()
	rc := relay.NewClient(ts.URL, ts.Client())

	alice := newParty(t, "alice", alicePass, rc)
	bob := newParty(t, "bob", bobPass, rc)
	bob.register(t, ctx, rc, 1)

	_, err := alice.sessions.InitiateSession(ctx, alice.pass, bob.name)
	require.NoError(t, err)
	require.NoError(t, alice.messages.SendMessage(ctx, alice.pass, alice.name, bob.name, []byte("once")))

	// Capture the wire envelope and replay it after delivery.
	queued, err := rc.FetchMessages(ctx, bob.name, 0)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	got, err := bob.messages.ReceiveMessages(ctx, bob.pass, bob.name, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, rc.SendMessage(ctx, queued[0]))
	got, err = bob.messages.ReceiveMessages(ctx, bob.pass, bob.name, 0)
	require.NoError(t, err)
	require.Empty(t, got)
}
