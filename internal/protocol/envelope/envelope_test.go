package envelope_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"parley/internal/crypto"
	"parley/internal/domain"
	"parley/internal/protocol/envelope"
)

func sample() *envelope.Envelope {
	return &envelope.Envelope{
		Version:    envelope.Version,
		RatchetPub: bytes.Repeat([]byte{0xAA}, 32),
		PrevCount:  3,
		Count:      7,
		Nonce:      bytes.Repeat([]byte{0x01}, crypto.NonceSize),
		Ciphertext: bytes.Repeat([]byte{0x02}, 40),
		AD:         []byte("alice>bob"),
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := sample()
	e.Handshake = &domain.PreKeyMessage{
		InitiatorIdentityKey: domain.X25519Public{0x05},
		EphemeralKey:         domain.X25519Public{0x06},
		SignedPreKeyID:       "spk-1",
		OneTimePreKeyID:      "opk-9",
	}

	b, err := envelope.Encode(e)
	require.NoError(t, err)

	got, err := envelope.Decode(b)
	require.NoError(t, err)
	require.Equal(t, e, got)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := envelope.Decode([]byte("definitely not cbor"))
	require.ErrorIs(t, err, envelope.ErrMalformed)

	_, err = envelope.Decode(nil)
	require.ErrorIs(t, err, envelope.ErrMalformed)
}

func TestDecodeTruncated(t *testing.T) {
	b, err := envelope.Encode(sample())
	require.NoError(t, err)

	for _, cut := range []int{1, len(b) / 2, len(b) - 1} {
		_, err := envelope.Decode(b[:cut])
		require.Error(t, err, "truncated at %d", cut)
	}
}

func TestDecodeRejectsBadFields(t *testing.T) {
	short := sample()
	short.RatchetPub = short.RatchetPub[:16]
	_, err := envelope.Encode(short)
	require.ErrorIs(t, err, envelope.ErrMalformed)

	badNonce := sample()
	badNonce.Nonce = badNonce.Nonce[:4]
	_, err = envelope.Encode(badNonce)
	require.ErrorIs(t, err, envelope.ErrMalformed)

	tiny := sample()
	tiny.Ciphertext = []byte{0x01}
	_, err = envelope.Encode(tiny)
	require.ErrorIs(t, err, envelope.ErrMalformed)
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	e := sample()
	e.Version = 2
	_, err := envelope.Encode(e)
	require.ErrorIs(t, err, envelope.ErrUnsupportedVersion)
}

func TestAuthBytesBindHeader(t *testing.T) {
	a := sample()
	b := sample()
	require.Equal(t, a.AuthBytes(), b.AuthBytes())

	b.Count++
	require.NotEqual(t, a.AuthBytes(), b.AuthBytes())

	c := sample()
	c.AD = nil
	require.NotEqual(t, a.AuthBytes(), c.AuthBytes())
}
