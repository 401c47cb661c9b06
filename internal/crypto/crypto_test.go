package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"parley/internal/crypto"
	"parley/internal/domain"
)

func TestKeyAgreeSymmetry(t *testing.T) {
	aPriv, aPub, err := crypto.GenerateX25519()
	require.NoError(t, err)
	bPriv, bPub, err := crypto.GenerateX25519()
	require.NoError(t, err)

	ab, err := crypto.KeyAgree(aPriv, bPub)
	require.NoError(t, err)
	ba, err := crypto.KeyAgree(bPriv, aPub)
	require.NoError(t, err)
	require.Equal(t, ab, ba)
}

func TestDeriveTwoKeysDeterministic(t *testing.T) {
	input := []byte("input key material")
	salt := []byte("salt")

	a1, b1 := crypto.DeriveTwoKeys(input, salt, "info")
	a2, b2 := crypto.DeriveTwoKeys(input, salt, "info")
	require.Equal(t, a1, a2)
	require.Equal(t, b1, b2)
	require.NotEqual(t, a1, b1)

	// Any input change must move both outputs.
	a3, b3 := crypto.DeriveTwoKeys(input, salt, "other")
	require.NotEqual(t, a1, a3)
	require.NotEqual(t, b1, b3)

	a4, b4 := crypto.DeriveTwoKeys(input, []byte("tlas"), "info")
	require.NotEqual(t, a1, a4)
	require.NotEqual(t, b1, b4)
}

func TestDeriveKeyLabelsDiverge(t *testing.T) {
	key := []byte("chain key bytes")
	k1 := crypto.DeriveKey(key, 0x01)
	k2 := crypto.DeriveKey(key, 0x02)
	require.NotEqual(t, k1, k2)
	require.Equal(t, k1, crypto.DeriveKey(key, 0x01))
}

func TestSealOpenRoundTrip(t *testing.T) {
	var mk domain.MessageKey
	copy(mk[:], []byte("0123456789abcdef0123456789abcdef"))

	nonce, err := crypto.NewNonce()
	require.NoError(t, err)
	require.Len(t, nonce, crypto.NonceSize)

	ct, err := crypto.Seal(mk, nonce, []byte("plaintext"), []byte("ad"))
	require.NoError(t, err)

	pt, err := crypto.Open(mk, nonce, ct, []byte("ad"))
	require.NoError(t, err)
	require.Equal(t, []byte("plaintext"), pt)
}

func TestOpenRejectsTamper(t *testing.T) {
	var mk domain.MessageKey
	copy(mk[:], []byte("0123456789abcdef0123456789abcdef"))

	nonce, err := crypto.NewNonce()
	require.NoError(t, err)
	ct, err := crypto.Seal(mk, nonce, []byte("plaintext"), []byte("ad"))
	require.NoError(t, err)

	flipped := append([]byte(nil), ct...)
	flipped[0] ^= 0x01
	_, err = crypto.Open(mk, nonce, flipped, []byte("ad"))
	require.ErrorIs(t, err, crypto.ErrAuthentication)

	_, err = crypto.Open(mk, nonce, ct, []byte("da"))
	require.ErrorIs(t, err, crypto.ErrAuthentication)

	var wrong domain.MessageKey
	_, err = crypto.Open(wrong, nonce, ct, []byte("ad"))
	require.ErrorIs(t, err, crypto.ErrAuthentication)
}

func TestSignVerifyEd25519(t *testing.T) {
	priv, pub, err := crypto.GenerateEd25519()
	require.NoError(t, err)

	sig := crypto.SignEd25519(priv, []byte("message"))
	require.True(t, crypto.VerifyEd25519(pub, []byte("message"), sig))
	require.False(t, crypto.VerifyEd25519(pub, []byte("messagE"), sig))
}
