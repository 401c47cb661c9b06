package x3dh

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"parley/internal/crypto"
	"parley/internal/domain"
	"parley/internal/util/memzero"
)

const kdfInfo = "parley/x3dh"

// ErrBadSignedPreKey is returned when the bundle's signed pre-key signature
// does not verify against the bundle's signing key.
var ErrBadSignedPreKey = errors.New("x3dh: signed pre-key signature invalid")

// InitiatorSecret runs the initiator side of the handshake against a peer's
// bundle. It returns the shared secret, the pre-key identifiers used, and the
// ephemeral public key the responder needs to recompute the secret.
func InitiatorSecret(
	id domain.Identity,
	bundle domain.PreKeyBundle,
) (
	secret domain.SharedSecret,
	spkID domain.SignedPreKeyID,
	opkID domain.OneTimePreKeyID,
	ephPub domain.X25519Public,
	err error,
) {
	if !crypto.VerifyEd25519(bundle.SigningKey, bundle.SignedPreKey.Slice(), bundle.SignedPreKeySignature) {
		err = ErrBadSignedPreKey
		return
	}

	ephPriv, ephPub, err := crypto.GenerateX25519()
	if err != nil {
		return
	}
	defer memzero.Zero(ephPriv[:])

	dh1, err := crypto.KeyAgree(id.XPriv, bundle.SignedPreKey)
	if err != nil {
		return
	}
	dh2, err := crypto.KeyAgree(ephPriv, bundle.IdentityKey)
	if err != nil {
		return
	}
	dh3, err := crypto.KeyAgree(ephPriv, bundle.SignedPreKey)
	if err != nil {
		return
	}

	transcript := make([]byte, 0, 32*4)
	transcript = append(transcript, dh1.Slice()...)
	transcript = append(transcript, dh2.Slice()...)
	transcript = append(transcript, dh3.Slice()...)

	if len(bundle.OneTimePreKeys) > 0 {
		opk := bundle.OneTimePreKeys[0]
		var dh4 domain.SharedSecret
		dh4, err = crypto.KeyAgree(ephPriv, opk.Pub)
		if err != nil {
			return
		}
		transcript = append(transcript, dh4.Slice()...)
		opkID = opk.ID
	}

	secret = expand(transcript)
	memzero.Zero(transcript)
	spkID = bundle.SignedPreKeyID
	return
}

// ResponderSecret recomputes the shared secret from the handshake parameters
// attached to an initiator's first message. opkPriv is nil when no one-time
// pre-key was consumed.
func ResponderSecret(
	id domain.Identity,
	spkPriv domain.X25519Private,
	opkPriv *domain.X25519Private,
	pm domain.PreKeyMessage,
) (domain.SharedSecret, error) {
	dh1, err := crypto.KeyAgree(spkPriv, pm.InitiatorIdentityKey)
	if err != nil {
		return domain.SharedSecret{}, fmt.Errorf("x3dh responder: %w", err)
	}
	dh2, err := crypto.KeyAgree(id.XPriv, pm.EphemeralKey)
	if err != nil {
		return domain.SharedSecret{}, fmt.Errorf("x3dh responder: %w", err)
	}
	dh3, err := crypto.KeyAgree(spkPriv, pm.EphemeralKey)
	if err != nil {
		return domain.SharedSecret{}, fmt.Errorf("x3dh responder: %w", err)
	}

	transcript := make([]byte, 0, 32*4)
	transcript = append(transcript, dh1.Slice()...)
	transcript = append(transcript, dh2.Slice()...)
	transcript = append(transcript, dh3.Slice()...)

	if opkPriv != nil {
		dh4, err := crypto.KeyAgree(*opkPriv, pm.EphemeralKey)
		if err != nil {
			return domain.SharedSecret{}, fmt.Errorf("x3dh responder: %w", err)
		}
		transcript = append(transcript, dh4.Slice()...)
	}

	secret := expand(transcript)
	memzero.Zero(transcript)
	return secret, nil
}

// expand stretches the DH transcript to the shared secret with HKDF-SHA256.
func expand(transcript []byte) (secret domain.SharedSecret) {
	r := hkdf.New(sha256.New, transcript, nil, []byte(kdfInfo))
	_, _ = io.ReadFull(r, secret[:])
	return
}
