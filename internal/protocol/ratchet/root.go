package ratchet

import (
	"parley/internal/crypto"
	"parley/internal/domain"
	"parley/internal/util/memzero"
)

// Derivation labels. Fixed by the wire convention; both sides must agree.
const (
	rootStepInfo  = "parley/dr/root"
	bootstrapInfo = "parley/dr/bootstrap"
)

// stepRoot mixes a fresh DH agreement into the root chain, yielding the next
// root key and a chain key that seeds a sending or receiving chain. The prior
// root key is consumed and must not be reused by the caller.
func stepRoot(
	root domain.RootKey,
	priv domain.X25519Private,
	pub domain.X25519Public,
) (domain.RootKey, domain.ChainKey, error) {
	secret, err := crypto.KeyAgree(priv, pub)
	if err != nil {
		return domain.RootKey{}, domain.ChainKey{}, err
	}
	a, b := crypto.DeriveTwoKeys(secret.Slice(), root.Slice(), rootStepInfo)
	memzero.Zero(secret[:])
	return domain.RootKey(a), domain.ChainKey(b), nil
}

// bootstrapKeys derives the first root key and the conversation's first chain
// key from the initial shared secret. The initiator uses the chain key to
// send; the responder uses the same value to receive.
func bootstrapKeys(secret domain.SharedSecret) (domain.RootKey, domain.ChainKey) {
	a, b := crypto.DeriveTwoKeys(secret.Slice(), nil, bootstrapInfo)
	return domain.RootKey(a), domain.ChainKey(b)
}
