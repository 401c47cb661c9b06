package types

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// IsZero reports whether the key is unset.
func (p X25519Public) IsZero() bool { return p == X25519Public{} }

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// Ed25519Public is an Ed25519 signing public key.
type Ed25519Public [32]byte

// Slice returns the key as a []byte.
func (p Ed25519Public) Slice() []byte { return p[:] }

// Ed25519Private is an Ed25519 signing private key.
type Ed25519Private [64]byte

// Slice returns the key as a []byte.
func (k Ed25519Private) Slice() []byte { return k[:] }

// The symmetric key types below carry a role tag in the type system so a key
// derived for one purpose cannot be passed where another is expected. Each is
// scoped to a single derivation role and is replaced, not mutated, on every
// ratchet step.

// SharedSecret is the output of a Diffie-Hellman key agreement. It is only
// ever fed into a key-derivation step, never used to encrypt directly.
type SharedSecret [32]byte

// Slice returns the secret as a []byte.
func (s SharedSecret) Slice() []byte { return s[:] }

// RootKey chains DH outputs together across ratchet steps. Consumed and
// replaced on every DH ratchet step.
type RootKey [32]byte

// Slice returns the key as a []byte.
func (k RootKey) Slice() []byte { return k[:] }

// ChainKey advances a sending or receiving message chain. Each advance yields
// a replacement ChainKey and one MessageKey; the old value is discarded.
type ChainKey [32]byte

// Slice returns the key as a []byte.
func (k ChainKey) Slice() []byte { return k[:] }

// MessageKey encrypts or decrypts exactly one message, then is destroyed.
type MessageKey [32]byte

// Slice returns the key as a []byte.
func (k MessageKey) Slice() []byte { return k[:] }
