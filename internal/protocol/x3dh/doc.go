// Package x3dh derives the initial shared secret that seeds a Double Ratchet
// conversation between two parties.
//
// # Overview
//
// The initiator fetches the responder's published pre-key bundle (identity
// key, signed pre-key plus Ed25519 signature, optional one-time pre-keys),
// verifies the signature, and combines its identity key and a fresh ephemeral
// key with the bundle's keys through a set of X25519 agreements. Expanding
// the concatenated transcript with HKDF yields the shared secret. The
// responder recomputes the same secret from the handshake parameters attached
// to the first message.
//
// # Errors
//
// ErrBadSignedPreKey is returned when the signed pre-key signature fails
// verification. Other errors wrap lower-level crypto failures.
//
// # Security notes
//
// Only public material ever crosses the wire. A one-time pre-key, when
// present, mixes in a value deleted after first use, which protects the
// handshake even if the signed pre-key is later compromised.
package x3dh
