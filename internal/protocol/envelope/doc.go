// Package envelope defines the versioned wire format binding a ratchet header
// to its ciphertext.
//
// An envelope carries the sender's current ratchet public key, the previous
// and current chain counters, the AEAD nonce, optional associated data, the
// ciphertext, and (on the first message of a conversation only) the handshake
// parameters the responder needs to derive the shared root secret.
//
// Encoding is CBOR. Decode validates structure and field lengths before any
// cryptographic work so garbage input is rejected without touching a key.
// The header fields are additionally bound into the AEAD associated data via
// AuthBytes, so a parsed-but-tampered header still fails authentication.
package envelope
