// Package crypto exposes the primitive operations the ratchet core is built
// on, over role-tagged key types from internal/domain.
//
// Contents
//
//   - X25519 key generation and key agreement (GenerateX25519, KeyAgree)
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     SignEd25519, VerifyEd25519)
//   - One-way key derivation: a two-output HKDF split (DeriveTwoKeys) and a
//     single keyed-hash step (DeriveKey)
//   - Authenticated encryption with ChaCha20-Poly1305 (Seal, Open, NewNonce)
//   - Short public-key fingerprints for display (Fingerprint)
//
// # Notes
//
// All operations are deterministic given their inputs except key and nonce
// generation, which draw from crypto/rand. Failures never leave partial key
// material behind; derivation outputs are fixed-size array copies. Callers
// treat returned secrets as sensitive and wipe them when practical.
package crypto
