// Package store provides bbolt-backed persistence for parley's core data.
//
// A single database file (parley.db) under the configured home directory
// holds one bucket per record family: identity keys, pre-key pairs, the
// cached pre-key bundle, key-agreement sessions, and serialized ratchet
// conversation state. Records are CBOR-encoded; the identity record is
// additionally encrypted with a passphrase-derived key before it touches
// disk. All methods are safe for concurrent use through bbolt transactions.
package store
