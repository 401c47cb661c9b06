// Package ratchet implements the Double Ratchet session core.
//
// A Session turns one initial shared secret into an unbounded stream of
// single-use message keys. Two mechanisms interleave: a DH ratchet that mixes
// fresh X25519 agreements into a root key whenever a party replies with a new
// ratchet key pair, and a symmetric chain ratchet that advances a keyed-hash
// chain once per message. Skipped chain positions are cached in a bounded
// store so reordered or lost deliveries still decrypt, while replayed
// envelopes are rejected once their key has been consumed.
//
// Bootstrap convention: the shared secret seeds both the first root key and,
// via a fixed derivation, the initiator's first sending chain. The initiator
// generates its ratchet key pair at establishment and sends its public half
// in every header; the responder's first reply performs the first DH step.
//
// Concurrency: a Session is NOT safe for concurrent use. Callers must
// serialise access per conversation. Encrypt and Decrypt are transactional:
// state mutates only when the whole call succeeds.
package ratchet
