// Package session establishes key-agreement sessions with peers. Initiating a
// session fetches the peer's pre-key bundle from the relay, runs the handshake
// against it, and records the resulting shared secret and handshake parameters
// until the first outgoing message opens the ratchet conversation.
package session
