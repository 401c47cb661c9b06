// Package message sends and receives end-to-end encrypted messages. Sending
// loads or opens the ratchet conversation for the peer, seals the plaintext,
// persists the advanced state, and hands the envelope to the relay. Receiving
// drains the relay queue in order, opening a conversation from the attached
// handshake parameters when a peer writes first.
package message
