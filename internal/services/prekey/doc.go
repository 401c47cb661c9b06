// Package prekey manages signed pre-keys and one-time pre-keys for the
// conversation-opening handshake.
//
// It rotates the current signed pre-key, assembles the public bundle to
// register with the relay, and tracks one-time pre-key consumption.
package prekey
