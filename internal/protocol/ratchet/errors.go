package ratchet

import "errors"

var (
	// ErrNotEstablished is returned when a Session is used before it has the
	// material required for the operation. This is caller misuse, not a
	// recoverable protocol condition.
	ErrNotEstablished = errors.New("ratchet: session not established")

	// ErrMessageKeyNotFound is returned when an envelope references a chain
	// position whose key was already consumed (replay or duplicate) or
	// evicted from the skipped-key store. The message is permanently
	// undecryptable; the session continues.
	ErrMessageKeyNotFound = errors.New("ratchet: message key not found")

	// ErrTooManySkipped is returned when an envelope would require advancing
	// a receiving chain past the reordering limit.
	ErrTooManySkipped = errors.New("ratchet: message exceeds reordering limit")

	// ErrBadState is returned when a serialized session fails to load.
	ErrBadState = errors.New("ratchet: invalid serialized state")
)
