package envelope

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"parley/internal/crypto"
	"parley/internal/domain"
)

// Version is the current wire format version.
const Version = 1

const ratchetPubSize = 32

var (
	// ErrMalformed is returned for structurally invalid or truncated input.
	ErrMalformed = errors.New("envelope: malformed")
	// ErrUnsupportedVersion is returned when the version byte is unknown.
	ErrUnsupportedVersion = errors.New("envelope: unsupported version")
)

// Envelope is one encrypted message plus the header needed to place it in the
// ratchet. AssociatedData is authenticated but not encrypted.
type Envelope struct {
	Version    uint8                 `cbor:"v"`
	RatchetPub []byte                `cbor:"pub"`
	PrevCount  uint32                `cbor:"pn"`
	Count      uint32                `cbor:"n"`
	Nonce      []byte                `cbor:"nonce"`
	Ciphertext []byte                `cbor:"ct"`
	AD         []byte                `cbor:"ad,omitempty"`
	Handshake  *domain.PreKeyMessage `cbor:"hs,omitempty"`
}

// Encode serializes the envelope to its wire form.
func Encode(e *Envelope) ([]byte, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	return cbor.Marshal(e)
}

// Decode parses and validates a wire envelope. It fails fast on truncated or
// structurally invalid input, before any cryptographic operation.
func Decode(b []byte) (*Envelope, error) {
	var e Envelope
	if err := cbor.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// AuthBytes returns the data authenticated alongside the ciphertext: the
// caller-supplied associated data followed by the fixed-width header fields.
func (e *Envelope) AuthBytes() []byte {
	out := make([]byte, 0, len(e.AD)+ratchetPubSize+8)
	out = append(out, e.AD...)
	out = append(out, e.RatchetPub...)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], e.PrevCount)
	out = append(out, b[:]...)
	binary.BigEndian.PutUint32(b[:], e.Count)
	out = append(out, b[:]...)
	return out
}

func (e *Envelope) validate() error {
	if e.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, e.Version)
	}
	if len(e.RatchetPub) != ratchetPubSize {
		return fmt.Errorf("%w: ratchet key length %d", ErrMalformed, len(e.RatchetPub))
	}
	if len(e.Nonce) != crypto.NonceSize {
		return fmt.Errorf("%w: nonce length %d", ErrMalformed, len(e.Nonce))
	}
	if len(e.Ciphertext) < crypto.TagSize {
		return fmt.Errorf("%w: ciphertext too short", ErrMalformed)
	}
	return nil
}
