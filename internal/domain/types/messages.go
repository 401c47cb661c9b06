package types

// Envelope is the relay wire format. Payload is an opaque encoded ratchet
// envelope; the relay never sees more structure than routing metadata.
type Envelope struct {
	From      Username `json:"from"`
	To        Username `json:"to"`
	Payload   []byte   `json:"payload"`
	Timestamp int64    `json:"timestamp"`
}

// DecryptedMessage is what MessageService.ReceiveMessages returns.
type DecryptedMessage struct {
	From      Username `json:"from"`
	To        Username `json:"to"`
	Plaintext []byte   `json:"plaintext"`
	Timestamp int64    `json:"timestamp"`
}

// Notification is pushed over the relay's WebSocket channel when new
// envelopes are queued for a subscriber.
type Notification struct {
	Queued int `json:"queued"`
}
