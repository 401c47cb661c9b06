package types

// Session holds the key-agreement output and metadata for a peer, recorded by
// the initiator until the first message establishes the ratchet conversation.
type Session struct {
	PeerUsername          Username        `json:"peer_username"`
	Secret                SharedSecret    `json:"secret"`
	PeerIdentityKey       X25519Public    `json:"peer_identity_key"`
	PeerSignedPreKey      X25519Public    `json:"peer_signed_pre_key"`
	SignedPreKeyID        SignedPreKeyID  `json:"signed_pre_key_id"`
	OneTimePreKeyID       OneTimePreKeyID `json:"one_time_pre_key_id,omitempty"`
	InitiatorEphemeralKey X25519Public    `json:"initiator_ephemeral_key"`
	CreatedUTC            int64           `json:"created_utc"`
}
