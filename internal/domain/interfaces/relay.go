package interfaces

import (
	"context"

	domaintypes "parley/internal/domain/types"
)

// RelayClient is how we talk to the store-and-forward relay, all with context.
type RelayClient interface {
	RegisterPreKeyBundle(ctx context.Context, bundle domaintypes.PreKeyBundle) error
	FetchPreKeyBundle(
		ctx context.Context,
		username domaintypes.Username,
	) (domaintypes.PreKeyBundle, error)

	SendMessage(ctx context.Context, envelope domaintypes.Envelope) error
	FetchMessages(
		ctx context.Context,
		username domaintypes.Username,
		limit int,
	) ([]domaintypes.Envelope, error)
	AckMessages(ctx context.Context, username domaintypes.Username, count int) error
}

// RelayStreamer is the optional live-delivery side of a relay client. The
// returned channel yields a notification whenever new envelopes are queued and
// closes when ctx is cancelled or the connection drops.
type RelayStreamer interface {
	Subscribe(
		ctx context.Context,
		username domaintypes.Username,
	) (<-chan domaintypes.Notification, error)
}
