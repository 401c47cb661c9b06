package relay

import (
	"context"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"parley/internal/domain"
)

// Subscribe opens a WebSocket to the relay and yields a notification each
// time new envelopes are queued for username. The channel closes when ctx is
// cancelled or the connection drops; callers fetch and ack over HTTP as usual.
func (c *Client) Subscribe(
	ctx context.Context,
	username domain.Username,
) (<-chan domain.Notification, error) {
	wsURL := toWebSocketURL(c.base) + "/v1/ws/" + url.PathEscape(username.String())
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	ch := make(chan domain.Notification)
	go func() {
		defer close(ch)
		defer conn.Close()
		for {
			var n domain.Notification
			if err := conn.ReadJSON(&n); err != nil {
				return
			}
			select {
			case ch <- n:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	return ch, nil
}

func toWebSocketURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}

// Compile-time assertion that Client implements domain.RelayStreamer.
var _ domain.RelayStreamer = (*Client)(nil)
