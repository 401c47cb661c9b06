package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"parley/internal/domain"
)

// Client talks JSON over HTTP to a relay server.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a Client for the relay at base. A nil httpClient falls
// back to http.DefaultClient.
func NewClient(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: base, http: httpClient}
}

// RegisterPreKeyBundle publishes this account's bundle.
func (c *Client) RegisterPreKeyBundle(ctx context.Context, bundle domain.PreKeyBundle) error {
	return c.post(ctx, "/v1/bundles", bundle, nil)
}

// FetchPreKeyBundle retrieves a peer's published bundle.
func (c *Client) FetchPreKeyBundle(
	ctx context.Context,
	username domain.Username,
) (domain.PreKeyBundle, error) {
	var out domain.PreKeyBundle
	err := c.getJSON(ctx, "/v1/bundles/"+url.PathEscape(username.String()), &out)
	return out, err
}

// SendMessage enqueues an envelope for its recipient.
func (c *Client) SendMessage(ctx context.Context, envelope domain.Envelope) error {
	return c.post(ctx, "/v1/messages/"+url.PathEscape(envelope.To.String()), envelope, nil)
}

// FetchMessages returns up to limit queued envelopes for username without
// removing them; call AckMessages once they are processed.
func (c *Client) FetchMessages(
	ctx context.Context,
	username domain.Username,
	limit int,
) ([]domain.Envelope, error) {
	path := "/v1/messages/" + url.PathEscape(username.String())
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var envs []domain.Envelope
	if err := c.getJSON(ctx, path, &envs); err != nil {
		return nil, err
	}
	return envs, nil
}

// AckMessages drops the first count queued envelopes for username.
func (c *Client) AckMessages(ctx context.Context, username domain.Username, count int) error {
	return c.post(ctx, "/v1/messages/"+url.PathEscape(username.String())+"/ack", struct {
		Count int `json:"count"`
	}{Count: count}, nil)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay post %s%s: %s", c.base, path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay get %s%s: %s", c.base, path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Compile-time assertion that Client implements domain.RelayClient.
var _ domain.RelayClient = (*Client)(nil)
