// Package relay implements the store-and-forward transport between peers.
//
// The relay never sees plaintext or private keys; it stores public pre-key
// bundles and queues opaque encrypted envelopes until recipients fetch and
// acknowledge them.
//
// Client is the HTTP implementation of domain.RelayClient used by the CLI.
// All requests are JSON over HTTP, accept a context for cancellation and
// deadlines, and surface non-2xx statuses as errors carrying the method,
// URL and status text. Client also implements domain.RelayStreamer over a
// WebSocket so callers can wait for new mail instead of polling.
//
// Server is the matching handler, embeddable in tests via httptest and run
// standalone by cmd/relayd. All server state is held in memory and lost on
// process exit; it is intended for local use or as an untrusted middleman on
// a private network.
package relay
