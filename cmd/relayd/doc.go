// Package main runs the in-memory HTTP relay used by parley during
// development and tests. It stores published pre-key bundles, queues
// encrypted envelopes for recipients until they are fetched and
// acknowledged, and pushes WebSocket notifications to subscribers.
//
// HTTP API
//
//	POST /v1/bundles
//	    Store a user's PreKeyBundle (identity key, signed pre-key + sig, OPKs).
//
//	GET /v1/bundles/{username}
//	    Return the latest published PreKeyBundle for {username}.
//
//	POST /v1/messages/{username}
//	    Enqueue an Envelope destined to {username}. If Timestamp is zero, the
//	    server fills it with the current Unix time.
//
//	GET /v1/messages/{username}?limit=N
//	    Return up to N queued Envelopes for {username}. If limit is absent or
//	    greater than the queue length, all queued envelopes are returned.
//
//	POST /v1/messages/{username}/ack { "count": N }
//	    Drop the first N queued envelopes for {username}. If N exceeds the
//	    queue length, the queue is cleared.
//
//	GET /v1/ws/{username}
//	    Upgrade to WebSocket and receive a notification whenever new
//	    envelopes are queued for {username}.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Responses are JSON. Non-2xx statuses carry a short error message.
//   - An access log records method, path, remote, status and duration.
//   - The default listen address is :8080.
//
// The relay is an untrusted middleman. It never sees plaintext or private
// keys; it only stores ciphertext and public bundles.
package main
