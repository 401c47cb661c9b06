// Package commands defines the parley CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init           Create the local identity
//   - fingerprint    Print the identity fingerprint
//   - register       Publish your pre-key bundle to a relay
//   - start-session  Establish a session with a peer
//   - send           Encrypt and send a message
//   - recv           Fetch and decrypt queued messages
//
// # Implementation
//
// The root command opens the state directory and builds a dependency graph
// (store, services, relay client) before any subcommand runs, so handlers can
// share one app context.
package commands
