// Package app wires the stores, services, and relay client together for the
// command-line front end.
package app
