package app

import (
	"net/http"
	"os"
	"path/filepath"

	"parley/internal/relay"
	"parley/internal/services/identity"
	"parley/internal/services/message"
	"parley/internal/services/prekey"
	"parley/internal/services/session"
	"parley/internal/store"
)

// Config selects where local state lives and which relay to talk to.
type Config struct {
	// Home is the state directory. Empty means ~/.parley.
	Home string
	// RelayURL is the relay's base URL, e.g. http://localhost:8080.
	RelayURL string
	// HTTP overrides the relay client's HTTP client. Nil uses the default.
	HTTP *http.Client
}

// App holds the wired-up services backing the CLI commands.
type App struct {
	Store    *store.Store
	Relay    *relay.Client
	Identity *identity.Service
	PreKeys  *prekey.Service
	Sessions *session.Service
	Messages *message.Service
}

// New opens the state directory and wires the service graph.
func New(cfg Config) (*App, error) {
	home := cfg.Home
	if home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		home = filepath.Join(dir, ".parley")
	}
	st, err := store.Open(home)
	if err != nil {
		return nil, err
	}

	rc := relay.NewClient(cfg.RelayURL, cfg.HTTP)
	return &App{
		Store:    st,
		Relay:    rc,
		Identity: identity.New(st),
		PreKeys:  prekey.New(st, st, st),
		Sessions: session.New(st, st, rc),
		Messages: message.New(st, st, st, st, rc),
	}, nil
}

// Close releases the underlying store.
func (a *App) Close() error {
	return a.Store.Close()
}
