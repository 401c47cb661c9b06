package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"parley/internal/crypto"
	"parley/internal/domain"
)

// startSessionCmd runs the handshake against a peer's pre-key bundle and
// persists the session for future messaging.
func startSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start-session <peer>",
		Short: "Establish a secure session with a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if relayURL == "" {
				return fmt.Errorf("no relay configured. use --relay")
			}
			peer := domain.Username(args[0])

			sess, err := appCtx.Sessions.InitiateSession(cmd.Context(), passphrase, peer)
			if err != nil {
				return fmt.Errorf("starting session with %q: %w", peer, err)
			}

			// Show the peer's identity fingerprint so it can be verified
			// out of band.
			fmt.Printf("Session created with %s.\nPeer fingerprint: %s\n",
				peer, crypto.Fingerprint(sess.PeerIdentityKey.Slice()))
			return nil
		},
	}
}
