package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"parley/internal/domain"
)

func registerCmd() *cobra.Command {
	var opkCount int
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Publish your pre-key bundle to the relay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if relayURL == "" {
				return fmt.Errorf("no relay configured. use --relay")
			}
			me := domain.Username(args[0])

			// Rotate the signed pre-key and mint a fresh batch of one-time keys.
			if _, _, err := appCtx.PreKeys.GenerateAndStorePreKeys(passphrase, opkCount); err != nil {
				return err
			}
			bundle, err := appCtx.PreKeys.LoadPreKeyBundle(passphrase, me)
			if err != nil {
				return err
			}
			if err := appCtx.Relay.RegisterPreKeyBundle(cmd.Context(), bundle); err != nil {
				return err
			}

			fmt.Printf("Registered %d one-time pre-keys as %s\n", len(bundle.OneTimePreKeys), me)
			return nil
		},
	}
	cmd.Flags().IntVar(&opkCount, "one-time-keys", 10, "number of one-time pre-keys to publish")
	return cmd
}
