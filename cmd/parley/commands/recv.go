package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"parley/internal/domain"
)

// recv: fetch and decrypt queued messages for --username. With --follow it
// stays subscribed to the relay and drains the queue on every notification.
func recvCmd() *cobra.Command {
	var (
		limit  int
		follow bool
	)
	cmd := &cobra.Command{
		Use:   "recv",
		Short: "Fetch and decrypt your queued messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if relayURL == "" {
				return fmt.Errorf("no relay configured. use --relay")
			}
			if username == "" {
				return fmt.Errorf("--username required")
			}
			ctx := cmd.Context()
			me := domain.Username(username)

			drain := func() error {
				msgs, err := appCtx.Messages.ReceiveMessages(ctx, passphrase, me, limit)
				if err != nil {
					return err
				}
				for _, m := range msgs {
					fmt.Printf("[%s] %s\n", m.From, string(m.Plaintext))
				}
				return nil
			}

			if err := drain(); err != nil {
				return err
			}
			if !follow {
				return nil
			}

			notifications, err := appCtx.Relay.Subscribe(ctx, me)
			if err != nil {
				return err
			}
			for range notifications {
				if err := drain(); err != nil {
					return err
				}
			}
			return ctx.Err()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "max messages per fetch (0 = all)")
	cmd.Flags().BoolVar(&follow, "follow", false, "stay connected and print messages as they arrive")
	cmd.Flags().StringVar(&username, "username", "", "your username (same as you registered with)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
