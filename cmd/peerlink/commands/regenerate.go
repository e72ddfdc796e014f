package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"peerlink/internal/crypto"
)

func regenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate",
		Short: "Replace the identity with a fresh keypair",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := wire.Identity.Regenerate()
			if err != nil {
				return err
			}
			fmt.Printf("Identity replaced. Peers must learn your new key.\nShort ID:    %s\nFingerprint: %s\n",
				crypto.ShortID(id.Pub), crypto.Fingerprint(id.Pub))
			return nil
		},
	}
}
