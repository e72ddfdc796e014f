package commands

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"peerlink/internal/crypto"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the short ID and full fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := wire.Identity.LoadOrCreate()
			if err != nil {
				return err
			}
			fmt.Printf("Short ID:    %s\n", crypto.ShortID(id.Pub))
			fmt.Printf("Fingerprint: %s\n", crypto.Fingerprint(id.Pub))
			fmt.Printf("Public key:  %s\n", base64.RawURLEncoding.EncodeToString(id.Pub.Slice()))
			return nil
		},
	}
}
