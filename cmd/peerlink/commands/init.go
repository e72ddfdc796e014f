package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"peerlink/internal/crypto"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the local identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := wire.Identity.LoadOrCreate()
			if err != nil {
				return err
			}
			fmt.Printf("Identity ready.\nShort ID:    %s\nFingerprint: %s\n",
				crypto.ShortID(id.Pub), crypto.Fingerprint(id.Pub))
			return nil
		},
	}
}
