package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"peerlink/internal/crypto"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <seed>",
		Short: "Install an identity from an exported seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := wire.Identity.Import(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Identity imported.\nShort ID:    %s\nFingerprint: %s\n",
				crypto.ShortID(id.Pub), crypto.Fingerprint(id.Pub))
			return nil
		},
	}
}
