package commands

import (
	"fmt"
	"os"

	qrterminal "github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var asQR bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the private key seed for transfer to another device",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := wire.Identity.Export()
			if err != nil {
				return err
			}
			fmt.Println(seed)
			if asQR {
				qrterminal.GenerateWithConfig(seed, qrterminal.Config{
					Level:     qrterminal.M,
					Writer:    os.Stdout,
					BlackChar: qrterminal.BLACK,
					WhiteChar: qrterminal.WHITE,
					QuietZone: 1,
				})
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asQR, "qr", false, "also render the seed as a QR code")
	return cmd
}
