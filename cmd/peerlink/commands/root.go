package commands

import (
	"github.com/spf13/cobra"

	"peerlink/internal/app"
	"peerlink/internal/config"
	"peerlink/internal/logging"
)

var (
	cfgFile  string
	homeDir  string
	relayURL string
	logLevel string

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:           "peerlink",
		Short:         "End-to-end encrypted peer-to-peer chat",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if homeDir != "" {
				cfg.Home = homeDir
			}
			if relayURL != "" {
				cfg.RelayURL = relayURL
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			log, err := logging.NewLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			wire, err = app.NewWire(cfg, log)
			return err
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().StringVar(&homeDir, "home", "", "data dir (default ~/.peerlink)")
	root.PersistentFlags().StringVar(&relayURL, "relay", "", "relay base URL (e.g. http://127.0.0.1:8080)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(initCmd(), fingerprintCmd(), exportCmd(), importCmd(), regenerateCmd(), chatCmd())
	return root.Execute()
}
