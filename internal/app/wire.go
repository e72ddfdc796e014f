package app

import (
	"net/http"

	"go.uber.org/zap"

	"peerlink/internal/config"
	"peerlink/internal/domain"
	"peerlink/internal/identity"
	"peerlink/internal/relay"
	"peerlink/internal/signal"
	"peerlink/internal/store"
)

// Wire bundles the dependency graph for the CLI.
type Wire struct {
	Cfg      config.Config
	Log      *zap.Logger
	Identity domain.IdentityService
	Medium   domain.Medium
	Signals  *signal.Channel
}

// NewWire constructs the graph from cfg.
func NewWire(cfg config.Config, log *zap.Logger) (*Wire, error) {
	if err := store.EnsureDir(cfg.Home); err != nil {
		return nil, err
	}

	identityStore := store.NewIdentityFileStore(cfg.Home, cfg.Passphrase())
	identitySvc := identity.New(identityStore)

	medium := relay.NewClient(cfg.RelayURL, http.DefaultClient)
	medium.Poll = cfg.PollInterval

	return &Wire{
		Cfg:      cfg,
		Log:      log,
		Identity: identitySvc,
		Medium:   medium,
		Signals:  signal.New(medium, log),
	}, nil
}
