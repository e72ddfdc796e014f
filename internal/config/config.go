// Package config loads runtime parameters from an optional file and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures the client runtime parameters.
type Config struct {
	Home          string        `mapstructure:"home"`
	RelayURL      string        `mapstructure:"relay_url"`
	LogLevel      string        `mapstructure:"log_level"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	STUNServers   []string      `mapstructure:"stun_servers"`
	PassphraseEnv string        `mapstructure:"passphrase_env"`
}

const (
	defaultRelayURL      = "http://127.0.0.1:8080"
	defaultLogLevel      = "info"
	defaultPollInterval  = time.Second
	defaultPassphraseEnv = "PEERLINK_PASSPHRASE"
)

// Load reads configuration from the provided file path (if any) and the
// environment. Environment variables are prefixed with PEERLINK_ and
// override file values.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PEERLINK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("relay_url", defaultRelayURL)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("poll_interval", defaultPollInterval.String())
	v.SetDefault("passphrase_env", defaultPassphraseEnv)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// Viper leaves durations as strings; normalize here.
	if v.IsSet("poll_interval") {
		dur, err := time.ParseDuration(v.GetString("poll_interval"))
		if err != nil {
			return Config{}, fmt.Errorf("invalid poll_interval: %w", err)
		}
		cfg.PollInterval = dur
	} else {
		cfg.PollInterval = defaultPollInterval
	}

	if cfg.Home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, err
		}
		cfg.Home = filepath.Join(dir, ".peerlink")
	}
	if cfg.RelayURL == "" {
		cfg.RelayURL = defaultRelayURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.PassphraseEnv == "" {
		cfg.PassphraseEnv = defaultPassphraseEnv
	}

	return cfg, nil
}

// Passphrase fetches the optional identity-file passphrase from the
// configured environment variable. Empty means the identity is stored
// unsealed.
func (c Config) Passphrase() string {
	return strings.TrimSpace(getenv(c.PassphraseEnv))
}

// split out for testing.
var getenv = os.Getenv
