package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ladrtools/proverd/internal/logger"
)

// Config is the top-level TOML structure for the daemon.
type Config struct {
	BinDir       string        `toml:"bin_dir" mapstructure:"bin_dir"`
	PollInterval time.Duration `toml:"poll_interval" mapstructure:"poll_interval"`
	KillGrace    time.Duration `toml:"kill_grace" mapstructure:"kill_grace"`
	Server       ServerConfig  `toml:"server" mapstructure:"server"`
	History      HistoryConfig `toml:"history" mapstructure:"history"`
	Metrics      MetricsConfig `toml:"metrics" mapstructure:"metrics"`
	Log          logger.Config `toml:"log" mapstructure:"log"`
}

type ServerConfig struct {
	Listen   string `toml:"listen" mapstructure:"listen"`
	BasePath string `toml:"base_path" mapstructure:"base_path"`
}

type HistoryConfig struct {
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		BinDir:       "bin",
		PollInterval: 500 * time.Millisecond,
		KillGrace:    5 * time.Second,
		Server:       ServerConfig{Listen: ":8080"},
		Metrics:      MetricsConfig{Enabled: true},
	}
}

// Load reads a TOML config file and merges it over the defaults.
// Environment variables prefixed PROVERD_ override file values
// (PROVERD_BIN_DIR, PROVERD_SERVER_LISTEN, ...).
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("proverd")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the daemon cannot run with.
func (c Config) Validate() error {
	if c.BinDir == "" {
		return fmt.Errorf("bin_dir must not be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.KillGrace <= 0 {
		return fmt.Errorf("kill_grace must be positive, got %s", c.KillGrace)
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	return nil
}
