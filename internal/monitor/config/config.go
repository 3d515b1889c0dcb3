package config

import (
	"time"

	"golang-options-monitor/pkg/config"
)

// Monitor holds evaluation engine configuration.
type Monitor struct {
	EvaluationCron        string        `mapstructure:"evaluation_cron"`
	PollingInterval       time.Duration `mapstructure:"polling_interval"`
	ExpiryWarnDays        int           `mapstructure:"expiry_warn_days"`
	QuoteStalenessHorizon time.Duration `mapstructure:"quote_staleness_horizon"`
}

// Bridge holds the terminal bridge ingestion configuration. The bridge token
// is a dedicated credential, distinct from any user auth.
type Bridge struct {
	Enabled      bool          `mapstructure:"enabled"`
	Token        string        `mapstructure:"token"`
	AllowedIPs   []string      `mapstructure:"allowed_ips"`
	HeartbeatTTL time.Duration `mapstructure:"heartbeat_ttl"`
}

// Config holds the full configuration for the monitor service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	Monitor  Monitor         `mapstructure:"monitor"`
	Bridge   Bridge          `mapstructure:"bridge"`
}

// Load loads the monitor service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Monitor.PollingInterval == 0 {
		cfg.Monitor.PollingInterval = time.Minute
	}
	if cfg.Monitor.ExpiryWarnDays == 0 {
		cfg.Monitor.ExpiryWarnDays = 3
	}
	if cfg.Bridge.HeartbeatTTL == 0 {
		cfg.Bridge.HeartbeatTTL = 2 * time.Minute
	}
	return &cfg, nil
}
