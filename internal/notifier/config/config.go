package config

import (
	"time"

	"golang-options-monitor/pkg/config"
)

// Notifier holds dispatcher-specific configuration.
type Notifier struct {
	MaxConcurrentDispatches int           `mapstructure:"max_concurrent_dispatches"`
	StreamReadTimeout       time.Duration `mapstructure:"stream_read_timeout"`
	RetryInterval           time.Duration `mapstructure:"retry_interval"`
	MaxIdleDuration         time.Duration `mapstructure:"max_idle_duration"`
	MaxStreamRetry          int           `mapstructure:"max_stream_retry"`
	DeliveryAttempts        int           `mapstructure:"delivery_attempts"`
	RetryBackoff            time.Duration `mapstructure:"retry_backoff"`
	PendingSweepInterval    time.Duration `mapstructure:"pending_sweep_interval"`
	PendingSweepAge         time.Duration `mapstructure:"pending_sweep_age"`
	DefaultChannels         []string      `mapstructure:"default_channels"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Gateway holds the configuration for the messaging gateway used by the
// whatsapp, sms and email channels.
type Gateway struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Config holds the full configuration for the notifier service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	Notifier Notifier        `mapstructure:"notifier"`
	Telegram Telegram        `mapstructure:"telegram"`
	Gateway  Gateway         `mapstructure:"gateway"`
}

// Load loads the notifier service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Notifier.MaxConcurrentDispatches == 0 {
		cfg.Notifier.MaxConcurrentDispatches = 5
	}
	if cfg.Notifier.StreamReadTimeout == 0 {
		cfg.Notifier.StreamReadTimeout = 30 * time.Second
	}
	if cfg.Notifier.RetryInterval == 0 {
		cfg.Notifier.RetryInterval = time.Minute
	}
	if cfg.Notifier.MaxIdleDuration == 0 {
		cfg.Notifier.MaxIdleDuration = 2 * time.Minute
	}
	if cfg.Notifier.MaxStreamRetry == 0 {
		cfg.Notifier.MaxStreamRetry = 5
	}
	if cfg.Notifier.DeliveryAttempts == 0 {
		cfg.Notifier.DeliveryAttempts = 3
	}
	if cfg.Notifier.RetryBackoff == 0 {
		cfg.Notifier.RetryBackoff = 2 * time.Second
	}
	if cfg.Notifier.PendingSweepInterval == 0 {
		cfg.Notifier.PendingSweepInterval = 5 * time.Minute
	}
	if cfg.Notifier.PendingSweepAge == 0 {
		cfg.Notifier.PendingSweepAge = 10 * time.Minute
	}
	if len(cfg.Notifier.DefaultChannels) == 0 {
		cfg.Notifier.DefaultChannels = []string{"telegram"}
	}
	return &cfg, nil
}
