package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults for the client SDK.
const (
	DefaultBackendURL    = "http://localhost:8788"
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultStaleTime     = 30 * time.Second
	DefaultStatsInterval = 30 * time.Second
	DefaultCacheSize     = 256
	DefaultBodyLimit     = 4 << 20 // 4 MiB
)

// Config carries everything the SDK and CLI need to talk to a ZenLink backend.
type Config struct {
	BackendURL    string        `mapstructure:"backend_url"`
	IdentityToken string        `mapstructure:"identity_token"`
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"`
	StaleTime     time.Duration `mapstructure:"stale_time"`
	StatsInterval time.Duration `mapstructure:"stats_interval"`
	CacheSize     int           `mapstructure:"cache_size"`
	BodyLimit     int64         `mapstructure:"body_limit"`
	LogLevel      string        `mapstructure:"log_level"`

	// Dev daemon settings.
	ListenAddr  string `mapstructure:"listen_addr"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Option customises Load for tests.
type Option func(*viper.Viper)

// WithConfigFile forces a specific config file instead of the home-dir search.
func WithConfigFile(path string) Option {
	return func(v *viper.Viper) {
		v.SetConfigFile(path)
	}
}

// Load resolves configuration with the usual precedence:
// defaults < ~/.zenlink.yaml < ZENLINK_* environment variables.
func Load(opts ...Option) (Config, error) {
	v := viper.New()

	v.SetDefault("backend_url", DefaultBackendURL)
	v.SetDefault("identity_token", "")
	v.SetDefault("http_timeout", DefaultHTTPTimeout)
	v.SetDefault("stale_time", DefaultStaleTime)
	v.SetDefault("stats_interval", DefaultStatsInterval)
	v.SetDefault("cache_size", DefaultCacheSize)
	v.SetDefault("body_limit", int64(DefaultBodyLimit))
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", ":8788")
	v.SetDefault("metrics_addr", ":9109")

	v.SetConfigName(".zenlink")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ZENLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, opt := range opts {
		opt(v)
	}

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; a malformed one is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the SDK cannot operate with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return fmt.Errorf("backend_url must not be empty")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	if c.StaleTime < 0 {
		return fmt.Errorf("stale_time must not be negative")
	}
	if c.StatsInterval <= 0 {
		return fmt.Errorf("stats_interval must be positive")
	}
	return nil
}
