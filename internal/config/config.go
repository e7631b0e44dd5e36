package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	JWT      JWTConfig      `mapstructure:"jwt" yaml:"jwt"`
	Chat     ChatConfig     `mapstructure:"chat" yaml:"chat"`
}

// DatabaseConfig controls the persistence backend selection.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`

	// ConnectRetries is how many times opening the durable store is
	// attempted at startup before giving up.
	ConnectRetries int           `mapstructure:"connect_retries" yaml:"connect_retries"`
	RetryDelay     time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`

	// AllowVolatileFallback selects the in-memory store when the durable
	// one cannot be opened. The choice is made once per process; there is
	// no promotion back to the durable store at runtime.
	AllowVolatileFallback bool `mapstructure:"allow_volatile_fallback" yaml:"allow_volatile_fallback"`
}

// JWTConfig holds token issuance and validation settings.
type JWTConfig struct {
	Secret   string        `mapstructure:"secret" yaml:"secret"`
	Issuer   string        `mapstructure:"issuer" yaml:"issuer"`
	Audience string        `mapstructure:"audience" yaml:"audience"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// ChatConfig bounds chat payloads and history reads.
type ChatConfig struct {
	MaxMessageLen int `mapstructure:"max_message_len" yaml:"max_message_len"`
	HistoryLimit  int `mapstructure:"history_limit" yaml:"history_limit"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		Database: DatabaseConfig{
			Path:                  "sochat.db",
			ConnectRetries:        3,
			RetryDelay:            time.Second,
			AllowVolatileFallback: false,
		},
		JWT: JWTConfig{
			Secret:   "change-me",
			Issuer:   "sochat",
			Audience: "sochat-clients",
			TTL:      24 * time.Hour,
		},
		Chat: ChatConfig{
			MaxMessageLen: 1000,
			HistoryLimit:  100,
		},
	}
}
