// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath     = "config.toml"
	DefaultHTTPAddr       = ":8080"
	DefaultPGHost         = "127.0.0.1"
	DefaultPGPort         = 5432
	DefaultPGUser         = "postgres"
	DefaultPGDatabase     = "obralink"
	DefaultPGSSLMode      = "disable"
	DefaultLLMBaseURL     = "https://api.openai.com/v1"
	DefaultLLMModel       = "gpt-4o"
	DefaultLLMTimeoutSecs = 60
	DefaultWebhookTimeout = 90
	DefaultMessagingURL   = "http://127.0.0.1:8085"
	DefaultSendRate       = 1.0
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log       LogConfig       `toml:"log"`
	Server    ServerConfig    `toml:"server"`
	Webhook   WebhookConfig   `toml:"webhook"`
	Postgres  PostgresConfig  `toml:"postgres"`
	LLM       LLMConfig       `toml:"llm"`
	Messaging MessagingConfig `toml:"messaging"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// WebhookConfig holds inbound webhook processing limits.
type WebhookConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// LLMConfig holds the platform-wide chat-completion API settings.
type LLMConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// MessagingConfig holds the messaging-provider base URL and the per-instance
// send rate limit.
type MessagingConfig struct {
	BaseURL           string  `toml:"base_url"`
	SendRatePerSecond float64 `toml:"send_rate_per_second"`
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Webhook: WebhookConfig{
			TimeoutSeconds: DefaultWebhookTimeout,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		LLM: LLMConfig{
			BaseURL:        DefaultLLMBaseURL,
			Model:          DefaultLLMModel,
			TimeoutSeconds: DefaultLLMTimeoutSecs,
		},
		Messaging: MessagingConfig{
			BaseURL:           DefaultMessagingURL,
			SendRatePerSecond: DefaultSendRate,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
