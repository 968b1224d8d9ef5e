package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, DefaultHTTPAddr, cfg.Server.Addr)
	require.Equal(t, DefaultWebhookTimeout, cfg.Webhook.TimeoutSeconds)
	require.Equal(t, DefaultPGDatabase, cfg.Postgres.Database)
	require.Equal(t, DefaultLLMModel, cfg.LLM.Model)
	require.Equal(t, DefaultSendRate, cfg.Messaging.SendRatePerSecond)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[log]
level = "debug"

[server]
addr = ":9090"

[webhook]
timeout_seconds = 30

[llm]
api_key = "sk-test"
model = "gpt-4o-mini"

[messaging]
base_url = "http://provider.local"
send_rate_per_second = 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, 30, cfg.Webhook.TimeoutSeconds)
	require.Equal(t, "sk-test", cfg.LLM.APIKey)
	require.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	require.Equal(t, "http://provider.local", cfg.Messaging.BaseURL)
	require.Equal(t, 0.5, cfg.Messaging.SendRatePerSecond)
	// Untouched sections keep their defaults.
	require.Equal(t, DefaultPGHost, cfg.Postgres.Host)
	require.Equal(t, DefaultLLMBaseURL, cfg.LLM.BaseURL)
}
