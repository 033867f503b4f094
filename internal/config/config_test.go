package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3007", cfg.BindAddr)
	assert.Equal(t, "localhost:3007", cfg.Hostname)
	assert.Equal(t, "auto", cfg.StateBackend)
	assert.Equal(t, DefaultOpenIDMetadataURL, cfg.OpenIDMetadataURL)
	assert.Equal(t, 24*time.Hour, cfg.StateTTL)
	assert.True(t, cfg.EmulatorEnabled)
	assert.Empty(t, cfg.PlanetBot.AppID)
}

func TestLoadReadsBotCredentials(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("MICROSOFT_APP_ID_1", " planet-id ")
	t.Setenv("MICROSOFT_APP_PASSWORD_1", "planet-secret")
	t.Setenv("MICROSOFT_APP_ID_2", "convo-id")
	t.Setenv("MICROSOFT_APP_PASSWORD_2", "convo-secret")
	t.Setenv("HOSTNAME", "guide.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BotCredentials{AppID: "planet-id", AppPassword: "planet-secret"}, cfg.PlanetBot)
	assert.Equal(t, BotCredentials{AppID: "convo-id", AppPassword: "convo-secret"}, cfg.ConversationalBot)
	assert.Equal(t, "guide.example.com", cfg.Hostname)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"STATE_BACKEND": "etcd"}},
		{"postgres without url", map[string]string{"STATE_BACKEND": "postgres"}},
		{"redis without addr", map[string]string{"STATE_BACKEND": "redis"}},
		{"hostname with scheme", map[string]string{"HOSTNAME": "https://guide.example.com"}},
		{"app id without password", map[string]string{"MICROSOFT_APP_ID_2": "convo-id"}},
		{"bad duration", map[string]string{"STATE_TTL": "forever"}},
		{"bad bool", map[string]string{"EMULATOR_ENABLED": "maybe"}},
		{"short emulator timeout", map[string]string{"EMULATOR_SESSION_TIMEOUT": "1s"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setCoreEnvEmpty(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_LOG_MODE",
		"APP_ALLOW_ANY_ORIGIN",
		"HOSTNAME",
		"MICROSOFT_APP_ID_1",
		"MICROSOFT_APP_PASSWORD_1",
		"MICROSOFT_APP_ID_2",
		"MICROSOFT_APP_PASSWORD_2",
		"BOT_OPENID_METADATA_URL",
		"BOT_TOKEN_URL",
		"STATE_BACKEND",
		"DATABASE_URL",
		"REDIS_ADDR",
		"STATE_TTL",
		"EMULATOR_ENABLED",
		"EMULATOR_SESSION_TIMEOUT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
