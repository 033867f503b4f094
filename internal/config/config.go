package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultOpenIDMetadataURL = "https://login.botframework.com/v1/.well-known/openidconfiguration"
	DefaultBotTokenURL       = "https://login.microsoftonline.com/botframework.com/oauth2/v2.0/token"
)

// BotCredentials is one Microsoft app identity. An empty AppID means local/emulator mode.
type BotCredentials struct {
	AppID       string
	AppPassword string
}

// Config contains all runtime settings for the teams guide service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	LogMode          string
	AllowAnyOrigin   bool

	// Hostname is used to build absolute task module URLs handed to the Teams client.
	Hostname string

	PlanetBot         BotCredentials
	ConversationalBot BotCredentials

	OpenIDMetadataURL string
	BotTokenURL       string

	StateBackend string
	DatabaseURL  string
	RedisAddr    string
	StateTTL     time.Duration

	EmulatorEnabled        bool
	EmulatorSessionTimeout time.Duration
}

// Load reads environment variables (and a .env file when present) and applies safe defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":3007"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "teamsguide"),
		LogMode:          envOrDefault("APP_LOG_MODE", "dev"),
		Hostname:         envOrDefault("HOSTNAME", "localhost:3007"),
		PlanetBot: BotCredentials{
			AppID:       trimmedEnv("MICROSOFT_APP_ID_1"),
			AppPassword: trimmedEnv("MICROSOFT_APP_PASSWORD_1"),
		},
		ConversationalBot: BotCredentials{
			AppID:       trimmedEnv("MICROSOFT_APP_ID_2"),
			AppPassword: trimmedEnv("MICROSOFT_APP_PASSWORD_2"),
		},
		OpenIDMetadataURL:      envOrDefault("BOT_OPENID_METADATA_URL", DefaultOpenIDMetadataURL),
		BotTokenURL:            envOrDefault("BOT_TOKEN_URL", DefaultBotTokenURL),
		StateBackend:           strings.ToLower(envOrDefault("STATE_BACKEND", "auto")),
		DatabaseURL:            trimmedEnv("DATABASE_URL"),
		RedisAddr:              trimmedEnv("REDIS_ADDR"),
		StateTTL:               24 * time.Hour,
		ShutdownTimeout:        15 * time.Second,
		EmulatorEnabled:        true,
		EmulatorSessionTimeout: 10 * time.Minute,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.StateTTL, err = durationFromEnv("STATE_TTL", cfg.StateTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.EmulatorSessionTimeout, err = durationFromEnv("EMULATOR_SESSION_TIMEOUT", cfg.EmulatorSessionTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.EmulatorEnabled, err = boolFromEnv("EMULATOR_ENABLED", cfg.EmulatorEnabled)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.StateBackend {
	case "auto", "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("STATE_BACKEND=postgres requires DATABASE_URL")
		}
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("STATE_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("invalid STATE_BACKEND: %q (expected auto|memory|redis|postgres)", c.StateBackend)
	}
	if strings.TrimSpace(c.Hostname) == "" {
		return fmt.Errorf("HOSTNAME must not be empty")
	}
	if strings.Contains(c.Hostname, "://") {
		return fmt.Errorf("HOSTNAME must be a bare host, got %q", c.Hostname)
	}
	if c.EmulatorSessionTimeout < 5*time.Second {
		return fmt.Errorf("EMULATOR_SESSION_TIMEOUT must be at least 5s")
	}
	if c.PlanetBot.AppID != "" && c.PlanetBot.AppPassword == "" {
		return fmt.Errorf("MICROSOFT_APP_PASSWORD_1 is required when MICROSOFT_APP_ID_1 is set")
	}
	if c.ConversationalBot.AppID != "" && c.ConversationalBot.AppPassword == "" {
		return fmt.Errorf("MICROSOFT_APP_PASSWORD_2 is required when MICROSOFT_APP_ID_2 is set")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err == nil {
		return b, nil
	}
	switch v {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
