package cli

import (
	"os"
	"time"

	"github.com/aussiebroadwan/ldapsession/pkg/dirclient"
	"github.com/aussiebroadwan/ldapsession/pkg/session"
)

type Config struct {
	ServerURL       string        // Credential server base URL (default: http://localhost:8389)
	DatabaseFile    string        // Path to the SQLite secure store (default: ./sessions.db)
	StorePassphrase string        // Optional: encrypt the store at rest when set
	SweepInterval   time.Duration // Background refresh period (default: 10m)
	ExpiryMode      string        // Token expiry strategy: fixed, server (default: fixed)
	TokenTTL        time.Duration // Client-side token TTL (default: 10m)
	Env             string        // Environment (dev, prod) (default: dev)
	LogLevel        string        // Log level (debug, info, warn, error) (default: info)
	LogFormat       string        // Log format (json, text) (default: text)
}

func LoadConfig() Config {
	return Config{
		ServerURL:       getEnvOrDefault("LDAP_SERVER_URL", dirclient.DefaultBaseURL),
		DatabaseFile:    getEnvOrDefault("LDAP_DATABASE_FILE", "sessions.db"),
		StorePassphrase: os.Getenv("LDAP_STORE_PASSPHRASE"),
		SweepInterval:   getEnvDurationOrDefault("LDAP_SWEEP_INTERVAL", session.DefaultSweepInterval),
		ExpiryMode:      getEnvOrDefault("LDAP_EXPIRY_MODE", "fixed"),
		TokenTTL:        getEnvDurationOrDefault("LDAP_TOKEN_TTL", session.DefaultTTL),
		Env:             getEnvOrDefault("ENV", "dev"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

// Expiry maps the configured mode onto a strategy. Unknown modes fall back
// to the fixed client-side TTL.
func (c Config) Expiry() session.ExpiryStrategy {
	if c.ExpiryMode == "server" {
		return session.ServerAdvised{Fallback: c.TokenTTL}
	}
	return session.FixedTTL{TTL: c.TokenTTL}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
