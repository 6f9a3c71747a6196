package common

import (
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the importer
type Config struct {
	LogLevel    string            `toml:"log_level"`
	API         APIConfig         `toml:"api"`
	Credentials CredentialsConfig `toml:"credentials"`
}

// APIConfig holds Sharesight API configuration
type APIConfig struct {
	Endpoint   string `toml:"endpoint"` // scheme+host; /api/v2, /api/v3 and /oauth2/token derive from it
	Timeout    string `toml:"timeout"`
	RateLimit  int    `toml:"rate_limit"`
	RetryDelay string `toml:"retry_delay"`
}

// GetTimeout parses and returns the timeout duration
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetRetryDelay parses and returns the initial gateway-retry delay
func (c *APIConfig) GetRetryDelay() time.Duration {
	d, err := time.ParseDuration(c.RetryDelay)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// CredentialsConfig holds the OAuth2 client credentials. Normally sourced
// from the environment; the file form exists for development setups.
type CredentialsConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		API: APIConfig{
			Endpoint:   "https://api.sharesight.com",
			Timeout:    "30s",
			RateLimit:  5,
			RetryDelay: "500ms",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SHARESIGHT_CLIENT_ID"); v != "" {
		config.Credentials.ClientID = v
	}
	if v := os.Getenv("SHARESIGHT_CLIENT_SECRET"); v != "" {
		config.Credentials.ClientSecret = v
	}
	if v := os.Getenv("SHARESIGHT_ENDPOINT"); v != "" {
		config.API.Endpoint = v
	}
	if v := os.Getenv("SHARESIGHT_IMPORTER_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
}
