package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamescrowley/sharesight-importer/internal/clients/sharesight"
	"github.com/jamescrowley/sharesight-importer/internal/common"
	"github.com/jamescrowley/sharesight-importer/internal/interfaces"
	"github.com/jamescrowley/sharesight-importer/internal/services/importer"
)

// App wires configuration, the API client and the importer service together
// for the CLI commands.
type App struct {
	Config   *common.Config
	Logger   *common.Logger
	Client   interfaces.SharesightClient
	Importer interfaces.ImporterService
}

// Options carries the command-line overrides into the wiring. Anything left
// empty falls back to the environment, the config file, then defaults.
type Options struct {
	ConfigPath   string
	LogLevel     string
	ClientID     string
	ClientSecret string
}

// binaryDir returns the directory containing the executable.
func binaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and builds the client and service stack.
// The config path may be empty: SHARESIGHT_IMPORTER_CONFIG and a config
// file next to the binary are tried in turn before falling back to
// defaults.
func NewApp(opts Options) (*App, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = os.Getenv("SHARESIGHT_IMPORTER_CONFIG")
	}
	if configPath == "" {
		candidate := filepath.Join(binaryDir(), "sharesight-importer.toml")
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.LogLevel != "" {
		config.LogLevel = opts.LogLevel
	}
	if opts.ClientID != "" {
		config.Credentials.ClientID = opts.ClientID
	}
	if opts.ClientSecret != "" {
		config.Credentials.ClientSecret = opts.ClientSecret
	}

	logger := common.NewLogger(config.LogLevel)

	if config.Credentials.ClientID == "" || config.Credentials.ClientSecret == "" {
		return nil, fmt.Errorf("missing API credentials, set SHARESIGHT_CLIENT_ID and SHARESIGHT_CLIENT_SECRET")
	}

	client := sharesight.NewClient(
		config.Credentials.ClientID,
		config.Credentials.ClientSecret,
		sharesight.WithBaseURL(config.API.Endpoint),
		sharesight.WithLogger(logger),
		sharesight.WithTimeout(config.API.GetTimeout()),
		sharesight.WithRateLimit(config.API.RateLimit),
		sharesight.WithRetryDelay(config.API.GetRetryDelay()),
		sharesight.WithDebugCurl(config.LogLevel == "debug"),
	)

	return &App{
		Config:   config,
		Logger:   logger,
		Client:   client,
		Importer: importer.NewService(client, logger),
	}, nil
}

// Authenticate acquires the OAuth token up front so credential problems
// surface before any file is read.
func (a *App) Authenticate(ctx context.Context) error {
	if err := a.Client.Authenticate(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	return nil
}
