package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jamescrowley/sharesight-importer/internal/app"
)

var (
	cfgFile      string
	debug        bool
	clientID     string
	clientSecret string
)

var rootCmd = &cobra.Command{
	Use:   "sharesight-importer",
	Short: "Reconcile a CSV investment ledger against Sharesight",
	Long: `Sharesight Importer pushes a personal investment ledger kept in a CSV
file into a Sharesight portfolio: trades, dividends, cash movements,
holding merges and custom instrument prices.

Runs are idempotent. Every record carries the ledger row's identifier,
so re-running the same file skips everything the portfolio already has
and the CSV stays the single source of truth.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "debug logging, echoes each API request as a curl command")
	rootCmd.PersistentFlags().StringVar(&clientID, "client-id", "", "Sharesight OAuth client id (or SHARESIGHT_CLIENT_ID)")
	rootCmd.PersistentFlags().StringVar(&clientSecret, "client-secret", "", "Sharesight OAuth client secret (or SHARESIGHT_CLIENT_SECRET)")
}

// newApp builds the shared client and service stack from the persistent
// flags.
func newApp() (*app.App, error) {
	level := ""
	if debug {
		level = "debug"
	}
	return app.NewApp(app.Options{
		ConfigPath:   cfgFile,
		LogLevel:     level,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}
