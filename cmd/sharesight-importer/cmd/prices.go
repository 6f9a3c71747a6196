package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamescrowley/sharesight-importer/internal/interfaces"
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Sync a prices CSV to custom instruments",
	Long: `Prices pushes closing prices from a CSV onto the portfolio's custom
instruments without touching trades or cash. A price already recorded at
the same value is left alone; a different value on the same date is
corrected in place.

Example:
  sharesight-importer prices -p "Family Trust" -f prices.csv`,
	RunE: runPrices,
}

var (
	pricesPortfolio string
	pricesFile      string
)

func init() {
	rootCmd.AddCommand(pricesCmd)

	pricesCmd.Flags().StringVarP(&pricesPortfolio, "portfolio", "p", "", "portfolio holding the custom instruments (required)")
	pricesCmd.Flags().StringVarP(&pricesFile, "file", "f", "", "path to the prices CSV (required)")

	pricesCmd.MarkFlagRequired("portfolio")
	pricesCmd.MarkFlagRequired("file")
}

func runPrices(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := a.Authenticate(ctx); err != nil {
		return err
	}

	summary, err := a.Importer.SyncPrices(ctx, interfaces.ImportOptions{
		Portfolio:  pricesPortfolio,
		PricesPath: pricesFile,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Price sync complete: %d created, %d updated\n",
		summary.PricesCreated, summary.PricesUpdated)
	if summary.Warnings > 0 {
		fmt.Printf("  Warnings: %d, see the log for details\n", summary.Warnings)
	}
	return nil
}
