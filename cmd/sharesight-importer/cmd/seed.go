package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jamescrowley/sharesight-importer/internal/interfaces"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a portfolio from another portfolio's valuation",
	Long: `Seed reads a point-in-time valuation of another portfolio and imports
it into the target as opening balances plus a deposit per funded cash
account. The generated rows carry deterministic identifiers, so seeding
twice creates nothing new.

Example:
  sharesight-importer seed -p "Family Trust" --from "Old Broker" --date 2023-06-30 -c AU`,
	RunE: runSeed,
}

var (
	seedPortfolio string
	seedCountry   string
	seedFrom      string
	seedDate      string
)

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVarP(&seedPortfolio, "portfolio", "p", "", "target portfolio name (required)")
	seedCmd.Flags().StringVarP(&seedCountry, "country", "c", "", "ISO2 country code used when creating the portfolio")
	seedCmd.Flags().StringVar(&seedFrom, "from", "", "portfolio to read the valuation from (required)")
	seedCmd.Flags().StringVar(&seedDate, "date", "", "valuation date (YYYY-MM-DD, default today)")

	seedCmd.MarkFlagRequired("portfolio")
	seedCmd.MarkFlagRequired("from")
}

func runSeed(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := a.Authenticate(ctx); err != nil {
		return err
	}

	summary, err := a.Importer.Seed(ctx, interfaces.SeedOptions{
		Portfolio:       seedPortfolio,
		Country:         seedCountry,
		SourcePortfolio: seedFrom,
		Date:            seedDate,
	})
	if err != nil {
		return err
	}

	printSummary(summary)
	return nil
}
