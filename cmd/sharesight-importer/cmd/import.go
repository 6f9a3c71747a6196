package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamescrowley/sharesight-importer/internal/interfaces"
	"github.com/jamescrowley/sharesight-importer/internal/models"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a ledger CSV into a portfolio",
	Long: `Import reconciles a ledger CSV against the named portfolio, creating
the trades, payouts, cash transactions and holding merges the portfolio
does not have yet. Already-imported records are skipped, so the command
is safe to re-run after every ledger edit.

Rows the API rejects are logged and counted without stopping the run;
the exit code is non-zero only for errors that abort it.

Example:
  sharesight-importer import -p "Family Trust" -c AU -f ledger.csv`,
	RunE: runImport,
}

var (
	importPortfolio  string
	importCountry    string
	importFile       string
	importPricesFile string
	importReset      bool
	importDelete     bool
	importMinDate    string
	importMinLine    int
	importMaxLine    int
	importStrict     bool
	importSeedFrom   string
	importSeedDate   string
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importPortfolio, "portfolio", "p", "", "target portfolio name (required)")
	importCmd.Flags().StringVarP(&importCountry, "country", "c", "", "ISO2 country code used when creating the portfolio (required)")
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "path to the ledger CSV (required)")
	importCmd.Flags().StringVar(&importPricesFile, "prices-file", "", "prices CSV synced to custom instruments before the import")
	importCmd.Flags().BoolVar(&importReset, "reset", false, "wipe the portfolio's holdings and cash transactions first")
	importCmd.Flags().BoolVar(&importDelete, "delete-existing", false, "delete and recreate the portfolio first")
	importCmd.Flags().StringVar(&importMinDate, "min-date", "", "skip rows dated before this date (YYYY-MM-DD)")
	importCmd.Flags().IntVar(&importMinLine, "min-line", 0, "skip rows before this line number")
	importCmd.Flags().IntVar(&importMaxLine, "max-line", 0, "stop after this line number")
	importCmd.Flags().BoolVar(&importStrict, "strict", false, "abort on unresolved holdings instead of skipping them")
	importCmd.Flags().StringVar(&importSeedFrom, "seed-from", "", "prepend opening balances from this portfolio's valuation")
	importCmd.Flags().StringVar(&importSeedDate, "seed-date", "", "valuation date for --seed-from (YYYY-MM-DD, default today)")

	importCmd.MarkFlagRequired("portfolio")
	importCmd.MarkFlagRequired("country")
	importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := a.Authenticate(ctx); err != nil {
		return err
	}

	summary, err := a.Importer.Run(ctx, interfaces.ImportOptions{
		Portfolio:      importPortfolio,
		Country:        importCountry,
		LedgerPath:     importFile,
		PricesPath:     importPricesFile,
		Reset:          importReset,
		DeleteExisting: importDelete,
		MinDate:        importMinDate,
		MinLine:        importMinLine,
		MaxLine:        importMaxLine,
		Strict:         importStrict,
		SeedFrom:       importSeedFrom,
		SeedDate:       importSeedDate,
	})
	if err != nil {
		return err
	}

	printSummary(summary)
	return nil
}

func printSummary(summary *models.RunSummary) {
	fmt.Printf("Import complete: %d rows\n", summary.RowsRead)
	fmt.Printf("  Trades:  %d created, %d skipped, %d failed\n",
		summary.TradesCreated, summary.TradesSkipped, summary.TradesFailed)
	fmt.Printf("  Payouts: %d created, %d skipped, %d failed\n",
		summary.PayoutsCreated, summary.PayoutsSkipped, summary.PayoutsFailed)
	fmt.Printf("  Cash:    %d created, %d skipped, %d failed\n",
		summary.CashCreated, summary.CashSkipped, summary.CashFailed)
	if summary.MergesCreated+summary.MergesSkipped+summary.MergesFailed > 0 {
		fmt.Printf("  Merges:  %d created, %d skipped, %d failed\n",
			summary.MergesCreated, summary.MergesSkipped, summary.MergesFailed)
	}
	if summary.Instruments > 0 {
		fmt.Printf("  Custom instruments created: %d\n", summary.Instruments)
	}
	if summary.PricesCreated+summary.PricesUpdated > 0 {
		fmt.Printf("  Prices:  %d created, %d updated\n", summary.PricesCreated, summary.PricesUpdated)
	}
	if summary.Warnings > 0 {
		fmt.Printf("  Warnings: %d, see the log for details\n", summary.Warnings)
	}
}
