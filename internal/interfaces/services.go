package interfaces

import (
	"context"

	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// ImporterService reconciles a ledger file against a Sharesight portfolio
type ImporterService interface {
	// Run imports the ledger into the named portfolio, creating each
	// record exactly once
	Run(ctx context.Context, options ImportOptions) (*models.RunSummary, error)

	// SyncPrices pushes a prices file to custom instruments without
	// touching trades or cash
	SyncPrices(ctx context.Context, options ImportOptions) (*models.RunSummary, error)

	// Seed generates opening-balance rows from another portfolio's
	// valuation and imports them
	Seed(ctx context.Context, options SeedOptions) (*models.RunSummary, error)
}

// ImportOptions configures an import run
type ImportOptions struct {
	Portfolio      string // Target portfolio name
	Country        string // Country code used when creating the portfolio
	LedgerPath     string // Path to the ledger CSV
	PricesPath     string // Optional path to the prices CSV
	Reset          bool   // Wipe holdings and cash transactions first
	DeleteExisting bool   // Drop and recreate the portfolio first
	MinDate        string // Skip rows dated before this date (YYYY-MM-DD)
	MinLine        int    // Skip rows before this 1-based line number
	MaxLine        int    // Stop after this 1-based line number
	Strict         bool   // Abort on unresolved holdings instead of skipping
	SeedFrom       string // Source portfolio for an opening-balance batch
	SeedDate       string // Valuation date for the batch (YYYY-MM-DD)
}

// SeedOptions configures seeding from an existing portfolio
type SeedOptions struct {
	Portfolio       string // Target portfolio name
	Country         string // Country code used when creating the portfolio
	SourcePortfolio string // Portfolio to read the valuation from
	Date            string // Valuation date (YYYY-MM-DD)
}
