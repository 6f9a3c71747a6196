// Package interfaces defines client and service contracts for the importer
package interfaces

import (
	"context"

	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// SharesightClient provides access to the Sharesight API.
//
// Strict methods fail on any non-2xx status. TryCreate methods return the
// raw response instead, because record creation endpoints reject duplicates
// with a 4xx that callers must inspect rather than treat as failure.
type SharesightClient interface {
	// Authenticate obtains an access token using client credentials
	Authenticate(ctx context.Context) error

	// ListPortfolios retrieves all portfolios visible to the credentials
	ListPortfolios(ctx context.Context) ([]*models.Portfolio, error)

	// CreatePortfolio creates a new portfolio
	CreatePortfolio(ctx context.Context, payload *models.PortfolioPayload) (*models.Portfolio, error)

	// UpdatePortfolio updates portfolio settings
	UpdatePortfolio(ctx context.Context, portfolioID int64, payload *models.PortfolioPayload) (*models.Portfolio, error)

	// DeletePortfolio deletes a portfolio and everything in it
	DeletePortfolio(ctx context.Context, portfolioID int64) error

	// ListHoldings retrieves the holdings of a portfolio
	ListHoldings(ctx context.Context, portfolioID int64) ([]*models.Holding, error)

	// DeleteHolding deletes a holding and its trades and payouts
	DeleteHolding(ctx context.Context, holdingID int64) error

	// ListCashAccounts retrieves the cash accounts of a portfolio
	ListCashAccounts(ctx context.Context, portfolioID int64) ([]*models.CashAccount, error)

	// CreateCashAccount creates a cash account in a portfolio
	CreateCashAccount(ctx context.Context, portfolioID int64, payload *models.CashAccountPayload) (*models.CashAccount, error)

	// ListCashTransactions retrieves all transactions of a cash account
	ListCashTransactions(ctx context.Context, cashAccountID int64) ([]*models.CashTransaction, error)

	// DeleteCashTransaction deletes a single cash transaction
	DeleteCashTransaction(ctx context.Context, transactionID int64) error

	// ResyncCashAccount rebuilds a cash account's balance history
	ResyncCashAccount(ctx context.Context, cashAccountID int64) error

	// ListPayouts retrieves all payouts of a portfolio
	ListPayouts(ctx context.Context, portfolioID int64) ([]*models.Payout, error)

	// GetValuation retrieves a portfolio valuation on a date
	GetValuation(ctx context.Context, portfolioID int64, date string) (*models.Valuation, error)

	// ListCustomInvestments retrieves custom instruments, optionally
	// scoped to a portfolio (0 lists across all portfolios)
	ListCustomInvestments(ctx context.Context, portfolioID int64) ([]*models.CustomInvestment, error)

	// CreateCustomInvestment creates a custom instrument
	CreateCustomInvestment(ctx context.Context, payload *models.CustomInvestmentPayload) (*models.CustomInvestment, error)

	// UpdateCustomInvestment updates a custom instrument in place
	UpdateCustomInvestment(ctx context.Context, investmentID int64, payload *models.CustomInvestmentPayload) (*models.CustomInvestment, error)

	// DeleteCustomInvestment deletes a custom instrument
	DeleteCustomInvestment(ctx context.Context, investmentID int64) error

	// ListPrices retrieves recorded prices for a custom instrument
	ListPrices(ctx context.Context, investmentID int64) ([]*models.Price, error)

	// CreatePrice records a price for a custom instrument
	CreatePrice(ctx context.Context, investmentID int64, payload *models.PricePayload) (*models.Price, error)

	// UpdatePrice replaces a recorded price
	UpdatePrice(ctx context.Context, priceID int64, payload *models.PricePayload) (*models.Price, error)

	// TryCreateTrade attempts to create a trade
	TryCreateTrade(ctx context.Context, payload *models.TradePayload) (*models.Response, error)

	// TryCreatePayout attempts to create a payout
	TryCreatePayout(ctx context.Context, payload *models.PayoutPayload) (*models.Response, error)

	// TryCreateCashTransaction attempts to create a cash transaction
	TryCreateCashTransaction(ctx context.Context, cashAccountID int64, payload *models.CashTransactionPayload) (*models.Response, error)

	// TryCreateHoldingMerge attempts to record a holding merge
	TryCreateHoldingMerge(ctx context.Context, payload *models.HoldingMergePayload) (*models.Response, error)
}
