package sharesight

import (
	"context"
	"net/http"

	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// Record creation is non-strict: the service rejects duplicates with a 4xx
// plus a structured errors body that the caller inspects, so these return
// the raw response instead of an error.

// TryCreateTrade attempts to create a trade
func (c *Client) TryCreateTrade(ctx context.Context, payload *models.TradePayload) (*models.Response, error) {
	body := map[string]any{"trade": payload}
	return c.request(ctx, http.MethodPost, c.v2("trades.json"), body)
}

// TryCreatePayout attempts to create a payout
func (c *Client) TryCreatePayout(ctx context.Context, payload *models.PayoutPayload) (*models.Response, error) {
	body := map[string]any{"payout": payload}
	return c.request(ctx, http.MethodPost, c.v2("payouts.json"), body)
}

// TryCreateCashTransaction attempts to create a cash transaction
func (c *Client) TryCreateCashTransaction(ctx context.Context, cashAccountID int64, payload *models.CashTransactionPayload) (*models.Response, error) {
	body := map[string]any{"cash_account_transaction": payload}
	return c.request(ctx, http.MethodPost, c.v2("cash_accounts/%d/cash_account_transactions.json", cashAccountID), body)
}

// TryCreateHoldingMerge attempts to record a holding merge
func (c *Client) TryCreateHoldingMerge(ctx context.Context, payload *models.HoldingMergePayload) (*models.Response, error) {
	body := map[string]any{"holding_merge": payload}
	return c.request(ctx, http.MethodPost, c.v2("holding_merges.json"), body)
}
