package sharesight

import (
	"context"
	"net/http"

	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// CreateCashAccount creates a cash account in a portfolio
func (c *Client) CreateCashAccount(ctx context.Context, portfolioID int64, payload *models.CashAccountPayload) (*models.CashAccount, error) {
	var resp cashAccountResponse
	body := map[string]any{"cash_account": payload}
	if err := c.do(ctx, http.MethodPost, c.v2("portfolios/%d/cash_accounts.json", portfolioID), body, &resp); err != nil {
		return nil, err
	}
	return resp.CashAccount, nil
}

type cashAccountResponse struct {
	CashAccount *models.CashAccount `json:"cash_account"`
}

// ListCashAccounts retrieves the cash accounts of a portfolio
func (c *Client) ListCashAccounts(ctx context.Context, portfolioID int64) ([]*models.CashAccount, error) {
	var resp cashAccountsResponse
	if err := c.do(ctx, http.MethodGet, c.v2("portfolios/%d/cash_accounts.json", portfolioID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.CashAccounts, nil
}

type cashAccountsResponse struct {
	CashAccounts []*models.CashAccount `json:"cash_accounts"`
}

// ListCashTransactions retrieves all transactions of a cash account
func (c *Client) ListCashTransactions(ctx context.Context, cashAccountID int64) ([]*models.CashTransaction, error) {
	var resp cashTransactionsResponse
	if err := c.do(ctx, http.MethodGet, c.v2("cash_accounts/%d/cash_account_transactions.json", cashAccountID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.CashTransactions, nil
}

type cashTransactionsResponse struct {
	CashTransactions []*models.CashTransaction `json:"cash_account_transactions"`
}

// DeleteCashTransaction deletes a single cash transaction
func (c *Client) DeleteCashTransaction(ctx context.Context, transactionID int64) error {
	return c.do(ctx, http.MethodDelete, c.v2("cash_account_transactions/%d.json", transactionID), nil, nil)
}

// ResyncCashAccount rebuilds a cash account's balance history from a fixed
// date far enough back to cover any ledger. Undocumented endpoint.
func (c *Client) ResyncCashAccount(ctx context.Context, cashAccountID int64) error {
	reqURL := c.v2("cash_accounts/%d/reset.json?start_date=%%222010-01-01T00:00:00.000Z%%22", cashAccountID)
	return c.do(ctx, http.MethodPost, reqURL, nil, nil)
}
