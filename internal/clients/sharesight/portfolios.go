package sharesight

import (
	"context"
	"net/http"

	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// ListPortfolios retrieves all portfolios visible to the credentials
func (c *Client) ListPortfolios(ctx context.Context) ([]*models.Portfolio, error) {
	var resp portfoliosResponse
	if err := c.do(ctx, http.MethodGet, c.v2("portfolios.json"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Portfolios, nil
}

type portfoliosResponse struct {
	Portfolios []*models.Portfolio `json:"portfolios"`
}

// CreatePortfolio creates a new portfolio. Unlike most endpoints the
// created portfolio comes back unwrapped at the top level.
func (c *Client) CreatePortfolio(ctx context.Context, payload *models.PortfolioPayload) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	body := map[string]any{"portfolio": payload}
	if err := c.do(ctx, http.MethodPost, c.v2("portfolios.json"), body, &portfolio); err != nil {
		return nil, err
	}
	return &portfolio, nil
}

// UpdatePortfolio updates portfolio settings
func (c *Client) UpdatePortfolio(ctx context.Context, portfolioID int64, payload *models.PortfolioPayload) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	body := map[string]any{"portfolio": payload}
	if err := c.do(ctx, http.MethodPut, c.v2("portfolios/%d.json", portfolioID), body, &portfolio); err != nil {
		return nil, err
	}
	return &portfolio, nil
}

// DeletePortfolio deletes a portfolio and everything in it
func (c *Client) DeletePortfolio(ctx context.Context, portfolioID int64) error {
	return c.do(ctx, http.MethodDelete, c.v2("portfolios/%d.json", portfolioID), nil, nil)
}

// ListHoldings retrieves the holdings of a portfolio
func (c *Client) ListHoldings(ctx context.Context, portfolioID int64) ([]*models.Holding, error) {
	var resp holdingsResponse
	if err := c.do(ctx, http.MethodGet, c.v3("portfolios/%d/holdings", portfolioID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Holdings, nil
}

type holdingsResponse struct {
	Holdings []*models.Holding `json:"holdings"`
}

// DeleteHolding deletes a holding and its trades and payouts
func (c *Client) DeleteHolding(ctx context.Context, holdingID int64) error {
	return c.do(ctx, http.MethodDelete, c.v2("holdings/%d.json", holdingID), nil, nil)
}

// ListPayouts retrieves all payouts of a portfolio
func (c *Client) ListPayouts(ctx context.Context, portfolioID int64) ([]*models.Payout, error) {
	var resp payoutsResponse
	if err := c.do(ctx, http.MethodGet, c.v2("portfolios/%d/payouts.json", portfolioID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Payouts, nil
}

type payoutsResponse struct {
	Payouts []*models.Payout `json:"payouts"`
}

// GetValuation retrieves a portfolio valuation on a date (YYYY-MM-DD)
func (c *Client) GetValuation(ctx context.Context, portfolioID int64, date string) (*models.Valuation, error) {
	var valuation models.Valuation
	reqURL := c.v2("portfolios/%d/valuation.json?balance_date=%s", portfolioID, date)
	if err := c.do(ctx, http.MethodGet, reqURL, nil, &valuation); err != nil {
		return nil, err
	}
	return &valuation, nil
}
