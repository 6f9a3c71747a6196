package sharesight

import (
	"context"
	"net/http"

	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// ListCustomInvestments retrieves custom instruments, optionally scoped to
// a portfolio. Passing 0 lists across all portfolios; codes are only
// unique per portfolio, so callers key results accordingly.
func (c *Client) ListCustomInvestments(ctx context.Context, portfolioID int64) ([]*models.CustomInvestment, error) {
	reqURL := c.v3("custom_investments")
	if portfolioID != 0 {
		reqURL = c.v3("custom_investments?portfolio_id=%d", portfolioID)
	}

	var resp customInvestmentsResponse
	if err := c.do(ctx, http.MethodGet, reqURL, nil, &resp); err != nil {
		return nil, err
	}
	return resp.CustomInvestments, nil
}

type customInvestmentsResponse struct {
	CustomInvestments []*models.CustomInvestment `json:"custom_investments"`
}

// CreateCustomInvestment creates a custom instrument
func (c *Client) CreateCustomInvestment(ctx context.Context, payload *models.CustomInvestmentPayload) (*models.CustomInvestment, error) {
	var resp customInvestmentResponse
	body := map[string]any{"custom_investment": payload}
	if err := c.do(ctx, http.MethodPost, c.v3("custom_investments"), body, &resp); err != nil {
		return nil, err
	}
	return resp.CustomInvestment, nil
}

type customInvestmentResponse struct {
	CustomInvestment *models.CustomInvestment `json:"custom_investment"`
}

// UpdateCustomInvestment updates a custom instrument in place. Only the
// display name is mutable; country, currency and type changes require
// delete and recreate.
func (c *Client) UpdateCustomInvestment(ctx context.Context, investmentID int64, payload *models.CustomInvestmentPayload) (*models.CustomInvestment, error) {
	var resp customInvestmentResponse
	body := map[string]any{"custom_investment": payload}
	if err := c.do(ctx, http.MethodPut, c.v3("custom_investments/%d", investmentID), body, &resp); err != nil {
		return nil, err
	}
	return resp.CustomInvestment, nil
}

// DeleteCustomInvestment deletes a custom instrument
func (c *Client) DeleteCustomInvestment(ctx context.Context, investmentID int64) error {
	return c.do(ctx, http.MethodDelete, c.v3("custom_investments/%d", investmentID), nil, nil)
}

// ListPrices retrieves recorded prices for a custom instrument
func (c *Client) ListPrices(ctx context.Context, investmentID int64) ([]*models.Price, error) {
	var resp pricesResponse
	if err := c.do(ctx, http.MethodGet, c.v3("custom_investments/%d/prices", investmentID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Prices, nil
}

type pricesResponse struct {
	Prices []*models.Price `json:"prices"`
}

// CreatePrice records a price for a custom instrument
func (c *Client) CreatePrice(ctx context.Context, investmentID int64, payload *models.PricePayload) (*models.Price, error) {
	var resp priceResponse
	body := map[string]any{"price": payload}
	if err := c.do(ctx, http.MethodPost, c.v3("custom_investments/%d/prices", investmentID), body, &resp); err != nil {
		return nil, err
	}
	return resp.Price, nil
}

type priceResponse struct {
	Price *models.Price `json:"price"`
}

// UpdatePrice replaces a recorded price
func (c *Client) UpdatePrice(ctx context.Context, priceID int64, payload *models.PricePayload) (*models.Price, error) {
	var resp priceResponse
	body := map[string]any{"price": payload}
	if err := c.do(ctx, http.MethodPut, c.v3("prices/%d", priceID), body, &resp); err != nil {
		return nil, err
	}
	return resp.Price, nil
}
