package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// buildSeedRows renders another portfolio's valuation as ledger rows: one
// OPENING_BALANCE per holding and one DEPOSIT per funded cash account. The
// generated identifiers are deterministic, so re-running a seed
// de-duplicates like any other import. Rows carry line number zero, which
// exempts them from range filters.
func (s *Service) buildSeedRows(ctx context.Context, rc *runContext, sourceName, dateStr string) ([]*models.LedgerRow, error) {
	if dateStr == "" {
		dateStr = time.Now().UTC().Format(models.DateFormat)
	}
	date, err := time.Parse(models.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid seed date %q, want YYYY-MM-DD", dateStr)
	}

	source, err := s.findPortfolio(ctx, sourceName)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("seed source portfolio %q not found", sourceName)
	}

	valuation, err := s.client.GetValuation(ctx, source.ID, dateStr)
	if err != nil {
		return nil, err
	}

	comment := fmt.Sprintf("Seeded from portfolio %s valuation on %s", source.Name, dateStr)
	var rows []*models.LedgerRow

	for _, holding := range valuation.Holdings {
		if holding.Quantity.IsZero() {
			rc.logger.Debug().
				Str("symbol", holding.Symbol).
				Str("market", holding.Market).
				Msg("Skipping zero-quantity holding")
			continue
		}
		rows = append(rows, &models.LedgerRow{
			UniqueIdentifier: fmt.Sprintf("seed-%d-%s-%s-%s",
				source.ID, dateStr, strings.ToLower(holding.Market), strings.ToLower(holding.Symbol)),
			Type:            models.TypeOpeningBalance,
			TransactionDate: date,
			Symbol:          holding.Symbol,
			Market:          holding.Market,
			Quantity:        holding.Quantity,
			Price:           holding.Value.Div(holding.Quantity),
			Amount:          holding.Value,
			Comments:        comment,
		})
	}

	cashTotal := decimal.Zero
	for i, account := range valuation.CashAccounts {
		cashTotal = cashTotal.Add(account.Value)
		if account.Value.IsZero() {
			continue
		}
		rows = append(rows, &models.LedgerRow{
			UniqueIdentifier: fmt.Sprintf("seed-%d-%s-cash-%d", source.ID, dateStr, i),
			Type:             models.TypeDeposit,
			TransactionDate:  date,
			Amount:           account.Value,
			AmountCurrency:   strings.ToUpper(account.Currency),
			Description:      comment,
		})
	}
	if !cashTotal.Equal(valuation.Cash) {
		rc.logger.Warn().
			Str("accounts", cashTotal.String()).
			Str("valuation", valuation.Cash.String()).
			Msg("Cash account balances do not add up to the valuation cash figure")
		rc.summary.Warnings++
	}

	rc.logger.Info().
		Str("source", source.Name).
		Str("date", dateStr).
		Int("rows", len(rows)).
		Msg("Built seed rows from valuation")
	return rows, nil
}
