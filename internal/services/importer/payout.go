package importer

import (
	"context"
	"fmt"

	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// processPayout books a dividend or distribution against its holding. The
// remote side has no unique identifier for payouts, so idempotency comes
// from the (holding, paid_on) index preloaded at setup.
func (s *Service) processPayout(ctx context.Context, rc *runContext, row *models.LedgerRow) error {
	holdingID, ok := rc.lookupHolding(row.Market, row.Symbol)
	if !ok {
		if rc.strict {
			return fmt.Errorf("line %d: no holding for %s/%s to receive the payout", row.Line, row.Market, row.Symbol)
		}
		rc.logger.Error().
			Int("line", row.Line).
			Str("symbol", row.Symbol).
			Str("market", row.Market).
			Msg("No holding for payout")
		rc.summary.PayoutsFailed++
		return nil
	}

	paidOn := row.TransactionDate.Format(models.DateFormat)
	key := rc.payoutKey(holdingID, paidOn)
	if rc.payouts[key] {
		rc.summary.PayoutsSkipped++
		rc.rowInfo(row, "Skipped (duplicate)")
	} else {
		payload := &models.PayoutPayload{
			PortfolioID:  rc.portfolio.ID,
			HoldingID:    holdingID,
			PaidOn:       paidOn,
			Amount:       row.Amount.String(),
			CurrencyCode: row.AmountCurrency,
			GoesExOn:     row.GoesExOn,
			ExchangeRate: exchangeRate(row),
		}
		resp, err := s.client.TryCreatePayout(ctx, payload)
		if err != nil {
			return err
		}
		if !resp.OK() {
			rc.rowFailure(row, payload, resp)
			rc.summary.PayoutsFailed++
			return nil
		}
		rc.payouts[key] = true
		rc.summary.PayoutsCreated++
		rc.rowInfo(row, "Success")
	}

	// the remote service credits payout cash automatically outside AU
	if rc.country == "AU" {
		accountID, ok := rc.cashAccountFor(row.AmountCurrency, row.CashAccount)
		if !ok {
			rc.rowMissingAccount(row)
			return nil
		}
		return s.postCash(ctx, rc, row, accountID)
	}
	return nil
}
