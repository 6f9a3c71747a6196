package importer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// processTrade handles one trade-class row end to end: submit with
// fallbacks, record the created holding, post the cash effect, and split
// off accrued income.
func (s *Service) processTrade(ctx context.Context, rc *runContext, row *models.LedgerRow) error {
	// an amount on a non-cash type would be silently dropped; opening
	// balances are exempt because theirs becomes the cost base
	if row.Type.NonCash() && row.Type != models.TypeOpeningBalance && !row.Amount.IsZero() {
		rc.logger.Warn().
			Int("line", row.Line).
			Str("type", string(row.Type)).
			Str("amount", row.Amount.String()).
			Msg("Amount on a non-cash transaction type is ignored")
		rc.summary.Warnings++
	}

	payload := buildTradePayload(rc, row)
	accepted, err := s.submitTrade(ctx, rc, row, payload)
	if err != nil {
		return err
	}

	// the remote service only posts trade cash movements automatically
	// outside AU; capital calls and returns are never auto-posted anywhere
	if accepted && rc.postsTradeCash(row.Type) {
		accountID, ok := rc.cashAccountFor(row.AmountCurrency, row.CashAccount)
		if !ok {
			rc.rowMissingAccount(row)
		} else if err := s.postCash(ctx, rc, row, accountID); err != nil {
			return err
		}
	}

	if !row.AccruedIncome.IsZero() {
		return s.processAccruedIncome(ctx, rc, row)
	}
	return nil
}

// submitTrade creates the trade, applying the two fallbacks in order: an
// unknown custom instrument is mirrored and the trade retried once, and an
// OPENING_BALANCE failing for any non-duplicate reason is rebooked as a
// BUY. Returns whether the trade now exists remotely (created or already
// there).
func (s *Service) submitTrade(ctx context.Context, rc *runContext, row *models.LedgerRow, payload *models.TradePayload) (bool, error) {
	resp, err := s.client.TryCreateTrade(ctx, payload)
	if err != nil {
		return false, err
	}

	if !resp.OK() && !resp.Duplicate() && resp.UnknownInstrument() && row.IsCustom() {
		created, err := s.ensureRowInstrument(ctx, rc, row)
		if err != nil {
			return false, err
		}
		if created {
			resp, err = s.client.TryCreateTrade(ctx, payload)
			if err != nil {
				return false, err
			}
			if !resp.OK() && resp.UnknownInstrument() {
				rc.logger.Error().
					Int("line", row.Line).
					Str("symbol", row.Symbol).
					Msg("Instrument still not found after creating it")
			}
		}
	}

	// opening balances are rejected when the service has no price history
	// for the instrument on that date; a BUY books unconditionally
	if !resp.OK() && !resp.Duplicate() && row.Type == models.TypeOpeningBalance {
		rc.logger.Warn().
			Int("line", row.Line).
			Str("id", row.UniqueIdentifier).
			Msg("Falling back to BUY transaction type, this will need modifying in the UI")
		payload.TransactionType = string(models.TypeBuy)
		resp, err = s.client.TryCreateTrade(ctx, payload)
		if err != nil {
			return false, err
		}
	}

	switch {
	case resp.OK():
		rc.summary.TradesCreated++
		var trade models.Trade
		if err := resp.DecodeEntity("trade", &trade); err == nil && trade.HoldingID != 0 {
			rc.recordHolding(row.Market, row.Symbol, trade.HoldingID)
		} else {
			rc.logger.Warn().
				Int("line", row.Line).
				Str("symbol", row.Symbol).
				Msg("Trade response carried no holding id")
		}
		rc.rowInfo(row, "Success")
		return true, nil
	case resp.DuplicateTrade():
		rc.summary.TradesSkipped++
		rc.rowInfo(row, "Skipped (duplicate)")
		return true, nil
	default:
		rc.rowFailure(row, payload, resp)
		rc.summary.TradesFailed++
		return false, nil
	}
}

// ensureRowInstrument mirrors the row's custom instrument definition if the
// run has not seen it yet. It reports whether a retry is worthwhile: when
// the instrument was already indexed, the rejection had another cause.
func (s *Service) ensureRowInstrument(ctx context.Context, rc *runContext, row *models.LedgerRow) (bool, error) {
	if _, ok := rc.lookupInstrument(row.Symbol); ok {
		return false, nil
	}
	if err := s.createInstrument(ctx, rc, row.Instrument()); err != nil {
		return false, err
	}
	return true, nil
}

// processAccruedIncome books the accrued interest component of a bond-like
// trade separately: the seller receives it as income, the buyer pays it as
// extra capital. The derived row shares the original's identity with an
// accrued_income suffix, so re-runs de-duplicate it like any other row.
func (s *Service) processAccruedIncome(ctx context.Context, rc *runContext, row *models.LedgerRow) error {
	derived := *row
	derived.UniqueIdentifier = row.UniqueIdentifier + "-accrued_income"
	derived.Amount = row.AccruedIncome
	derived.AccruedIncome = decimal.Zero
	derived.Quantity = decimal.Zero
	derived.Price = decimal.Zero
	derived.Description = "Accrued income"

	switch row.Type {
	case models.TypeSell:
		derived.Type = models.TypeDividend
		rc.logger.Debug().Int("line", row.Line).Msg("Booking accrued income as a payout")
		return s.processPayout(ctx, rc, &derived)
	case models.TypeBuy:
		derived.Type = models.TypeCapitalCall
		rc.logger.Debug().Int("line", row.Line).Msg("Booking accrued income as a capital call")
		return s.processTrade(ctx, rc, &derived)
	default:
		rc.logger.Warn().
			Int("line", row.Line).
			Str("type", string(row.Type)).
			Msg("Accrued income is only split for BUY and SELL rows")
		rc.summary.Warnings++
		return nil
	}
}

// postsTradeCash reports whether a trade of this type must be mirrored into
// a cash account by the importer.
func (rc *runContext) postsTradeCash(t models.TransactionType) bool {
	if t.IsCapitalCallOrReturn() {
		return true
	}
	if t.NonCash() {
		return false
	}
	return rc.country == "AU"
}

func buildTradePayload(rc *runContext, row *models.LedgerRow) *models.TradePayload {
	payload := &models.TradePayload{
		UniqueIdentifier: row.UniqueIdentifier,
		TransactionType:  string(row.Type),
		TransactionDate:  row.TransactionDate.Format(models.DateFormat),
		PortfolioID:      rc.portfolio.ID,
		Symbol:           row.Symbol,
		Market:           row.Market,
		Quantity:         row.Quantity.String(),
		Price:            row.Price.String(),
		GoesExOn:         row.GoesExOn,
		ExchangeRate:     exchangeRate(row),
		Comments:         row.Comments,
	}
	if !row.Brokerage.IsZero() {
		payload.Brokerage = row.Brokerage.String()
		payload.BrokerageCcy = row.BrokerageCcy
		if payload.BrokerageCcy == "" {
			payload.BrokerageCcy = rc.portfolio.CurrencyCode
		}
	}
	if row.Type == models.TypeOpeningBalance && !row.Amount.IsZero() {
		payload.CostBase = row.Amount.String()
	}
	if row.Type.IsCapitalCallOrReturn() {
		payload.CapitalReturnValue = row.Amount.Abs().String()
		payload.PaidOn = payload.TransactionDate
	}
	return payload
}

func exchangeRate(row *models.LedgerRow) string {
	if row.ExchangeRate.IsZero() {
		return "1"
	}
	return row.ExchangeRate.String()
}
