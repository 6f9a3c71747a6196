package importer

import (
	"context"
	"fmt"

	"github.com/jamescrowley/sharesight-importer/internal/ledger"
	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// processMerge consumes a MERGE_CANCEL/MERGE_BUY pair as one unit: the
// cancelled holding rolls into the replacement instrument. The pair must be
// adjacent in the file, in either order. A missing cancelled holding means
// the merge already happened on a previous run.
func (s *Service) processMerge(ctx context.Context, rc *runContext, row *models.LedgerRow, cursor *ledger.Cursor) error {
	partner := cursor.Next()
	if partner == nil || !isMergeRow(partner) {
		return fmt.Errorf("line %d: %s has no adjacent merge partner row", row.Line, row.Type)
	}

	var cancel, buy *models.LedgerRow
	switch {
	case row.Type == models.TypeMergeCancel && partner.Type == models.TypeMergeBuy:
		cancel, buy = row, partner
	case row.Type == models.TypeMergeBuy && partner.Type == models.TypeMergeCancel:
		cancel, buy = partner, row
	default:
		return fmt.Errorf("lines %d and %d: a merge needs one MERGE_CANCEL and one MERGE_BUY, got %s and %s",
			row.Line, partner.Line, row.Type, partner.Type)
	}

	holdingID, ok := rc.lookupHolding(cancel.Market, cancel.Symbol)
	if !ok {
		rc.summary.MergesSkipped++
		rc.logger.Info().
			Int("line", cancel.Line).
			Str("symbol", cancel.Symbol).
			Str("market", cancel.Market).
			Msg("No holding to merge, already merged on a previous run")
		return nil
	}

	payload := &models.HoldingMergePayload{
		HoldingID: holdingID,
		MergeDate: cancel.TransactionDate.Format(models.DateFormat),
		Quantity:  buy.Quantity.String(),
		Symbol:    buy.Symbol,
		Market:    buy.Market,
		Comments:  buy.Comments,
	}
	if !buy.Amount.IsZero() {
		payload.CostBase = buy.Amount.String()
	}

	resp, err := s.client.TryCreateHoldingMerge(ctx, payload)
	if err != nil {
		return err
	}

	if !resp.OK() && resp.UnknownInstrument() && buy.IsCustom() {
		created, err := s.ensureRowInstrument(ctx, rc, buy)
		if err != nil {
			return err
		}
		if created {
			resp, err = s.client.TryCreateHoldingMerge(ctx, payload)
			if err != nil {
				return err
			}
		}
	}

	if !resp.OK() {
		rc.rowFailure(row, payload, resp)
		rc.summary.MergesFailed++
		return nil
	}

	rc.summary.MergesCreated++
	var merge struct {
		ID        int64 `json:"id"`
		HoldingID int64 `json:"holding_id"`
	}
	if err := resp.DecodeEntity("holding_merge", &merge); err == nil && merge.HoldingID != 0 {
		rc.recordHolding(buy.Market, buy.Symbol, merge.HoldingID)
	}
	rc.logger.Info().
		Int("line", row.Line).
		Str("from", cancel.Symbol).
		Str("to", buy.Symbol).
		Msg("Success")
	return nil
}
