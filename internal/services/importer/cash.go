package importer

import (
	"context"

	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// processCash books a standalone cash row: deposits, withdrawals, fees,
// interest and transfer legs.
func (s *Service) processCash(ctx context.Context, rc *runContext, row *models.LedgerRow) error {
	accountID, ok := rc.cashAccountFor(row.AmountCurrency, row.CashAccount)
	if !ok {
		rc.rowMissingAccount(row)
		return nil
	}
	return s.postCash(ctx, rc, row, accountID)
}

// postCash creates one cash transaction, treating a remote foreign
// identifier collision as already imported. Every account written to is
// marked for the teardown resync.
func (s *Service) postCash(ctx context.Context, rc *runContext, row *models.LedgerRow, accountID int64) error {
	payload := &models.CashTransactionPayload{
		DateTime:          row.TransactionDate.Format(models.DateFormat),
		Description:       row.Description,
		Amount:            row.Amount.String(),
		TypeName:          string(row.Type),
		ForeignIdentifier: row.UniqueIdentifier,
	}
	resp, err := s.client.TryCreateCashTransaction(ctx, accountID, payload)
	if err != nil {
		return err
	}
	switch {
	case resp.OK():
		rc.summary.CashCreated++
		rc.touch(accountID)
		rc.rowInfo(row, "Cash posted")
	case resp.DuplicateCash():
		rc.summary.CashSkipped++
		rc.touch(accountID)
		rc.rowInfo(row, "Cash skipped (duplicate)")
	default:
		rc.rowFailure(row, payload, resp)
		rc.summary.CashFailed++
	}
	return nil
}
