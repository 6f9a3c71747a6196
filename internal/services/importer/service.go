// Package importer implements the ledger reconciliation engine
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jamescrowley/sharesight-importer/internal/common"
	"github.com/jamescrowley/sharesight-importer/internal/interfaces"
	"github.com/jamescrowley/sharesight-importer/internal/ledger"
	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// Compile-time interface check
var _ interfaces.ImporterService = (*Service)(nil)

// Service implements ImporterService. It runs single-threaded: rows are
// processed strictly in file order because later rows depend on holdings
// created by earlier ones.
type Service struct {
	client interfaces.SharesightClient
	logger *common.Logger
}

// NewService creates a new importer service
func NewService(client interfaces.SharesightClient, logger *common.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// Run imports the ledger into the named portfolio, creating each record
// exactly once. Row-level remote rejections are logged and counted; only
// structural problems abort the run.
func (s *Service) Run(ctx context.Context, options interfaces.ImportOptions) (*models.RunSummary, error) {
	rc := newRunContext(s.logger.WithRun(uuid.New().String()), options.Strict)

	filter, err := buildFilter(options)
	if err != nil {
		return nil, err
	}
	if options.Reset && options.DeleteExisting {
		return nil, fmt.Errorf("reset and delete-existing are mutually exclusive")
	}
	if (options.Reset || options.DeleteExisting) && !filter.Empty() {
		return nil, fmt.Errorf("reset options cannot be combined with row range filters")
	}

	rows, err := ledger.ReadFile(options.LedgerPath)
	if err != nil {
		return nil, err
	}
	rc.logger.Info().
		Str("file", options.LedgerPath).
		Int("rows", len(rows)).
		Str("portfolio", options.Portfolio).
		Msg("Starting import")

	if options.SeedFrom != "" {
		seedRows, err := s.buildSeedRows(ctx, rc, options.SeedFrom, options.SeedDate)
		if err != nil {
			return nil, err
		}
		rows = append(seedRows, rows...)
	}

	return s.reconcile(ctx, rc, options, rows, filter)
}

// Seed generates opening-balance rows from another portfolio's valuation
// and imports just those.
func (s *Service) Seed(ctx context.Context, options interfaces.SeedOptions) (*models.RunSummary, error) {
	rc := newRunContext(s.logger.WithRun(uuid.New().String()), false)

	rows, err := s.buildSeedRows(ctx, rc, options.SourcePortfolio, options.Date)
	if err != nil {
		return nil, err
	}
	rc.logger.Info().
		Str("source", options.SourcePortfolio).
		Int("rows", len(rows)).
		Str("portfolio", options.Portfolio).
		Msg("Starting seed import")

	importOptions := interfaces.ImportOptions{
		Portfolio: options.Portfolio,
		Country:   options.Country,
	}
	return s.reconcile(ctx, rc, importOptions, rows, ledger.Filter{})
}

// SyncPrices pushes a prices file to custom instruments without touching
// trades or cash. The portfolio must already exist.
func (s *Service) SyncPrices(ctx context.Context, options interfaces.ImportOptions) (*models.RunSummary, error) {
	rc := newRunContext(s.logger.WithRun(uuid.New().String()), options.Strict)

	portfolio, err := s.findPortfolio(ctx, options.Portfolio)
	if err != nil {
		return nil, err
	}
	if portfolio == nil {
		return nil, fmt.Errorf("portfolio %q not found", options.Portfolio)
	}
	rc.portfolio = portfolio
	rc.country = portfolio.CountryCode

	if err := s.loadInstruments(ctx, rc); err != nil {
		return nil, err
	}
	if err := s.syncPrices(ctx, rc, options.PricesPath); err != nil {
		return nil, err
	}

	rc.logger.Info().
		Int("created", rc.summary.PricesCreated).
		Int("updated", rc.summary.PricesUpdated).
		Msg("Price sync complete")
	return &rc.summary, nil
}

// reconcile is the shared pipeline: scan, setup, row iteration, teardown.
// The scan covers every row, seed rows included; range filters only apply
// to the iteration.
func (s *Service) reconcile(ctx context.Context, rc *runContext, options interfaces.ImportOptions, rows []*models.LedgerRow, filter ledger.Filter) (*models.RunSummary, error) {
	scan, err := ledger.Scan(rows)
	if err != nil {
		return nil, err
	}
	for _, warning := range scan.Warnings {
		rc.logger.Warn().Int("line", warning.Line).Msg(warning.Message)
		rc.summary.Warnings++
	}

	if err := s.setup(ctx, rc, options, scan); err != nil {
		return nil, err
	}
	if err := s.iterate(ctx, rc, rows, filter); err != nil {
		return nil, err
	}
	s.teardown(ctx, rc)

	return &rc.summary, nil
}

// iterate processes rows in file order with one row of lookahead for merge
// pairing.
func (s *Service) iterate(ctx context.Context, rc *runContext, rows []*models.LedgerRow, filter ledger.Filter) error {
	cursor := ledger.NewCursor(rows)
	for {
		row := cursor.Next()
		if row == nil {
			return nil
		}
		if row.Line > 0 && filter.Exhausted(row) {
			rc.logger.Debug().Int("line", row.Line).Msg("Past the last requested line, stopping")
			return nil
		}

		class, err := models.Classify(row.Type)
		if err != nil {
			return fmt.Errorf("line %d: %w", row.Line, err)
		}

		if row.Line > 0 && !filter.Includes(row) {
			// a filtered-out merge row takes its partner with it so the
			// pair is skipped as a unit
			if class == models.OpMerge {
				if partner := cursor.Peek(); partner != nil && isMergeRow(partner) {
					cursor.Next()
				}
			}
			rc.logger.Debug().Int("line", row.Line).Msg("Row outside filter range, skipping")
			continue
		}

		rc.summary.RowsRead++
		switch class {
		case models.OpTrade:
			err = s.processTrade(ctx, rc, row)
		case models.OpPayout:
			err = s.processPayout(ctx, rc, row)
		case models.OpCash:
			err = s.processCash(ctx, rc, row)
		case models.OpMerge:
			err = s.processMerge(ctx, rc, row, cursor)
		}
		if err != nil {
			return err
		}
	}
}

// teardown resyncs every touched cash account exactly once and reports the
// run summary. Resync failures do not undo imported records, so they are
// reported rather than aborting.
func (s *Service) teardown(ctx context.Context, rc *runContext) {
	for _, accountID := range rc.touchedOrder {
		rc.logger.Info().Int64("cash_account", accountID).Msg("Syncing cash account")
		if err := s.client.ResyncCashAccount(ctx, accountID); err != nil {
			rc.logger.Error().Err(err).Int64("cash_account", accountID).Msg("Cash account resync failed")
		}
	}

	summary := rc.summary
	rc.logger.Info().
		Int("rows", summary.RowsRead).
		Int("created", summary.Created()).
		Int("skipped", summary.Skipped()).
		Int("failed", summary.Failed()).
		Int("warnings", summary.Warnings).
		Msg("Import complete")
}

// buildFilter validates the row range options.
func buildFilter(options interfaces.ImportOptions) (ledger.Filter, error) {
	filter := ledger.Filter{
		MinLine: options.MinLine,
		MaxLine: options.MaxLine,
	}
	if options.MinDate != "" {
		minDate, err := time.Parse(models.DateFormat, options.MinDate)
		if err != nil {
			return ledger.Filter{}, fmt.Errorf("invalid min date %q, want YYYY-MM-DD", options.MinDate)
		}
		filter.MinDate = minDate
	}
	if options.MinLine > 0 && options.MaxLine > 0 && options.MaxLine < options.MinLine {
		return ledger.Filter{}, fmt.Errorf("max line %d is before min line %d", options.MaxLine, options.MinLine)
	}
	return filter, nil
}

func isMergeRow(row *models.LedgerRow) bool {
	class, err := models.Classify(row.Type)
	return err == nil && class == models.OpMerge
}
