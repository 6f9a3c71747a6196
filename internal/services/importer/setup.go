package importer

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/jamescrowley/sharesight-importer/internal/interfaces"
	"github.com/jamescrowley/sharesight-importer/internal/ledger"
	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// setup resolves the target portfolio and makes sure everything the rows
// will reference exists remotely: cash accounts, custom instruments and
// their prices. It finishes by preloading the holding and payout indexes.
// Every call here is strict; a failure aborts before any row is imported.
func (s *Service) setup(ctx context.Context, rc *runContext, options interfaces.ImportOptions, scan *ledger.ScanResult) error {
	if err := s.resolvePortfolio(ctx, rc, options); err != nil {
		return err
	}
	if err := s.ensureCashAccounts(ctx, rc, scan.CashAccounts); err != nil {
		return err
	}
	if err := s.ensureInstruments(ctx, rc, scan.Instruments); err != nil {
		return err
	}
	if options.PricesPath != "" {
		if err := s.syncPrices(ctx, rc, options.PricesPath); err != nil {
			return err
		}
	}
	return s.preloadIndexes(ctx, rc)
}

// findPortfolio looks a portfolio up by exact name, nil when absent.
func (s *Service) findPortfolio(ctx context.Context, name string) (*models.Portfolio, error) {
	portfolios, err := s.client.ListPortfolios(ctx)
	if err != nil {
		return nil, err
	}
	for _, portfolio := range portfolios {
		if portfolio.Name == name {
			return portfolio, nil
		}
	}
	return nil, nil
}

func (s *Service) resolvePortfolio(ctx context.Context, rc *runContext, options interfaces.ImportOptions) error {
	portfolio, err := s.findPortfolio(ctx, options.Portfolio)
	if err != nil {
		return err
	}

	if portfolio != nil && options.DeleteExisting {
		rc.logger.Info().Int64("portfolio", portfolio.ID).Msg("Removing existing portfolio")
		if err := s.client.DeletePortfolio(ctx, portfolio.ID); err != nil {
			return err
		}
		portfolio = nil
	}

	if portfolio == nil {
		rc.logger.Info().Str("name", options.Portfolio).Str("country", options.Country).Msg("Creating portfolio")
		created, err := s.client.CreatePortfolio(ctx, &models.PortfolioPayload{
			Name:                  options.Portfolio,
			CountryCode:           options.Country,
			DisableAutomaticTxns:  true,
			BrokerEmailAPIEnabled: false,
		})
		if err != nil {
			return err
		}
		rc.logger.Info().Int64("portfolio", created.ID).Msg("Created portfolio")
		portfolio = created
	} else if options.Reset {
		if err := s.resetPortfolio(ctx, rc, portfolio); err != nil {
			return err
		}
	}

	// the remote record is the authority on country; it drives the cash
	// posting rules, so a mismatch with the flag is worth flagging
	rc.portfolio = portfolio
	rc.country = portfolio.CountryCode
	if rc.country == "" {
		rc.country = options.Country
	}
	if options.Country != "" && rc.country != options.Country {
		rc.logger.Warn().
			Str("portfolio_country", rc.country).
			Str("requested", options.Country).
			Msg("Portfolio country differs from the requested country")
		rc.summary.Warnings++
	}
	return nil
}

// resetPortfolio wipes the portfolio's contents in place: every holding
// (which takes its trades and payouts with it) and every cash transaction.
// The portfolio and its cash accounts survive, keeping their ids.
func (s *Service) resetPortfolio(ctx context.Context, rc *runContext, portfolio *models.Portfolio) error {
	rc.logger.Info().Int64("portfolio", portfolio.ID).Msg("Resetting portfolio contents")

	holdings, err := s.client.ListHoldings(ctx, portfolio.ID)
	if err != nil {
		return err
	}
	for _, holding := range holdings {
		rc.logger.Debug().Int64("holding", holding.ID).Str("symbol", holding.Instrument.Code).Msg("Deleting holding")
		if err := s.client.DeleteHolding(ctx, holding.ID); err != nil {
			return err
		}
	}

	accounts, err := s.client.ListCashAccounts(ctx, portfolio.ID)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		transactions, err := s.client.ListCashTransactions(ctx, account.ID)
		if err != nil {
			return err
		}
		for _, transaction := range transactions {
			if err := s.client.DeleteCashTransaction(ctx, transaction.ID); err != nil {
				return err
			}
		}
		rc.logger.Debug().
			Int64("cash_account", account.ID).
			Int("transactions", len(transactions)).
			Msg("Cleared cash account")
	}
	return nil
}

// ensureCashAccounts maps every scanned (currency, name) need to a remote
// cash account, creating the missing ones. Existing accounts match by
// exact name first; the portfolio's trade and payout sync accounts stand
// in for the base-currency capital and income accounts.
func (s *Service) ensureCashAccounts(ctx context.Context, rc *runContext, needs []ledger.CashAccountNeed) error {
	existing, err := s.client.ListCashAccounts(ctx, rc.portfolio.ID)
	if err != nil {
		return err
	}
	byName := make(map[string]*models.CashAccount, len(existing))
	for _, account := range existing {
		byName[account.Name] = account
	}

	for _, need := range needs {
		currency := rc.resolveCurrency(need.Currency)
		name := cashAccountName(rc.portfolio.Name, need.Name, currency, rc.portfolio.CurrencyCode)

		if account, ok := byName[name]; ok {
			rc.registerCashAccount(need.Currency, need.Name, account.ID)
			continue
		}
		if currency == rc.portfolio.CurrencyCode {
			if need.Name == models.DefaultCashAccount && rc.portfolio.TradeSyncCashAccount != 0 {
				rc.registerCashAccount(need.Currency, need.Name, rc.portfolio.TradeSyncCashAccount)
				continue
			}
			if need.Name == "INCOME" && rc.portfolio.PayoutSyncCashAccount != 0 {
				rc.registerCashAccount(need.Currency, need.Name, rc.portfolio.PayoutSyncCashAccount)
				continue
			}
		}

		rc.logger.Info().Str("name", name).Str("currency", currency).Msg("Creating cash account")
		account, err := s.client.CreateCashAccount(ctx, rc.portfolio.ID, &models.CashAccountPayload{
			Name:     name,
			Currency: currency,
		})
		if err != nil {
			return err
		}
		rc.logger.Info().Int64("cash_account", account.ID).Msg("Created cash account")
		rc.registerCashAccount(need.Currency, need.Name, account.ID)
	}
	return nil
}

// cashAccountName renders the display name for a logical account, suffixed
// with the currency when it differs from the portfolio base.
func cashAccountName(portfolioName, logicalName, currency, baseCurrency string) string {
	name := fmt.Sprintf("%s %s Account", portfolioName, titleCase(logicalName))
	if currency != "" && currency != baseCurrency {
		name = fmt.Sprintf("%s (%s)", name, currency)
	}
	return name
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	runes := []rune(lower)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ensureInstruments mirrors the file's custom instrument definitions
// remotely. Country, currency and type cannot be changed in place, so a
// shape change deletes and recreates; a name-only change updates in place.
func (s *Service) ensureInstruments(ctx context.Context, rc *runContext, definitions []models.InstrumentDefinition) error {
	if len(definitions) == 0 {
		return nil
	}

	existing, err := s.client.ListCustomInvestments(ctx, rc.portfolio.ID)
	if err != nil {
		return err
	}
	byKey := make(map[string]*models.CustomInvestment, len(existing))
	for _, investment := range existing {
		byKey[rc.instrumentKey(investment.Code)] = investment
		rc.recordInstrument(investment.Code, investment.ID)
	}

	for _, def := range definitions {
		current, ok := byKey[rc.instrumentKey(def.Symbol)]
		if ok {
			remote := current.Definition()
			switch {
			case remote.Equal(def):
				// nothing to do
			case remote.SameShape(def):
				rc.logger.Info().Str("symbol", def.Symbol).Msg("Renaming custom instrument")
				if _, err := s.client.UpdateCustomInvestment(ctx, current.ID, instrumentPayload(rc, def)); err != nil {
					return err
				}
			default:
				rc.logger.Info().
					Str("symbol", def.Symbol).
					Str("currency", def.Currency).
					Msg("Recreating custom instrument, its attributes cannot change in place")
				if err := s.client.DeleteCustomInvestment(ctx, current.ID); err != nil {
					return err
				}
				if err := s.createInstrument(ctx, rc, def); err != nil {
					return err
				}
			}
			continue
		}
		if err := s.createInstrument(ctx, rc, def); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) createInstrument(ctx context.Context, rc *runContext, def models.InstrumentDefinition) error {
	rc.logger.Info().Str("symbol", def.Symbol).Msg("Creating custom instrument")
	created, err := s.client.CreateCustomInvestment(ctx, instrumentPayload(rc, def))
	if err != nil {
		return err
	}
	if def.Currency != "" && created.CurrencyCode != "" && created.CurrencyCode != def.Currency {
		rc.logger.Warn().
			Str("symbol", def.Symbol).
			Str("requested", def.Currency).
			Str("effective", created.CurrencyCode).
			Msg("Custom instrument came back in a different currency")
		rc.summary.Warnings++
	}
	rc.recordInstrument(def.Symbol, created.ID)
	rc.summary.Instruments++
	return nil
}

func instrumentPayload(rc *runContext, def models.InstrumentDefinition) *models.CustomInvestmentPayload {
	name := def.Name
	if name == "" {
		name = def.Symbol
	}
	return &models.CustomInvestmentPayload{
		PortfolioID:    rc.portfolio.ID,
		Code:           def.Symbol,
		Name:           name,
		CountryCode:    def.CountryCode,
		CurrencyCode:   def.Currency,
		InvestmentType: def.Type,
	}
}

// loadInstruments indexes the portfolio's existing custom instruments.
func (s *Service) loadInstruments(ctx context.Context, rc *runContext) error {
	investments, err := s.client.ListCustomInvestments(ctx, rc.portfolio.ID)
	if err != nil {
		return err
	}
	for _, investment := range investments {
		rc.recordInstrument(investment.Code, investment.ID)
	}
	return nil
}

// preloadIndexes pulls the remote holdings and payouts the run will
// de-duplicate against.
func (s *Service) preloadIndexes(ctx context.Context, rc *runContext) error {
	holdings, err := s.client.ListHoldings(ctx, rc.portfolio.ID)
	if err != nil {
		return err
	}
	for _, holding := range holdings {
		rc.recordHolding(holding.Instrument.MarketCode, holding.Instrument.Code, holding.ID)
	}

	payouts, err := s.client.ListPayouts(ctx, rc.portfolio.ID)
	if err != nil {
		return err
	}
	for _, payout := range payouts {
		rc.payouts[rc.payoutKey(payout.HoldingID, payout.PaidOn)] = true
	}

	rc.logger.Debug().
		Int("holdings", len(holdings)).
		Int("payouts", len(payouts)).
		Msg("Preloaded remote indexes")
	return nil
}
