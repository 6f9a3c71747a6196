package importer

import (
	"strconv"

	"github.com/jamescrowley/sharesight-importer/internal/common"
	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// runContext carries the per-run state the engine reconciles against. It is
// rebuilt from the remote side on every run; nothing persists locally.
type runContext struct {
	logger *common.Logger
	strict bool

	portfolio *models.Portfolio
	country   string

	cashAccounts map[string]int64 // CashAccountKey -> cash account id
	holdings     map[string]int64 // HoldingKey -> holding id
	payouts      map[string]bool  // PayoutKey -> already recorded remotely
	instruments  map[string]int64 // CustomInstrumentKey -> custom investment id

	touched      map[int64]bool // cash accounts needing a teardown resync
	touchedOrder []int64

	summary models.RunSummary
}

func newRunContext(logger *common.Logger, strict bool) *runContext {
	return &runContext{
		logger:       logger,
		strict:       strict,
		cashAccounts: make(map[string]int64),
		holdings:     make(map[string]int64),
		payouts:      make(map[string]bool),
		instruments:  make(map[string]int64),
		touched:      make(map[int64]bool),
	}
}

func (rc *runContext) portfolioID() string {
	return strconv.FormatInt(rc.portfolio.ID, 10)
}

func (rc *runContext) holdingKey(market, symbol string) string {
	return models.HoldingKey(rc.portfolioID(), market, symbol)
}

func (rc *runContext) recordHolding(market, symbol string, id int64) {
	rc.holdings[rc.holdingKey(market, symbol)] = id
}

func (rc *runContext) lookupHolding(market, symbol string) (int64, bool) {
	id, ok := rc.holdings[rc.holdingKey(market, symbol)]
	return id, ok
}

func (rc *runContext) payoutKey(holdingID int64, paidOn string) string {
	return models.PayoutKey(rc.portfolioID(), strconv.FormatInt(holdingID, 10), paidOn)
}

func (rc *runContext) instrumentKey(symbol string) string {
	return models.CustomInstrumentKey(rc.portfolioID(), symbol)
}

func (rc *runContext) recordInstrument(symbol string, id int64) {
	rc.instruments[rc.instrumentKey(symbol)] = id
}

func (rc *runContext) lookupInstrument(symbol string) (int64, bool) {
	id, ok := rc.instruments[rc.instrumentKey(symbol)]
	return id, ok
}

// registerCashAccount indexes an account under its logical key. An empty
// currency resolves to the portfolio base currency first.
func (rc *runContext) registerCashAccount(currency, name string, id int64) {
	rc.cashAccounts[models.CashAccountKey(rc.resolveCurrency(currency), name)] = id
}

// cashAccountFor resolves the account a row posts into.
func (rc *runContext) cashAccountFor(currency, name string) (int64, bool) {
	id, ok := rc.cashAccounts[models.CashAccountKey(rc.resolveCurrency(currency), name)]
	return id, ok
}

func (rc *runContext) resolveCurrency(currency string) string {
	if currency == "" {
		return rc.portfolio.CurrencyCode
	}
	return currency
}

// touch marks a cash account for the teardown resync, keeping first-touch
// order and touching each account at most once.
func (rc *runContext) touch(accountID int64) {
	if rc.touched[accountID] {
		return
	}
	rc.touched[accountID] = true
	rc.touchedOrder = append(rc.touchedOrder, accountID)
}

// rowInfo logs a row outcome with the standard identifying fields.
func (rc *runContext) rowInfo(row *models.LedgerRow, message string) {
	rc.logger.Info().
		Int("line", row.Line).
		Str("type", string(row.Type)).
		Str("id", row.UniqueIdentifier).
		Msg(message)
}

// rowFailure logs a rejected row with the request and response needed to
// diagnose it.
func (rc *runContext) rowFailure(row *models.LedgerRow, payload any, resp *models.Response) {
	rc.logger.Error().
		Int("line", row.Line).
		Str("type", string(row.Type)).
		Str("id", row.UniqueIdentifier).
		Int("status", resp.StatusCode).
		Str("url", resp.URL).
		Str("response", string(resp.Body)).
		Interface("request", payload).
		Msg("Row rejected")
}

// rowMissingAccount reports a row whose cash account never materialised.
// Scanned rows always have one, so this only fires for derived rows.
func (rc *runContext) rowMissingAccount(row *models.LedgerRow) {
	rc.logger.Error().
		Int("line", row.Line).
		Str("type", string(row.Type)).
		Str("currency", row.AmountCurrency).
		Str("account", row.CashAccount).
		Msg("No cash account for row, cash movement not posted")
	rc.summary.CashFailed++
}
