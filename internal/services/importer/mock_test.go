package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/jamescrowley/sharesight-importer/internal/common"
	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// fakeClient is an in-memory Sharesight for engine tests. Create endpoints
// enforce the real duplicate rules (unique_identifier for trades,
// foreign_identifier for cash) so idempotency can be tested by running the
// engine twice against the same fake. The hook fields let a test script
// specific rejections; a hook returning nil falls through to the default
// behaviour.
type fakeClient struct {
	portfolios   []*models.Portfolio
	holdings     map[int64][]*models.Holding
	accounts     map[int64][]*models.CashAccount
	transactions map[int64][]*models.CashTransaction
	payouts      map[int64][]*models.Payout
	investments  map[int64][]*models.CustomInvestment
	prices       map[int64][]*models.Price
	valuations   map[int64]*models.Valuation

	tradeHook  func(*models.TradePayload) *models.Response
	payoutHook func(*models.PayoutPayload) *models.Response
	cashHook   func(int64, *models.CashTransactionPayload) *models.Response
	mergeHook  func(*models.HoldingMergePayload) *models.Response

	tradeAttempts  []*models.TradePayload
	payoutAttempts []*models.PayoutPayload
	cashAttempts   []cashAttempt
	mergeAttempts  []*models.HoldingMergePayload

	resynced            []int64
	deletedPortfolios   []int64
	deletedHoldings     []int64
	deletedTransactions []int64
	deletedInvestments  []int64
	priceCreates        []*models.PricePayload
	priceUpdates        []*models.PricePayload

	authenticated bool
	nextID        int64
	seenTrades    map[string]bool
	seenCash      map[string]bool
}

type cashAttempt struct {
	accountID int64
	payload   *models.CashTransactionPayload
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		holdings:     make(map[int64][]*models.Holding),
		accounts:     make(map[int64][]*models.CashAccount),
		transactions: make(map[int64][]*models.CashTransaction),
		payouts:      make(map[int64][]*models.Payout),
		investments:  make(map[int64][]*models.CustomInvestment),
		prices:       make(map[int64][]*models.Price),
		valuations:   make(map[int64]*models.Valuation),
		nextID:       1000,
		seenTrades:   make(map[string]bool),
		seenCash:     make(map[string]bool),
	}
}

func (f *fakeClient) id() int64 {
	f.nextID++
	return f.nextID
}

// Seeding helpers.

func (f *fakeClient) addPortfolio(name, country, currency string) *models.Portfolio {
	p := &models.Portfolio{ID: f.id(), Name: name, CountryCode: country, CurrencyCode: currency}
	f.portfolios = append(f.portfolios, p)
	return p
}

func (f *fakeClient) addCashAccount(portfolioID int64, name, currency string) *models.CashAccount {
	a := &models.CashAccount{ID: f.id(), PortfolioID: portfolioID, Name: name, Currency: currency}
	f.accounts[portfolioID] = append(f.accounts[portfolioID], a)
	return a
}

func (f *fakeClient) addHolding(portfolioID int64, market, symbol string) *models.Holding {
	h := &models.Holding{ID: f.id(), Instrument: models.Instrument{Code: symbol, MarketCode: market}}
	f.holdings[portfolioID] = append(f.holdings[portfolioID], h)
	return h
}

func (f *fakeClient) addPayout(portfolioID, holdingID int64, paidOn string) *models.Payout {
	p := &models.Payout{ID: f.id(), HoldingID: holdingID, PaidOn: paidOn}
	f.payouts[portfolioID] = append(f.payouts[portfolioID], p)
	return p
}

// unitContext builds a resolved run context for handler-level tests,
// skipping the setup phase.
func unitContext(f *fakeClient, country string) (*Service, *runContext) {
	s := NewService(f, common.NewSilentLogger())
	rc := newRunContext(common.NewSilentLogger(), false)
	rc.portfolio = f.addPortfolio("Unit", country, currencyForCountry(country))
	rc.country = country
	return s, rc
}

func respJSON(status int, body string) *models.Response {
	return &models.Response{StatusCode: status, Body: []byte(body), Method: "POST", URL: "https://fake.sharesight.test/api"}
}

func duplicateTradeResponse() *models.Response {
	return respJSON(422, `{"errors":{"unique_identifier":["A trade with this unique_identifier already exists in the portfolio."]}}`)
}

func duplicateCashResponse() *models.Response {
	return respJSON(422, `{"errors":{"foreign_identifier":["has already been taken"]}}`)
}

func unknownInstrumentResponse() *models.Response {
	return respJSON(422, `{"errors":{"symbol":["is not recognised"]}}`)
}

// SharesightClient implementation.

func (f *fakeClient) Authenticate(ctx context.Context) error {
	f.authenticated = true
	return nil
}

func (f *fakeClient) ListPortfolios(ctx context.Context) ([]*models.Portfolio, error) {
	return f.portfolios, nil
}

func (f *fakeClient) CreatePortfolio(ctx context.Context, payload *models.PortfolioPayload) (*models.Portfolio, error) {
	p := &models.Portfolio{
		ID:           f.id(),
		Name:         payload.Name,
		CountryCode:  payload.CountryCode,
		CurrencyCode: currencyForCountry(payload.CountryCode),
	}
	f.portfolios = append(f.portfolios, p)
	return p, nil
}

func currencyForCountry(country string) string {
	switch country {
	case "AU":
		return "AUD"
	case "US":
		return "USD"
	default:
		return "GBP"
	}
}

func (f *fakeClient) UpdatePortfolio(ctx context.Context, portfolioID int64, payload *models.PortfolioPayload) (*models.Portfolio, error) {
	for _, p := range f.portfolios {
		if p.ID == portfolioID {
			p.Name = payload.Name
			return p, nil
		}
	}
	return nil, fmt.Errorf("portfolio %d not found", portfolioID)
}

func (f *fakeClient) DeletePortfolio(ctx context.Context, portfolioID int64) error {
	f.deletedPortfolios = append(f.deletedPortfolios, portfolioID)
	kept := f.portfolios[:0]
	for _, p := range f.portfolios {
		if p.ID != portfolioID {
			kept = append(kept, p)
		}
	}
	f.portfolios = kept
	delete(f.holdings, portfolioID)
	delete(f.accounts, portfolioID)
	delete(f.payouts, portfolioID)
	delete(f.investments, portfolioID)
	return nil
}

func (f *fakeClient) ListHoldings(ctx context.Context, portfolioID int64) ([]*models.Holding, error) {
	return f.holdings[portfolioID], nil
}

func (f *fakeClient) DeleteHolding(ctx context.Context, holdingID int64) error {
	f.deletedHoldings = append(f.deletedHoldings, holdingID)
	for pid, holdings := range f.holdings {
		kept := holdings[:0]
		for _, h := range holdings {
			if h.ID != holdingID {
				kept = append(kept, h)
			}
		}
		f.holdings[pid] = kept
	}
	return nil
}

func (f *fakeClient) ListCashAccounts(ctx context.Context, portfolioID int64) ([]*models.CashAccount, error) {
	return f.accounts[portfolioID], nil
}

func (f *fakeClient) CreateCashAccount(ctx context.Context, portfolioID int64, payload *models.CashAccountPayload) (*models.CashAccount, error) {
	a := &models.CashAccount{ID: f.id(), PortfolioID: portfolioID, Name: payload.Name, Currency: payload.Currency}
	f.accounts[portfolioID] = append(f.accounts[portfolioID], a)
	return a, nil
}

func (f *fakeClient) ListCashTransactions(ctx context.Context, cashAccountID int64) ([]*models.CashTransaction, error) {
	return f.transactions[cashAccountID], nil
}

func (f *fakeClient) DeleteCashTransaction(ctx context.Context, transactionID int64) error {
	f.deletedTransactions = append(f.deletedTransactions, transactionID)
	for aid, transactions := range f.transactions {
		kept := transactions[:0]
		for _, tx := range transactions {
			if tx.ID != transactionID {
				kept = append(kept, tx)
			} else {
				delete(f.seenCash, cashKey(aid, tx.ForeignIdentifier))
			}
		}
		f.transactions[aid] = kept
	}
	return nil
}

func (f *fakeClient) ResyncCashAccount(ctx context.Context, cashAccountID int64) error {
	f.resynced = append(f.resynced, cashAccountID)
	return nil
}

func (f *fakeClient) ListPayouts(ctx context.Context, portfolioID int64) ([]*models.Payout, error) {
	return f.payouts[portfolioID], nil
}

func (f *fakeClient) GetValuation(ctx context.Context, portfolioID int64, date string) (*models.Valuation, error) {
	if v, ok := f.valuations[portfolioID]; ok {
		return v, nil
	}
	return &models.Valuation{BalanceDate: date}, nil
}

func (f *fakeClient) ListCustomInvestments(ctx context.Context, portfolioID int64) ([]*models.CustomInvestment, error) {
	if portfolioID != 0 {
		return f.investments[portfolioID], nil
	}
	var all []*models.CustomInvestment
	for _, investments := range f.investments {
		all = append(all, investments...)
	}
	return all, nil
}

func (f *fakeClient) CreateCustomInvestment(ctx context.Context, payload *models.CustomInvestmentPayload) (*models.CustomInvestment, error) {
	inv := &models.CustomInvestment{
		ID:             f.id(),
		PortfolioID:    payload.PortfolioID,
		Code:           payload.Code,
		Name:           payload.Name,
		CountryCode:    payload.CountryCode,
		CurrencyCode:   payload.CurrencyCode,
		InvestmentType: payload.InvestmentType,
	}
	f.investments[payload.PortfolioID] = append(f.investments[payload.PortfolioID], inv)
	return inv, nil
}

func (f *fakeClient) UpdateCustomInvestment(ctx context.Context, investmentID int64, payload *models.CustomInvestmentPayload) (*models.CustomInvestment, error) {
	for _, investments := range f.investments {
		for _, inv := range investments {
			if inv.ID == investmentID {
				inv.Name = payload.Name
				return inv, nil
			}
		}
	}
	return nil, fmt.Errorf("custom investment %d not found", investmentID)
}

func (f *fakeClient) DeleteCustomInvestment(ctx context.Context, investmentID int64) error {
	f.deletedInvestments = append(f.deletedInvestments, investmentID)
	for pid, investments := range f.investments {
		kept := investments[:0]
		for _, inv := range investments {
			if inv.ID != investmentID {
				kept = append(kept, inv)
			}
		}
		f.investments[pid] = kept
	}
	return nil
}

func (f *fakeClient) ListPrices(ctx context.Context, investmentID int64) ([]*models.Price, error) {
	return f.prices[investmentID], nil
}

func (f *fakeClient) CreatePrice(ctx context.Context, investmentID int64, payload *models.PricePayload) (*models.Price, error) {
	f.priceCreates = append(f.priceCreates, payload)
	p := &models.Price{ID: f.id(), LastTradedOn: payload.LastTradedOn, LastTradedPrice: payload.LastTradedPrice}
	f.prices[investmentID] = append(f.prices[investmentID], p)
	return p, nil
}

func (f *fakeClient) UpdatePrice(ctx context.Context, priceID int64, payload *models.PricePayload) (*models.Price, error) {
	f.priceUpdates = append(f.priceUpdates, payload)
	for _, prices := range f.prices {
		for _, p := range prices {
			if p.ID == priceID {
				p.LastTradedOn = payload.LastTradedOn
				p.LastTradedPrice = payload.LastTradedPrice
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("price %d not found", priceID)
}

func tradeKey(portfolioID int64, uniqueIdentifier string) string {
	return fmt.Sprintf("%d|%s", portfolioID, uniqueIdentifier)
}

func cashKey(accountID int64, foreignIdentifier string) string {
	return fmt.Sprintf("%d|%s", accountID, foreignIdentifier)
}

func (f *fakeClient) holdingFor(portfolioID int64, market, symbol string) *models.Holding {
	for _, h := range f.holdings[portfolioID] {
		if strings.EqualFold(h.Instrument.MarketCode, market) && strings.EqualFold(h.Instrument.Code, symbol) {
			return h
		}
	}
	return nil
}

func (f *fakeClient) TryCreateTrade(ctx context.Context, payload *models.TradePayload) (*models.Response, error) {
	// snapshot the payload as the real client would serialize it at call
	// time; the engine mutates it in place for the OPENING_BALANCE retry
	attempt := *payload
	f.tradeAttempts = append(f.tradeAttempts, &attempt)
	if f.tradeHook != nil {
		if resp := f.tradeHook(payload); resp != nil {
			return resp, nil
		}
	}
	key := tradeKey(payload.PortfolioID, payload.UniqueIdentifier)
	if f.seenTrades[key] {
		return duplicateTradeResponse(), nil
	}
	f.seenTrades[key] = true

	holding := f.holdingFor(payload.PortfolioID, payload.Market, payload.Symbol)
	if holding == nil {
		holding = f.addHolding(payload.PortfolioID, payload.Market, payload.Symbol)
	}
	body := fmt.Sprintf(`{"trade":{"id":%d,"holding_id":%d,"state":"confirmed"}}`, f.id(), holding.ID)
	return respJSON(200, body), nil
}

func (f *fakeClient) TryCreatePayout(ctx context.Context, payload *models.PayoutPayload) (*models.Response, error) {
	f.payoutAttempts = append(f.payoutAttempts, payload)
	if f.payoutHook != nil {
		if resp := f.payoutHook(payload); resp != nil {
			return resp, nil
		}
	}
	p := &models.Payout{ID: f.id(), HoldingID: payload.HoldingID, PaidOn: payload.PaidOn}
	f.payouts[payload.PortfolioID] = append(f.payouts[payload.PortfolioID], p)
	body := fmt.Sprintf(`{"payout":{"id":%d,"holding_id":%d,"paid_on":%q}}`, p.ID, p.HoldingID, p.PaidOn)
	return respJSON(200, body), nil
}

func (f *fakeClient) TryCreateCashTransaction(ctx context.Context, cashAccountID int64, payload *models.CashTransactionPayload) (*models.Response, error) {
	f.cashAttempts = append(f.cashAttempts, cashAttempt{accountID: cashAccountID, payload: payload})
	if f.cashHook != nil {
		if resp := f.cashHook(cashAccountID, payload); resp != nil {
			return resp, nil
		}
	}
	key := cashKey(cashAccountID, payload.ForeignIdentifier)
	if f.seenCash[key] {
		return duplicateCashResponse(), nil
	}
	f.seenCash[key] = true

	tx := &models.CashTransaction{
		ID:                f.id(),
		CashAccountID:     cashAccountID,
		DateTime:          payload.DateTime,
		Description:       payload.Description,
		TypeName:          payload.TypeName,
		ForeignIdentifier: payload.ForeignIdentifier,
	}
	f.transactions[cashAccountID] = append(f.transactions[cashAccountID], tx)
	body := fmt.Sprintf(`{"cash_account_transaction":{"id":%d}}`, tx.ID)
	return respJSON(200, body), nil
}

func (f *fakeClient) TryCreateHoldingMerge(ctx context.Context, payload *models.HoldingMergePayload) (*models.Response, error) {
	f.mergeAttempts = append(f.mergeAttempts, payload)
	if f.mergeHook != nil {
		if resp := f.mergeHook(payload); resp != nil {
			return resp, nil
		}
	}

	// find the portfolio owning the cancelled holding so the replacement
	// lands in the same one
	var portfolioID int64
	for pid, holdings := range f.holdings {
		for _, h := range holdings {
			if h.ID == payload.HoldingID {
				portfolioID = pid
			}
		}
	}
	if portfolioID == 0 {
		return respJSON(422, `{"errors":{"holding_id":["is not valid"]}}`), nil
	}

	// the cancelled holding disappears from listings once merged
	kept := f.holdings[portfolioID][:0]
	for _, h := range f.holdings[portfolioID] {
		if h.ID != payload.HoldingID {
			kept = append(kept, h)
		}
	}
	f.holdings[portfolioID] = kept

	holding := f.holdingFor(portfolioID, payload.Market, payload.Symbol)
	if holding == nil {
		holding = f.addHolding(portfolioID, payload.Market, payload.Symbol)
	}
	body := fmt.Sprintf(`{"holding_merge":{"id":%d,"holding_id":%d}}`, f.id(), holding.ID)
	return respJSON(200, body), nil
}
