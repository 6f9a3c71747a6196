package models

import (
	"github.com/shopspring/decimal"
)

// Request payloads. Sharesight expects most numeric trade fields as strings
// and wraps every entity under its singular resource key; the client does
// the wrapping, these are the inner objects.

// TradePayload is the body of a trade create request.
type TradePayload struct {
	UniqueIdentifier   string `json:"unique_identifier"`
	TransactionType    string `json:"transaction_type"`
	TransactionDate    string `json:"transaction_date"`
	PortfolioID        int64  `json:"portfolio_id"`
	Symbol             string `json:"symbol"`
	Market             string `json:"market"`
	Quantity           string `json:"quantity"`
	Price              string `json:"price"`
	GoesExOn           string `json:"goes_ex_on,omitempty"`
	Brokerage          string `json:"brokerage,omitempty"`
	BrokerageCcy       string `json:"brokerage_currency_code,omitempty"`
	ExchangeRate       string `json:"exchange_rate"`
	CostBase           string `json:"cost_base,omitempty"`
	CapitalReturnValue string `json:"capital_return_value,omitempty"`
	PaidOn             string `json:"paid_on,omitempty"`
	Comments           string `json:"comments,omitempty"`
}

// PayoutPayload is the body of a payout create request.
type PayoutPayload struct {
	PortfolioID  int64  `json:"portfolio_id"`
	HoldingID    int64  `json:"holding_id"`
	PaidOn       string `json:"paid_on"`
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code,omitempty"`
	GoesExOn     string `json:"goes_ex_on,omitempty"`
	ExchangeRate string `json:"exchange_rate"`
}

// CashTransactionPayload is the body of a cash account transaction create
// request. The foreign identifier is the remote side's de-duplication handle.
type CashTransactionPayload struct {
	DateTime          string `json:"date_time"`
	Description       string `json:"description"`
	Amount            string `json:"amount"`
	TypeName          string `json:"type_name"`
	ForeignIdentifier string `json:"foreign_identifier"`
}

// PortfolioPayload is the body of a portfolio create request. Automatic
// transaction syncing is disabled so the importer stays the only writer.
type PortfolioPayload struct {
	Name                  string `json:"name"`
	CountryCode           string `json:"country_code"`
	DisableAutomaticTxns  bool   `json:"disable_automatic_transactions"`
	BrokerEmailAPIEnabled bool   `json:"broker_email_api_enabled"`
}

// CashAccountPayload is the body of a cash account create request.
type CashAccountPayload struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// CustomInvestmentPayload is the body of a custom investment create or
// update request.
type CustomInvestmentPayload struct {
	PortfolioID    int64  `json:"portfolio_id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	CountryCode    string `json:"country_code"`
	CurrencyCode   string `json:"currency_code"`
	InvestmentType string `json:"investment_type"`
}

// HoldingMergePayload is the body of a holding merge create request.
// HoldingID is the cancelled side; symbol, market and quantity describe
// the replacement holding.
type HoldingMergePayload struct {
	HoldingID int64  `json:"holding_id"`
	MergeDate string `json:"merge_date"`
	Quantity  string `json:"quantity"`
	Symbol    string `json:"symbol"`
	Market    string `json:"market"`
	CostBase  string `json:"cost_base,omitempty"`
	Comments  string `json:"comments,omitempty"`
}

// PricePayload is the body of a custom investment price create or update
// request.
type PricePayload struct {
	LastTradedOn    string          `json:"last_traded_on"`
	LastTradedPrice decimal.Decimal `json:"last_traded_price"`
}

// Response entities.

// Portfolio is a remote portfolio record.
type Portfolio struct {
	ID                    int64  `json:"id"`
	Name                  string `json:"name"`
	CountryCode           string `json:"country_code"`
	CurrencyCode          string `json:"currency_code"`
	TradeSyncCashAccount  int64  `json:"trade_sync_cash_account_id"`
	PayoutSyncCashAccount int64  `json:"payout_sync_cash_account_id"`
}

// CashAccount is a remote cash account record, scoped to one currency.
type CashAccount struct {
	ID          int64  `json:"id"`
	PortfolioID int64  `json:"portfolio_id"`
	Name        string `json:"name"`
	Currency    string `json:"currency"`
}

// CashTransaction is a remote cash account transaction record.
type CashTransaction struct {
	ID                int64           `json:"id"`
	CashAccountID     int64           `json:"cash_account_id"`
	DateTime          string          `json:"date_time"`
	Description       string          `json:"description"`
	Amount            decimal.Decimal `json:"amount"`
	TypeName          string          `json:"type_name"`
	ForeignIdentifier string          `json:"foreign_identifier"`
}

// Instrument identifies the instrument behind a holding.
type Instrument struct {
	Code       string `json:"code"`
	MarketCode string `json:"market_code"`
}

// Holding is a remote position in one instrument within one portfolio.
type Holding struct {
	ID         int64      `json:"id"`
	Instrument Instrument `json:"instrument"`
}

// Trade is a remote trade record. Only the fields the importer inspects
// are decoded.
type Trade struct {
	ID        int64  `json:"id"`
	HoldingID int64  `json:"holding_id"`
	State     string `json:"state"`
}

// Payout is a remote dividend/distribution record.
type Payout struct {
	ID        int64           `json:"id"`
	HoldingID int64           `json:"holding_id"`
	PaidOn    string          `json:"paid_on"`
	Amount    decimal.Decimal `json:"amount"`
}

// CustomInvestment is a remote user-defined instrument record.
type CustomInvestment struct {
	ID             int64  `json:"id"`
	PortfolioID    int64  `json:"portfolio_id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	CountryCode    string `json:"country_code"`
	CurrencyCode   string `json:"currency_code"`
	InvestmentType string `json:"investment_type"`
}

// Definition converts the remote record to the ledger-side definition shape
// for comparison against the file's instrument columns.
func (c CustomInvestment) Definition() InstrumentDefinition {
	return InstrumentDefinition{
		Symbol:      c.Code,
		Name:        c.Name,
		CountryCode: c.CountryCode,
		Currency:    c.CurrencyCode,
		Type:        c.InvestmentType,
	}
}

// Price is a remote custom investment price record.
type Price struct {
	ID              int64           `json:"id"`
	LastTradedOn    string          `json:"last_traded_on"`
	LastTradedPrice decimal.Decimal `json:"last_traded_price"`
}

// ValuationHolding is one holding line of a portfolio valuation.
type ValuationHolding struct {
	Symbol   string          `json:"symbol"`
	Market   string          `json:"market"`
	Quantity decimal.Decimal `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}

// ValuationCashAccount is one cash account line of a portfolio valuation.
type ValuationCashAccount struct {
	CashAccountID int64           `json:"cash_account_id"`
	Name          string          `json:"name"`
	Currency      string          `json:"currency"`
	Value         decimal.Decimal `json:"value"`
}

// Valuation is a point-in-time snapshot of a portfolio's positions and cash.
type Valuation struct {
	BalanceDate  string                 `json:"balance_date"`
	Value        decimal.Decimal        `json:"value"`
	Cash         decimal.Decimal        `json:"cash"`
	Holdings     []ValuationHolding     `json:"holdings"`
	CashAccounts []ValuationCashAccount `json:"cash_accounts"`
}
