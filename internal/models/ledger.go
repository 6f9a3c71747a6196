// Package models defines data structures for the Sharesight importer
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the wire format for all dates exchanged with Sharesight
// and expected in ledger files.
const DateFormat = "2006-01-02"

// MarketOther is the market code marking a row as a user-defined (custom)
// instrument, scoped to a single portfolio.
const MarketOther = "other"

// DefaultCashAccount is the logical cash account name used when a row
// leaves the cash_account column empty.
const DefaultCashAccount = "CAPITAL"

// TransactionType identifies the kind of financial event a ledger row records.
type TransactionType string

const (
	TypeBuy            TransactionType = "BUY"
	TypeSell           TransactionType = "SELL"
	TypeSplit          TransactionType = "SPLIT"
	TypeBonus          TransactionType = "BONUS"
	TypeConsolidation  TransactionType = "CONSOLD"
	TypeCancel         TransactionType = "CANCEL"
	TypeCapitalReturn  TransactionType = "CAPITAL_RETURN"
	TypeCapitalCall    TransactionType = "CAPITAL_CALL"
	TypeOpeningBalance TransactionType = "OPENING_BALANCE"
	TypeAdjustCostBase TransactionType = "ADJUST_COST_BASE"

	TypeDividend     TransactionType = "DIVIDEND"
	TypeDistribution TransactionType = "DISTRIBUTION"

	TypeDeposit         TransactionType = "DEPOSIT"
	TypeWithdrawal      TransactionType = "WITHDRAWAL"
	TypeInterestPayment TransactionType = "INTEREST_PAYMENT"
	TypeInterestCharged TransactionType = "INTEREST_CHARGED"
	TypeFee             TransactionType = "FEE"
	TypeFeeReimbursed   TransactionType = "FEE_REIMBURSEMENT"

	TypeMergeCancel TransactionType = "MERGE_CANCEL"
	TypeMergeBuy    TransactionType = "MERGE_BUY"
)

// OpClass is the remote operation class a transaction type maps to.
type OpClass string

const (
	OpTrade  OpClass = "trade"
	OpPayout OpClass = "payout"
	OpCash   OpClass = "cash"
	OpMerge  OpClass = "merge"
)

// classByType is the complete taxonomy. Every known transaction type maps
// to exactly one operation class; anything else is a classification error.
var classByType = map[TransactionType]OpClass{
	TypeBuy:            OpTrade,
	TypeSell:           OpTrade,
	TypeSplit:          OpTrade,
	TypeBonus:          OpTrade,
	TypeConsolidation:  OpTrade,
	TypeCancel:         OpTrade,
	TypeCapitalReturn:  OpTrade,
	TypeCapitalCall:    OpTrade,
	TypeOpeningBalance: OpTrade,
	TypeAdjustCostBase: OpTrade,

	TypeDividend:     OpPayout,
	TypeDistribution: OpPayout,

	TypeDeposit:         OpCash,
	TypeWithdrawal:      OpCash,
	TypeInterestPayment: OpCash,
	TypeInterestCharged: OpCash,
	TypeFee:             OpCash,
	TypeFeeReimbursed:   OpCash,

	TypeMergeCancel: OpMerge,
	TypeMergeBuy:    OpMerge,
}

// nonCashTypes are trade types that never carry an associated cash movement.
// A nonzero amount on one of these rows indicates a data problem.
var nonCashTypes = map[TransactionType]bool{
	TypeOpeningBalance: true,
	TypeCancel:         true,
	TypeConsolidation:  true,
	TypeBonus:          true,
	TypeSplit:          true,
}

// Classify maps a transaction type to its operation class. An unrecognized
// type is an error: skipping it silently would desync the de-duplication
// indexes for every later row.
func Classify(t TransactionType) (OpClass, error) {
	class, ok := classByType[t]
	if !ok {
		return "", fmt.Errorf("unknown transaction type %q", t)
	}
	return class, nil
}

// NonCash reports whether the type is exempt from cash posting.
func (t TransactionType) NonCash() bool {
	return nonCashTypes[t]
}

// IsCapitalCallOrReturn reports whether the type is one of the two capital
// event types, which carry a capital_return_value and paid_on on the wire
// and always post a cash movement.
func (t TransactionType) IsCapitalCallOrReturn() bool {
	return t == TypeCapitalCall || t == TypeCapitalReturn
}

// LedgerRow is one parsed record of the input ledger file.
type LedgerRow struct {
	Line int // 1-based physical line number in the source file

	UniqueIdentifier string
	Type             TransactionType
	TransactionDate  time.Time
	Symbol           string
	Market           string
	Quantity         decimal.Decimal
	Price            decimal.Decimal
	Amount           decimal.Decimal
	AmountCurrency   string
	Brokerage        decimal.Decimal
	BrokerageCcy     string
	ExchangeRate     decimal.Decimal
	AccruedIncome    decimal.Decimal
	CashAccount      string
	GoesExOn         string
	Description      string
	Comments         string

	// Instrument definition columns, present only on custom-instrument rows.
	SymbolName     string
	InstrumentCcy  string
	InstrumentType string
	InstrumentCtry string
}

// IsCustom reports whether the row references a user-defined instrument.
func (r LedgerRow) IsCustom() bool {
	return strings.EqualFold(r.Market, MarketOther)
}

// Instrument returns the custom-instrument definition carried by the row.
func (r LedgerRow) Instrument() InstrumentDefinition {
	return InstrumentDefinition{
		Symbol:      r.Symbol,
		Name:        r.SymbolName,
		CountryCode: r.InstrumentCtry,
		Currency:    r.InstrumentCcy,
		Type:        r.InstrumentType,
	}
}

// InstrumentDefinition describes a custom instrument to be mirrored remotely.
type InstrumentDefinition struct {
	Symbol      string
	Name        string
	CountryCode string
	Currency    string
	Type        string
}

// Equal reports whether two definitions are identical in every attribute.
func (d InstrumentDefinition) Equal(o InstrumentDefinition) bool {
	return strings.EqualFold(d.Symbol, o.Symbol) &&
		d.Name == o.Name &&
		d.CountryCode == o.CountryCode &&
		d.Currency == o.Currency &&
		d.Type == o.Type
}

// SameShape reports whether two definitions differ at most in display name.
// Country, currency and type cannot be changed in place on the remote side,
// so a shape mismatch forces a delete and recreate.
func (d InstrumentDefinition) SameShape(o InstrumentDefinition) bool {
	return d.CountryCode == o.CountryCode &&
		d.Currency == o.Currency &&
		d.Type == o.Type
}

// HoldingKey derives the holding index key. Symbol and market are folded to
// lower case so the key is identical whether the holding was just created or
// came back from a remote listing.
func HoldingKey(portfolioID, market, symbol string) string {
	return fmt.Sprintf("%s-%s-%s", portfolioID, strings.ToLower(market), strings.ToLower(symbol))
}

// PayoutKey derives the payout de-duplication key. Payouts have no
// caller-supplied unique id remotely, so (holding, pay date) stands in.
func PayoutKey(portfolioID, holdingID, paidOn string) string {
	return fmt.Sprintf("%s-%s-%s", portfolioID, holdingID, paidOn)
}

// CustomInstrumentKey derives the custom-instrument index key. The portfolio
// id qualifies the symbol because the remote service is known to conflate
// custom instruments sharing a code across portfolios.
func CustomInstrumentKey(portfolioID, symbol string) string {
	return fmt.Sprintf("%s-%s", portfolioID, strings.ToLower(symbol))
}

// CashAccountKey derives the cash account index key from a currency and a
// logical account name. An empty name means the default capital account.
func CashAccountKey(currency, name string) string {
	if name == "" {
		name = DefaultCashAccount
	}
	return fmt.Sprintf("%s-%s", strings.ToUpper(currency), strings.ToUpper(name))
}
