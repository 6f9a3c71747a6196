package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamescrowley/sharesight-importer/internal/models"
)

func row(line int, txType, symbol, market, currency, cashAccount string) *models.LedgerRow {
	return &models.LedgerRow{
		Line:            line,
		Type:            models.TransactionType(txType),
		TransactionDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Symbol:          symbol,
		Market:          market,
		AmountCurrency:  currency,
		CashAccount:     cashAccount,
	}
}

func TestScan_CollectsCashAccountsFirstSeen(t *testing.T) {
	rows := []*models.LedgerRow{
		row(2, "BUY", "VWRL", "LSE", "GBP", ""),
		row(3, "DEPOSIT", "", "", "GBP", ""),
		row(4, "DIVIDEND", "VWRL", "LSE", "GBP", "INCOME"),
		row(5, "BUY", "AAPL", "NASDAQ", "USD", ""),
		row(6, "DEPOSIT", "", "", "GBP", ""), // repeat of line 3
	}

	result, err := Scan(rows)
	require.NoError(t, err)

	require.Len(t, result.CashAccounts, 3)
	assert.Equal(t, CashAccountNeed{Currency: "GBP", Name: "CAPITAL"}, result.CashAccounts[0])
	assert.Equal(t, CashAccountNeed{Currency: "GBP", Name: "INCOME"}, result.CashAccounts[1])
	assert.Equal(t, CashAccountNeed{Currency: "USD", Name: "CAPITAL"}, result.CashAccounts[2])
}

func TestScan_NonCashTypesDoNotCreateAccounts(t *testing.T) {
	rows := []*models.LedgerRow{
		row(2, "OPENING_BALANCE", "VWRL", "LSE", "CHF", ""),
		row(3, "SPLIT", "VWRL", "LSE", "CHF", ""),
		row(4, "MERGE_CANCEL", "OLD", "LSE", "CHF", ""),
		row(5, "MERGE_BUY", "NEW", "LSE", "CHF", ""),
	}

	result, err := Scan(rows)
	require.NoError(t, err)
	assert.Empty(t, result.CashAccounts)
}

func TestScan_UnknownTypeAborts(t *testing.T) {
	rows := []*models.LedgerRow{
		row(2, "BUY", "VWRL", "LSE", "GBP", ""),
		row(3, "TRANSMOGRIFY", "VWRL", "LSE", "GBP", ""),
	}

	_, err := Scan(rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "TRANSMOGRIFY")
}

func TestScan_UnknownCurrencyAborts(t *testing.T) {
	rows := []*models.LedgerRow{
		row(2, "DEPOSIT", "", "", "ZZZ", ""),
	}

	_, err := Scan(rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "ZZZ")
}

func TestScan_CustomInstrumentFirstSeenWins(t *testing.T) {
	first := row(2, "BUY", "MYFUND", "other", "GBP", "")
	first.SymbolName = "My Fund"
	first.InstrumentCtry = "GB"
	first.InstrumentCcy = "GBP"
	first.InstrumentType = "MANAGED_FUND"

	same := row(3, "BUY", "myfund", "OTHER", "GBP", "")
	same.SymbolName = "My Fund"
	same.InstrumentCtry = "GB"
	same.InstrumentCcy = "GBP"
	same.InstrumentType = "MANAGED_FUND"

	differs := row(4, "SELL", "MYFUND", "other", "GBP", "")
	differs.SymbolName = "My Fund"
	differs.InstrumentCtry = "GB"
	differs.InstrumentCcy = "USD" // changed
	differs.InstrumentType = "MANAGED_FUND"

	result, err := Scan([]*models.LedgerRow{first, same, differs})
	require.NoError(t, err)

	require.Len(t, result.Instruments, 1, "case-insensitive symbol match keeps one definition")
	assert.Equal(t, "GBP", result.Instruments[0].Currency, "first definition wins")

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 4, result.Warnings[0].Line)
	assert.Contains(t, result.Warnings[0].Message, "differs")
}

func TestScan_NegativeQuantityWarns(t *testing.T) {
	r := row(2, "SELL", "VWRL", "LSE", "GBP", "")
	r.Quantity = decimal.NewFromInt(-5)

	result, err := Scan([]*models.LedgerRow{r})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 2, result.Warnings[0].Line)
	assert.Contains(t, result.Warnings[0].Message, "negative quantity")
}
