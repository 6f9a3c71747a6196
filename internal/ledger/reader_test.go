package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLedger = "unique_identifier,transaction_type,transaction_date,symbol,market,quantity,price,amount,amount_currency,cash_account,comments\n" +
	"tx-1,BUY,2023-01-10,VWRL,LSE,10,85.20,-852.00,GBP,,first buy\n" +
	"tx-2,DIVIDEND,2023-03-01,VWRL,LSE,,,12.50,GBP,INCOME,\n" +
	"tx-3,DEPOSIT,2023-03-05,,,,,1000,GBP,,\n"

func TestReader_ParsesRowsWithLineNumbers(t *testing.T) {
	r, err := NewReader(strings.NewReader(sampleLedger))
	require.NoError(t, err)

	rows, err := ReadAll(r)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// header is line 1, data starts at line 2
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, 3, rows[1].Line)
	assert.Equal(t, 4, rows[2].Line)

	buy := rows[0]
	assert.Equal(t, "tx-1", buy.UniqueIdentifier)
	assert.Equal(t, "BUY", string(buy.Type))
	assert.Equal(t, "VWRL", buy.Symbol)
	assert.Equal(t, "LSE", buy.Market)
	assert.Equal(t, time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC), buy.TransactionDate)
	assert.Equal(t, "10", buy.Quantity.String())
	assert.Equal(t, "85.2", buy.Price.String())
	assert.Equal(t, "-852", buy.Amount.String())
	assert.Equal(t, "GBP", buy.AmountCurrency)
	assert.Equal(t, "first buy", buy.Comments)

	dividend := rows[1]
	assert.True(t, dividend.Quantity.IsZero(), "empty quantity should read as zero")
	assert.Equal(t, "INCOME", dividend.CashAccount)
}

func TestReader_StripsByteOrderMark(t *testing.T) {
	input := "\uFEFF" + sampleLedger
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	rows, err := ReadAll(r)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "tx-1", rows[0].UniqueIdentifier, "BOM must not corrupt the first header column")
}

func TestReader_MissingRequiredColumn(t *testing.T) {
	input := "unique_identifier,symbol\ntx-1,VWRL\n"
	_, err := NewReader(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction_type")
}

func TestReader_IgnoresUnknownColumns(t *testing.T) {
	input := "transaction_type,transaction_date,mystery_column\nBUY,2023-01-10,whatever\n"
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	rows, err := ReadAll(r)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "BUY", string(rows[0].Type))
}

func TestReader_InvalidDecimalNamesLine(t *testing.T) {
	input := "transaction_type,transaction_date,quantity\n" +
		"BUY,2023-01-10,10\n" +
		"BUY,2023-01-11,ten\n"
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	_, err = ReadAll(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "quantity")
}

func TestReader_InvalidDateNamesLine(t *testing.T) {
	input := "transaction_type,transaction_date\nBUY,10/01/2023\n"
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	_, err = ReadAll(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "transaction_date")
}

func TestFilter_Bounds(t *testing.T) {
	r, err := NewReader(strings.NewReader(sampleLedger))
	require.NoError(t, err)
	rows, err := ReadAll(r)
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter Filter
		want   []int // included line numbers
	}{
		{"empty filter includes all", Filter{}, []int{2, 3, 4}},
		{"min line", Filter{MinLine: 3}, []int{3, 4}},
		{"max line", Filter{MaxLine: 3}, []int{2, 3}},
		{"line window", Filter{MinLine: 3, MaxLine: 3}, []int{3}},
		{"min date", Filter{MinDate: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)}, []int{3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			for _, row := range rows {
				if tt.filter.Includes(row) {
					got = append(got, row.Line)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_Exhausted(t *testing.T) {
	r, err := NewReader(strings.NewReader(sampleLedger))
	require.NoError(t, err)
	rows, err := ReadAll(r)
	require.NoError(t, err)

	f := Filter{MaxLine: 3}
	assert.False(t, f.Exhausted(rows[0]))
	assert.False(t, f.Exhausted(rows[1]))
	assert.True(t, f.Exhausted(rows[2]))
	assert.False(t, Filter{}.Exhausted(rows[2]), "open filter never exhausts")
}

func TestCursor_PeekDoesNotConsume(t *testing.T) {
	r, err := NewReader(strings.NewReader(sampleLedger))
	require.NoError(t, err)
	rows, err := ReadAll(r)
	require.NoError(t, err)

	c := NewCursor(rows)

	first := c.Next()
	require.NotNil(t, first)
	assert.Equal(t, "tx-1", first.UniqueIdentifier)

	peeked := c.Peek()
	require.NotNil(t, peeked)
	assert.Equal(t, "tx-2", peeked.UniqueIdentifier)
	assert.Same(t, peeked, c.Peek(), "repeated Peek returns the same row")
	assert.Same(t, peeked, c.Next(), "Next returns the peeked row")

	c.Next()
	assert.Nil(t, c.Peek())
	assert.Nil(t, c.Next())
}

func TestReadPrices_ParsesRows(t *testing.T) {
	input := "symbol,date,price\nMYFUND,2023-06-30,1.2345\nOTHERFUND,2023-06-30,0.98\n"
	rows, err := readPrices(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "MYFUND", rows[0].Symbol)
	assert.Equal(t, "2023-06-30", rows[0].Date)
	assert.Equal(t, "1.2345", rows[0].Price.String())
	assert.Equal(t, 2, rows[0].Line)
}

func TestReadPrices_RejectsBadDate(t *testing.T) {
	input := "symbol,date,price\nMYFUND,30/06/2023,1.23\n"
	_, err := readPrices(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadPrices_RequiresColumns(t *testing.T) {
	input := "symbol,price\nMYFUND,1.23\n"
	_, err := readPrices(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date")
}
