// Package ledger reads and scans transaction ledger files
package ledger

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// Recognized header columns. Unknown columns are ignored; missing optional
// columns read as empty.
const (
	colUniqueIdentifier = "unique_identifier"
	colTransactionType  = "transaction_type"
	colTransactionDate  = "transaction_date"
	colSymbol           = "symbol"
	colMarket           = "market"
	colQuantity         = "quantity"
	colPrice            = "price"
	colAmount           = "amount"
	colAmountCurrency   = "amount_currency"
	colBrokerage        = "brokerage"
	colBrokerageCcy     = "brokerage_currency_code"
	colExchangeRate     = "exchange_rate"
	colAccruedIncome    = "accrued_income"
	colCashAccount      = "cash_account"
	colGoesExOn         = "goes_ex_on"
	colDescription      = "description"
	colComments         = "comments"
	colSymbolName       = "symbol_name"
	colInstrumentCtry   = "instrument_country_code"
	colInstrumentCcy    = "instrument_currency"
	colSymbolType       = "symbol_type"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// rawReader is the shared CSV plumbing: BOM stripping and header-driven
// column lookup.
type rawReader struct {
	csv     *csv.Reader
	columns map[string]int
}

func newRawReader(r io.Reader) (*rawReader, error) {
	br := bufio.NewReader(r)
	if lead, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(lead, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	return &rawReader{csv: cr, columns: columns}, nil
}

// Reader parses ledger rows from a CSV stream in file order, tracking the
// 1-based physical line number of every row.
type Reader struct {
	*rawReader
}

// NewReader strips a UTF-8 byte-order mark if present and reads the header
// row. The header drives column lookup, so column order does not matter.
func NewReader(r io.Reader) (*Reader, error) {
	raw, err := newRawReader(r)
	if err != nil {
		return nil, err
	}
	for _, required := range []string{colTransactionType, colTransactionDate} {
		if _, ok := raw.columns[required]; !ok {
			return nil, fmt.Errorf("ledger header has no %s column", required)
		}
	}
	return &Reader{rawReader: raw}, nil
}

// Next parses and returns the next row. It returns io.EOF at the end of
// the file.
func (r *Reader) Next() (*models.LedgerRow, error) {
	record, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read ledger row: %w", err)
	}
	line, _ := r.csv.FieldPos(0)
	return r.parse(record, line)
}

func (r *Reader) parse(record []string, line int) (*models.LedgerRow, error) {
	get := func(column string) string {
		idx, ok := r.columns[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	row := &models.LedgerRow{
		Line:             line,
		UniqueIdentifier: get(colUniqueIdentifier),
		Type:             models.TransactionType(get(colTransactionType)),
		Symbol:           get(colSymbol),
		Market:           get(colMarket),
		AmountCurrency:   strings.ToUpper(get(colAmountCurrency)),
		BrokerageCcy:     strings.ToUpper(get(colBrokerageCcy)),
		CashAccount:      get(colCashAccount),
		GoesExOn:         get(colGoesExOn),
		Description:      get(colDescription),
		Comments:         get(colComments),
		SymbolName:       get(colSymbolName),
		InstrumentCtry:   get(colInstrumentCtry),
		InstrumentCcy:    strings.ToUpper(get(colInstrumentCcy)),
		InstrumentType:   get(colSymbolType),
	}

	rawDate := get(colTransactionDate)
	date, err := time.Parse(models.DateFormat, rawDate)
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid transaction_date %q", line, rawDate)
	}
	row.TransactionDate = date

	for _, field := range []struct {
		column string
		dst    *decimal.Decimal
	}{
		{colQuantity, &row.Quantity},
		{colPrice, &row.Price},
		{colAmount, &row.Amount},
		{colBrokerage, &row.Brokerage},
		{colExchangeRate, &row.ExchangeRate},
		{colAccruedIncome, &row.AccruedIncome},
	} {
		value := get(field.column)
		if value == "" {
			continue
		}
		parsed, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s %q", line, field.column, value)
		}
		*field.dst = parsed
	}

	return row, nil
}

// ReadAll drains the reader into a slice in file order.
func ReadAll(r *Reader) ([]*models.LedgerRow, error) {
	var rows []*models.LedgerRow
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// ReadFile parses a whole ledger file.
func ReadFile(path string) ([]*models.LedgerRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer f.Close()

	r, err := NewReader(f)
	if err != nil {
		return nil, err
	}
	return ReadAll(r)
}

// Filter restricts which rows an import run processes. Zero values leave
// the corresponding bound open. Line bounds are 1-based physical line
// numbers, inclusive.
type Filter struct {
	MinDate time.Time
	MinLine int
	MaxLine int
}

// Empty reports whether the filter excludes nothing.
func (f Filter) Empty() bool {
	return f.MinDate.IsZero() && f.MinLine == 0 && f.MaxLine == 0
}

// Includes reports whether the row falls inside the filter bounds.
func (f Filter) Includes(row *models.LedgerRow) bool {
	if f.MinLine > 0 && row.Line < f.MinLine {
		return false
	}
	if f.MaxLine > 0 && row.Line > f.MaxLine {
		return false
	}
	if !f.MinDate.IsZero() && row.TransactionDate.Before(f.MinDate) {
		return false
	}
	return true
}

// Exhausted reports whether the row is past the upper line bound, meaning
// no later row can be included either.
func (f Filter) Exhausted(row *models.LedgerRow) bool {
	return f.MaxLine > 0 && row.Line > f.MaxLine
}
