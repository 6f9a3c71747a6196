package ledger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// PriceRow is one record of a prices file: a closing price for a custom
// instrument on a date.
type PriceRow struct {
	Line   int
	Symbol string
	Date   string
	Price  decimal.Decimal
}

// ReadPricesFile parses a prices CSV with columns symbol, date and price.
func ReadPricesFile(path string) ([]*PriceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prices file: %w", err)
	}
	defer f.Close()

	return readPrices(f)
}

func readPrices(r io.Reader) ([]*PriceRow, error) {
	reader, err := newRawReader(r)
	if err != nil {
		return nil, err
	}

	columns := reader.columns
	for _, required := range []string{"symbol", "date", "price"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("prices header has no %s column", required)
		}
	}

	var rows []*PriceRow
	for {
		record, err := reader.csv.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read prices row: %w", err)
		}
		line, _ := reader.csv.FieldPos(0)

		get := func(column string) string {
			idx, ok := columns[column]
			if !ok || idx >= len(record) {
				return ""
			}
			return record[idx]
		}

		date := get("date")
		if _, err := time.Parse(models.DateFormat, date); err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", line, date)
		}
		price, err := decimal.NewFromString(get("price"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid price %q", line, get("price"))
		}

		rows = append(rows, &PriceRow{
			Line:   line,
			Symbol: strings.TrimSpace(get("symbol")),
			Date:   date,
			Price:  price,
		})
	}
}
