package ledger

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"

	"github.com/jamescrowley/sharesight-importer/internal/models"
)

// CashAccountNeed is one distinct (currency, logical name) combination the
// ledger posts cash into. An empty currency means the portfolio base
// currency, which is not known until the portfolio is resolved.
type CashAccountNeed struct {
	Currency string
	Name     string
}

// ScanWarning is a data-quality finding that does not stop the run.
type ScanWarning struct {
	Line    int
	Message string
}

// ScanResult is the outcome of the full-file setup scan.
type ScanResult struct {
	CashAccounts []CashAccountNeed
	Instruments  []models.InstrumentDefinition
	Warnings     []ScanWarning
}

// Scan makes one pass over every parsed row before any remote call and
// derives what the setup phase must ensure exists: the cash accounts the
// rows post into (first-seen order) and the custom instrument definitions
// (first occurrence wins). Unknown transaction types and unknown currency
// codes abort here, before anything has been mutated remotely.
func Scan(rows []*models.LedgerRow) (*ScanResult, error) {
	result := &ScanResult{}
	seenAccounts := make(map[string]bool)
	seenInstruments := make(map[string]models.InstrumentDefinition)

	for _, row := range rows {
		class, err := models.Classify(row.Type)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", row.Line, err)
		}

		if row.AmountCurrency != "" && money.GetCurrency(row.AmountCurrency) == nil {
			return nil, fmt.Errorf("line %d: unknown currency code %q", row.Line, row.AmountCurrency)
		}

		if postsCash(class, row.Type) {
			name := row.CashAccount
			if name == "" {
				name = models.DefaultCashAccount
			}
			key := models.CashAccountKey(row.AmountCurrency, name)
			if !seenAccounts[key] {
				seenAccounts[key] = true
				result.CashAccounts = append(result.CashAccounts, CashAccountNeed{
					Currency: row.AmountCurrency,
					Name:     name,
				})
			}
		}

		if row.Quantity.IsNegative() {
			result.Warnings = append(result.Warnings, ScanWarning{
				Line:    row.Line,
				Message: fmt.Sprintf("negative quantity %s for %s, short positions are not supported", row.Quantity, row.Symbol),
			})
		}

		if row.IsCustom() && row.Symbol != "" {
			def := row.Instrument()
			symbolKey := strings.ToLower(row.Symbol)
			if first, ok := seenInstruments[symbolKey]; ok {
				if !first.Equal(def) {
					result.Warnings = append(result.Warnings, ScanWarning{
						Line:    row.Line,
						Message: fmt.Sprintf("instrument definition for %s differs from its first occurrence, keeping the first", row.Symbol),
					})
				}
			} else {
				seenInstruments[symbolKey] = def
				result.Instruments = append(result.Instruments, def)
			}
		}
	}

	return result, nil
}

// postsCash reports whether a row of this class and type can produce a cash
// movement. Merge rows and the non-cash trade types never do, so they must
// not drive cash account creation.
func postsCash(class models.OpClass, t models.TransactionType) bool {
	switch class {
	case models.OpCash, models.OpPayout:
		return true
	case models.OpTrade:
		return !t.NonCash()
	}
	return false
}
