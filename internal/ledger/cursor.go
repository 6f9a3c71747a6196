package ledger

import "github.com/jamescrowley/sharesight-importer/internal/models"

// Cursor iterates parsed rows with a single row of lookahead. The lookahead
// exists for pairing adjacent merge rows; it never advances further than
// one row, so line-by-line processing order is preserved.
type Cursor struct {
	rows []*models.LedgerRow
	pos  int
}

// NewCursor creates a cursor over rows in file order.
func NewCursor(rows []*models.LedgerRow) *Cursor {
	return &Cursor{rows: rows}
}

// Next consumes and returns the next row, or nil when exhausted.
func (c *Cursor) Next() *models.LedgerRow {
	if c.pos >= len(c.rows) {
		return nil
	}
	row := c.rows[c.pos]
	c.pos++
	return row
}

// Peek returns the next row without consuming it, or nil when exhausted.
func (c *Cursor) Peek() *models.LedgerRow {
	if c.pos >= len(c.rows) {
		return nil
	}
	return c.rows[c.pos]
}
