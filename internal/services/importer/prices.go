package importer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jamescrowley/sharesight-importer/internal/ledger"
	"github.com/jamescrowley/sharesight-importer/internal/models"
)

type priceEntry struct {
	id    int64
	date  string
	price decimal.Decimal
}

// syncPrices pushes a prices file to the portfolio's custom instruments.
// Each (symbol, date) gets exactly one remote price record: absent creates,
// different updates in place, identical is left alone. Prices for symbols
// without a custom instrument are reported and skipped.
func (s *Service) syncPrices(ctx context.Context, rc *runContext, path string) error {
	rows, err := ledger.ReadPricesFile(path)
	if err != nil {
		return err
	}
	rc.logger.Info().Str("file", path).Int("rows", len(rows)).Msg("Syncing prices")

	cache := make(map[int64][]*priceEntry)
	for _, row := range rows {
		investmentID, ok := rc.lookupInstrument(row.Symbol)
		if !ok {
			rc.logger.Warn().
				Int("line", row.Line).
				Str("symbol", row.Symbol).
				Msg("No custom instrument for price row, skipping")
			rc.summary.Warnings++
			continue
		}

		entries, ok := cache[investmentID]
		if !ok {
			prices, err := s.client.ListPrices(ctx, investmentID)
			if err != nil {
				return err
			}
			entries = make([]*priceEntry, 0, len(prices))
			for _, price := range prices {
				entries = append(entries, &priceEntry{
					id:    price.ID,
					date:  price.LastTradedOn,
					price: price.LastTradedPrice,
				})
			}
		}

		entries, err = s.pushPrice(ctx, rc, investmentID, entries, row)
		if err != nil {
			return err
		}
		cache[investmentID] = entries
	}
	return nil
}

// pushPrice reconciles one price row against the instrument's recorded
// prices, returning the entries with any new record appended.
func (s *Service) pushPrice(ctx context.Context, rc *runContext, investmentID int64, entries []*priceEntry, row *ledger.PriceRow) ([]*priceEntry, error) {
	payload := &models.PricePayload{
		LastTradedOn:    row.Date,
		LastTradedPrice: row.Price,
	}

	for _, entry := range entries {
		if entry.date != row.Date {
			continue
		}
		if entry.price.Equal(row.Price) {
			rc.logger.Debug().
				Str("symbol", row.Symbol).
				Str("date", row.Date).
				Msg("Price unchanged")
			return entries, nil
		}
		updated, err := s.client.UpdatePrice(ctx, entry.id, payload)
		if err != nil {
			return entries, err
		}
		entry.price = updated.LastTradedPrice
		rc.summary.PricesUpdated++
		rc.logger.Info().
			Str("symbol", row.Symbol).
			Str("date", row.Date).
			Str("price", row.Price.String()).
			Msg("Updated price")
		return entries, nil
	}

	created, err := s.client.CreatePrice(ctx, investmentID, payload)
	if err != nil {
		return entries, err
	}
	rc.summary.PricesCreated++
	rc.logger.Info().
		Str("symbol", row.Symbol).
		Str("date", row.Date).
		Str("price", row.Price.String()).
		Msg("Created price")
	return append(entries, &priceEntry{id: created.ID, date: row.Date, price: created.LastTradedPrice}), nil
}
