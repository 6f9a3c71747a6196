package models

// RunSummary accumulates per-run counters reported at the end of an import.
type RunSummary struct {
	RowsRead       int
	TradesCreated  int
	TradesSkipped  int
	TradesFailed   int
	PayoutsCreated int
	PayoutsSkipped int
	PayoutsFailed  int
	CashCreated    int
	CashSkipped    int
	CashFailed     int
	MergesCreated  int
	MergesSkipped  int
	MergesFailed   int
	PricesCreated  int
	PricesUpdated  int
	Instruments    int
	Warnings       int
}

// Created returns the total number of records created across all kinds.
func (s *RunSummary) Created() int {
	return s.TradesCreated + s.PayoutsCreated + s.CashCreated + s.MergesCreated
}

// Skipped returns the total number of rows skipped as already imported.
func (s *RunSummary) Skipped() int {
	return s.TradesSkipped + s.PayoutsSkipped + s.CashSkipped + s.MergesSkipped
}

// Failed returns the total number of rows the remote side rejected.
func (s *RunSummary) Failed() int {
	return s.TradesFailed + s.PayoutsFailed + s.CashFailed + s.MergesFailed
}
