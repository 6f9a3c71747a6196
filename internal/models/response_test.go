package models

import (
	"testing"
)

func TestResponse_DuplicateTradeSignature(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{
			"exact duplicate message",
			`{"errors": {"unique_identifier": ["A trade with this unique_identifier already exists in the portfolio."]}}`,
			true,
		},
		{
			"different unique_identifier error",
			`{"errors": {"unique_identifier": ["is too long"]}}`,
			false,
		},
		{
			"other errors key",
			`{"errors": {"quantity": ["is invalid"]}}`,
			false,
		},
		{
			"no errors object",
			`{"trade": {"id": 1}}`,
			false,
		},
		{
			"not json",
			`Bad Gateway`,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Response{StatusCode: 422, Body: []byte(tt.body)}
			if got := r.DuplicateTrade(); got != tt.want {
				t.Errorf("DuplicateTrade() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResponse_DuplicateCashSignature(t *testing.T) {
	r := &Response{StatusCode: 422, Body: []byte(`{"errors": {"foreign_identifier": ["has already been taken"]}}`)}
	if !r.DuplicateCash() {
		t.Error("expected duplicate cash signature")
	}
	if r.DuplicateTrade() {
		t.Error("cash signature must not match the trade probe")
	}
	if !r.Duplicate() {
		t.Error("Duplicate() should cover both signatures")
	}

	other := &Response{StatusCode: 422, Body: []byte(`{"errors": {"foreign_identifier": ["is invalid"]}}`)}
	if other.DuplicateCash() {
		t.Error("non-duplicate foreign_identifier error must not match")
	}
}

func TestResponse_UnknownInstrument(t *testing.T) {
	bySymbol := &Response{StatusCode: 422, Body: []byte(`{"errors": {"symbol": ["is not recognised"]}}`)}
	if !bySymbol.UnknownInstrument() {
		t.Error("symbol error should flag unknown instrument")
	}

	byMarket := &Response{StatusCode: 422, Body: []byte(`{"errors": {"market": ["is not supported"]}}`)}
	if !byMarket.UnknownInstrument() {
		t.Error("market error should flag unknown instrument")
	}

	unrelated := &Response{StatusCode: 422, Body: []byte(`{"errors": {"price": ["is required"]}}`)}
	if unrelated.UnknownInstrument() {
		t.Error("unrelated error must not flag unknown instrument")
	}
}

func TestResponse_DecodeEntity(t *testing.T) {
	r := &Response{StatusCode: 200, Body: []byte(`{"trade": {"id": 9, "holding_id": 321, "state": "confirmed"}}`)}

	var trade Trade
	if err := r.DecodeEntity("trade", &trade); err != nil {
		t.Fatalf("DecodeEntity failed: %v", err)
	}
	if trade.HoldingID != 321 {
		t.Errorf("holding id = %d, want 321", trade.HoldingID)
	}

	var payout Payout
	if err := r.DecodeEntity("payout", &payout); err == nil {
		t.Error("expected error for missing entity key")
	}
}

func TestResponse_OK(t *testing.T) {
	for status, want := range map[int]bool{200: true, 201: true, 299: true, 300: false, 422: false, 500: false} {
		r := &Response{StatusCode: status}
		if r.OK() != want {
			t.Errorf("OK() for %d = %v, want %v", status, r.OK(), want)
		}
	}
}
