package models

import (
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
)

// Duplicate-rejection messages as the service phrases them. Matching on the
// exact text is deliberate: a looser match could mistake a real validation
// failure for a benign duplicate.
const (
	duplicateTradeMessage = "A trade with this unique_identifier already exists in the portfolio."
	duplicateCashMessage  = "has already been taken"
)

// Response is the raw outcome of a non-strict create call. Record creation
// endpoints reject duplicates and bad instruments with a 4xx plus a
// structured errors body, so callers inspect rather than fail.
type Response struct {
	StatusCode int
	Body       []byte
	Method     string
	URL        string
}

// OK reports whether the call returned a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DecodeEntity unwraps the singular resource key the API nests every entity
// under (e.g. {"trade": {...}}) and decodes the inner object into v.
func (r *Response) DecodeEntity(key string, v any) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(r.Body, &envelope); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	inner, ok := envelope[key]
	if !ok {
		return fmt.Errorf("response has no %q entity", key)
	}
	return json.Unmarshal(inner, v)
}

// errorAt extracts the first message under $.errors.<field>. Error bodies
// are loosely shaped across endpoints, so this probes instead of decoding
// into a fixed struct.
func (r *Response) errorAt(field string) string {
	var body any
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return ""
	}
	val, err := jsonpath.Get(fmt.Sprintf("$.errors.%s", field), body)
	if err != nil {
		return ""
	}
	// jsonpath may hand back the list itself or its sole element
	if list, ok := val.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		val = list[0]
	}
	s, _ := val.(string)
	return s
}

// DuplicateTrade reports whether the response is the service's rejection of
// an already-imported trade (same unique_identifier in the portfolio).
func (r *Response) DuplicateTrade() bool {
	return r.errorAt("unique_identifier") == duplicateTradeMessage
}

// DuplicateCash reports whether the response is the service's rejection of
// an already-imported cash transaction (same foreign_identifier).
func (r *Response) DuplicateCash() bool {
	return r.errorAt("foreign_identifier") == duplicateCashMessage
}

// Duplicate reports whether the response carries either benign duplicate
// signature. Duplicates are treated as success: the record exists.
func (r *Response) Duplicate() bool {
	return r.DuplicateTrade() || r.DuplicateCash()
}

// UnknownInstrument reports whether the rejection blames the symbol or
// market, the signature of an instrument the service has never heard of.
func (r *Response) UnknownInstrument() bool {
	return r.errorAt("symbol") != "" || r.errorAt("market") != ""
}
