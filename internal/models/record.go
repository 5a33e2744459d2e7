package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawRecord is one candidate lead as produced by the ingestion step.
type RawRecord struct {
	ID                       string   `json:"id"`
	CategoryID               string   `json:"categoryId"`
	CategoryName             string   `json:"categoryName"`
	Quantity                 Quantity `json:"quantity"`
	QuantityUnit             string   `json:"quantityUnit"`
	ProbableOrderValue       string   `json:"probableOrderValue"`
	SegmentLabel             string   `json:"segmentLabel"`
	Details                  string   `json:"details"`
	BusinessCategoryOverride Flag     `json:"businessCategoryOverride"`
}

// Quantity is a non-negative decimal decoded leniently from a JSON number or a
// numeric string. Anything that does not parse as a finite, non-negative number
// decodes to zero; Raw keeps the text that was supplied.
type Quantity struct {
	Value float64
	Raw   string
}

// NewQuantity builds a Quantity from a number.
func NewQuantity(v float64) Quantity {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return Quantity{Raw: strconv.FormatFloat(v, 'f', -1, 64)}
	}
	return Quantity{Value: v}
}

// ParseQuantity parses free text such as "1,200" or " 15.5 ". Malformed input is zero.
func ParseQuantity(s string) Quantity {
	q := Quantity{Raw: s}
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return q
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return q
	}
	q.Value = v
	return q
}

// Literal returns the quantity as the caller supplied it, falling back to the
// parsed value.
func (q Quantity) Literal() string {
	if raw := strings.TrimSpace(q.Raw); raw != "" {
		return raw
	}
	return FormatNumber(q.Value)
}

// SuppliedText returns the caller's text when it carries more than the parsed
// value, e.g. "1,200" or "lots". It is empty when Raw adds nothing.
func (q Quantity) SuppliedText() string {
	raw := strings.TrimSpace(q.Raw)
	if raw == "" || raw == FormatNumber(q.Value) {
		return ""
	}
	return raw
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = Quantity{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*q = Quantity{Raw: string(data)}
			return nil
		}
		*q = ParseQuantity(s)
		return nil
	}
	*q = ParseQuantity(string(data))
	return nil
}

// MarshalJSON emits the parsed value only. Types embedding a Quantity carry
// SuppliedText alongside it when the original text must survive.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(FormatNumber(q.Value)), nil
}

// Flag is the business-category override marker. 1, "1", true and "true" set it.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(string(data)), `"`))
	switch s {
	case "1", "1.0", "true", "yes":
		*f = true
	default:
		*f = false
	}
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// FormatNumber renders a float without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
