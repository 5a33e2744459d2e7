package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Quantity
// ==========================

func TestQuantity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValue float64
		wantRaw   string
	}{
		{name: "number", input: `2`, wantValue: 2, wantRaw: "2"},
		{name: "exponent", input: `1e3`, wantValue: 1000, wantRaw: "1e3"},
		{name: "zero", input: `0`, wantValue: 0, wantRaw: "0"},
		{name: "thousands separator", input: `"1,200"`, wantValue: 1200, wantRaw: "1,200"},
		{name: "padded string", input: `" 15.5 "`, wantValue: 15.5, wantRaw: " 15.5 "},
		{name: "negative number", input: `-3`, wantValue: 0, wantRaw: "-3"},
		{name: "negative string", input: `"-3"`, wantValue: 0, wantRaw: "-3"},
		{name: "NaN string", input: `"NaN"`, wantValue: 0, wantRaw: "NaN"},
		{name: "Inf string", input: `"Inf"`, wantValue: 0, wantRaw: "Inf"},
		{name: "overflow", input: `"1e400"`, wantValue: 0, wantRaw: "1e400"},
		{name: "words", input: `"lots"`, wantValue: 0, wantRaw: "lots"},
		{name: "empty string", input: `""`, wantValue: 0, wantRaw: ""},
		{name: "null", input: `null`, wantValue: 0, wantRaw: ""},
		{name: "boolean", input: `true`, wantValue: 0, wantRaw: "true"},
		{name: "array", input: `[1]`, wantValue: 0, wantRaw: "[1]"},
		{name: "object", input: `{}`, wantValue: 0, wantRaw: "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec RawRecord
			err := json.Unmarshal([]byte(`{"id":"R1","quantity":`+tt.input+`}`), &rec)
			require.NoError(t, err)
			assert.Equal(t, "R1", rec.ID)
			assert.Equal(t, tt.wantValue, rec.Quantity.Value)
			assert.Equal(t, tt.wantRaw, rec.Quantity.Raw)
		})
	}
}

func TestNewQuantity(t *testing.T) {
	assert.Equal(t, Quantity{Value: 2.5}, NewQuantity(2.5))
	assert.Equal(t, Quantity{Value: 0}, NewQuantity(0))

	neg := NewQuantity(-1)
	assert.Zero(t, neg.Value)
	assert.Equal(t, "-1", neg.Raw)

	nan := NewQuantity(math.NaN())
	assert.Zero(t, nan.Value)
	assert.Equal(t, "NaN", nan.Raw)

	inf := NewQuantity(math.Inf(1))
	assert.Zero(t, inf.Value)
	assert.Equal(t, "+Inf", inf.Raw)
}

func TestQuantity_Literal(t *testing.T) {
	assert.Equal(t, "15.5", ParseQuantity(" 15.5 ").Literal())
	assert.Equal(t, "1,200", ParseQuantity("1,200").Literal())
	assert.Equal(t, "lots", ParseQuantity("lots").Literal())
	assert.Equal(t, "2", NewQuantity(2).Literal())
	assert.Equal(t, "0", Quantity{}.Literal())
}

func TestQuantity_SuppliedText(t *testing.T) {
	tests := []struct {
		name string
		q    Quantity
		want string
	}{
		{name: "built from number", q: NewQuantity(2), want: ""},
		{name: "plain numeric text", q: ParseQuantity("2"), want: ""},
		{name: "padded numeric text", q: ParseQuantity(" 15.5 "), want: ""},
		{name: "thousands separator", q: ParseQuantity("1,200"), want: "1,200"},
		{name: "trailing zero", q: ParseQuantity("2.0"), want: "2.0"},
		{name: "unparseable", q: ParseQuantity("lots"), want: "lots"},
		{name: "negative", q: NewQuantity(-3), want: "-3"},
		{name: "empty", q: Quantity{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.SuppliedText())
		})
	}
}

func TestQuantity_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(ParseQuantity("1,200"))
	require.NoError(t, err)
	assert.Equal(t, "1200", string(data))

	data, err = json.Marshal(ParseQuantity("lots"))
	require.NoError(t, err)
	assert.Equal(t, "0", string(data))
}

// ==========================
// Flag
// ==========================

func TestFlag_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: `1`, want: true},
		{input: `1.0`, want: true},
		{input: `"1"`, want: true},
		{input: `true`, want: true},
		{input: `"true"`, want: true},
		{input: `"TRUE"`, want: true},
		{input: `"yes"`, want: true},
		{input: `"YES"`, want: true},
		{input: `0`, want: false},
		{input: `"0"`, want: false},
		{input: `false`, want: false},
		{input: `"false"`, want: false},
		{input: `"no"`, want: false},
		{input: `""`, want: false},
		{input: `null`, want: false},
		{input: `2`, want: false},
		{input: `{}`, want: false},
		{input: `[1]`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var rec RawRecord
			err := json.Unmarshal([]byte(`{"businessCategoryOverride":`+tt.input+`}`), &rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, bool(rec.BusinessCategoryOverride))
		})
	}
}

func TestFlag_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Flag(true))
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))

	data, err = json.Marshal(Flag(false))
	require.NoError(t, err)
	assert.Equal(t, "0", string(data))
}

// ==========================
// AuditResult
// ==========================

func TestAuditResult_MarshalJSON(t *testing.T) {
	res := AuditResult{SessionID: "s-1", RecordID: "R1", Quantity: ParseQuantity("1,200"), QuantityUnit: "kg"}

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "R1", doc["recordId"])
	assert.Equal(t, "kg", doc["quantityUnit"])
	assert.Equal(t, float64(1200), doc["quantity"])
	assert.Equal(t, "1,200", doc["quantityRaw"])

	res.Quantity = NewQuantity(2)
	data, err = json.Marshal(res)
	require.NoError(t, err)
	doc = nil
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, float64(2), doc["quantity"])
	_, present := doc["quantityRaw"]
	assert.False(t, present)
}
