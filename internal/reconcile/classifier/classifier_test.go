package classifier

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indiamart-audit/internal/models"
)

func record(qty float64, unit, segment string) models.RawRecord {
	return models.RawRecord{
		ID:           "R1",
		CategoryID:   "C1",
		CategoryName: "Cotton Yarn",
		Quantity:     models.NewQuantity(qty),
		QuantityUnit: unit,
		SegmentLabel: segment,
	}
}

func kgThreshold(cutoff float64) *models.ThresholdEntry {
	return &models.ThresholdEntry{
		CategoryID:     "C1",
		CategoryName:   "Cotton Yarn",
		CutoffQuantity: models.NewQuantity(cutoff),
		CutoffUnit:     "kg",
	}
}

func TestClassify_DecisionTable(t *testing.T) {
	tests := []struct {
		name        string
		qty         float64
		unit        string
		segment     string
		wantOutcome models.Outcome
		wantLabel   string
	}{
		{"within threshold marked retail", 10, "kg", "Retail - Indian", models.OutcomePass, models.LabelRetailCorrect},
		{"above threshold marked non-retail", 80, "kg", "Non-Retail", models.OutcomePass, models.LabelNonRetailCorrect},
		{"within threshold marked non-retail", 10, "kg", "Non-Retail", models.OutcomeError, models.LabelNonRetailWrong},
		{"above threshold marked retail", 80, "kg", "retail - foreign", models.OutcomeError, models.LabelRetailWrong},
		{"boundary is inclusive", 50, "kg", "Retail - Indian", models.OutcomePass, models.LabelRetailCorrect},
		{"boundary after conversion", 50000, "g", "Retail - Indian", models.OutcomePass, models.LabelRetailCorrect},
		{"converted above threshold", 1, "tonne", "Retail - Indian", models.OutcomeError, models.LabelRetailWrong},
		{"incompatible unit compares raw value", 40, "litre", "Retail - Indian", models.OutcomePass, models.LabelRetailCorrect},
		{"segment label is trimmed and case-insensitive", 5, "kg", "  RETAIL - INDIAN ", models.OutcomePass, models.LabelRetailCorrect},
		{"plain retail is not a retail segment", 5, "kg", "Retail", models.OutcomeError, models.LabelNonRetailWrong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Classify(record(tt.qty, tt.unit, tt.segment), kgThreshold(50), nil)
			assert.Equal(t, tt.wantOutcome, v.Outcome)
			assert.Equal(t, tt.wantLabel, v.CategoryLabel)
			assert.Equal(t, models.MCATStandard, v.MCATType)
			assert.Equal(t, models.PathQuantityComparison, v.Path)
			assert.True(t, v.ThresholdAvailable)
			assert.Equal(t, "50 kg", v.ThresholdDisplay)
			assert.NotEmpty(t, v.Reason)
		})
	}
}

func TestClassify_ReasonIsAuditable(t *testing.T) {
	v := Classify(record(2, "tonne", "Retail - Indian"), kgThreshold(50), nil)

	assert.Contains(t, v.Reason, "2 tonne")
	assert.Contains(t, v.Reason, "2000.00 kg")
	assert.Contains(t, v.Reason, "50 kg")
	assert.Equal(t, 2000.0, v.ConvertedQuantity)
}

func TestClassify_BusinessOverride(t *testing.T) {
	t.Run("marked retail is an error regardless of quantity", func(t *testing.T) {
		for _, qty := range []float64{0, 10, 50, 10000} {
			rec := record(qty, "kg", "Retail - Indian")
			rec.BusinessCategoryOverride = true

			for _, th := range []*models.ThresholdEntry{kgThreshold(50), nil} {
				v := Classify(rec, th, nil)
				assert.Equal(t, models.OutcomeError, v.Outcome)
				assert.Equal(t, models.LabelRetailWrong, v.CategoryLabel)
				assert.Equal(t, models.MCATBusiness, v.MCATType)
				assert.Equal(t, models.PathBusinessOverride, v.Path)
				assert.Contains(t, v.Reason, "override")
			}
		}
	})

	t.Run("marked non-retail passes with empty reason", func(t *testing.T) {
		rec := record(1, "kg", "Non-Retail")
		rec.BusinessCategoryOverride = true

		v := Classify(rec, nil, nil)
		assert.Equal(t, models.OutcomePass, v.Outcome)
		assert.Equal(t, models.LabelNonRetailCorrect, v.CategoryLabel)
		assert.Empty(t, v.Reason)
		assert.Equal(t, models.ThresholdDisplayNA, v.ThresholdDisplay)
		assert.False(t, v.ThresholdAvailable)
	})
}

func TestClassify_MissingThreshold(t *testing.T) {
	v := Classify(record(10, "kg", "Retail - Indian"), nil, nil)

	assert.Equal(t, models.OutcomeError, v.Outcome)
	assert.Equal(t, models.LabelThresholdUnavailable, v.CategoryLabel)
	assert.Equal(t, "NA", v.ThresholdDisplay)
	assert.False(t, v.ThresholdAvailable)
	assert.Equal(t, models.PathThresholdMissing, v.Path)
	assert.Contains(t, v.Reason, "C1")
}

func TestClassify_MalformedQuantityIsZero(t *testing.T) {
	var rec models.RawRecord
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "R9", "categoryId": "C1", "quantity": "lots",
		"quantityUnit": "kg", "segmentLabel": "Non-Retail"
	}`), &rec))

	v := Classify(rec, kgThreshold(50), nil)
	assert.Equal(t, 0.0, v.ConvertedQuantity)
	assert.Equal(t, models.LabelNonRetailWrong, v.CategoryLabel)
	assert.Contains(t, v.Reason, "lots")
}

func TestClassify_IsPure(t *testing.T) {
	rec := record(75, "kg", "Retail - Foreign")
	th := kgThreshold(50)

	first := Classify(rec, th, nil)
	second := Classify(rec, th, nil)
	assert.Equal(t, first, second)
}

func TestClassify_UsesSuppliedConverter(t *testing.T) {
	calls := 0
	conv := func(value float64, from, to string) float64 {
		calls++
		assert.Equal(t, "kg", from)
		assert.Equal(t, "kg", to)
		return value * 100
	}
	v := Classify(record(1, "kg", "Retail - Indian"), kgThreshold(50), conv)
	assert.Equal(t, 1, calls)
	assert.Equal(t, models.LabelRetailWrong, v.CategoryLabel)
}
