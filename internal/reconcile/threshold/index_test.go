package threshold

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indiamart-audit/internal/models"
	"indiamart-audit/internal/reconcile/units"
)

func entry(cat, unit string, cutoff float64) models.ThresholdEntry {
	return models.ThresholdEntry{
		CategoryID:     cat,
		CategoryName:   "Category " + cat,
		CutoffQuantity: models.NewQuantity(cutoff),
		CutoffUnit:     unit,
	}
}

func createTestIndex() *Index {
	return NewIndex([]models.ThresholdEntry{
		entry("C1", "Kg", 50),
		entry("C1", "piece", 100),
		entry("C2", "litre", 20),
		entry("C2", "ml", 5000),
		entry("C3", "bag", 10),
		entry("C3", "carton", 4),
	}, units.NewNormalizer(16))
}

func TestNewIndex_KeysEntriesUnderOwnCategory(t *testing.T) {
	idx := createTestIndex()

	assert.Equal(t, 3, idx.Len())
	for _, cat := range []string{"C1", "C2", "C3"} {
		for _, e := range idx.Entries(cat) {
			assert.Equal(t, cat, e.CategoryID)
		}
	}

	c1 := idx.Entries("C1")
	require.Len(t, c1, 2)
	assert.Equal(t, "kg", c1[0].Unit)
	assert.Equal(t, units.Weight, c1[0].Dimension)
	assert.True(t, c1[0].HasDimension)
	assert.Equal(t, units.Count, c1[1].Dimension)
}

func TestResolve(t *testing.T) {
	idx := createTestIndex()

	tests := []struct {
		name       string
		category   string
		unit       string
		wantUnit   string
		wantCutoff float64
		wantFound  bool
	}{
		{"exact unit", "C1", "KG", "kg", 50, true},
		{"exact second entry", "C1", "Piece", "piece", 100, true},
		{"dimension fallback tonne to kg", "C1", "tonne", "kg", 50, true},
		{"dimension fallback dozen to piece", "C1", "dozen", "piece", 100, true},
		{"exact preferred over dimension", "C2", "ml", "ml", 5000, true},
		{"dimension picks first volume entry", "C2", "gallon", "litre", 20, true},
		{"first entry when no dimension matches", "C1", "litre", "kg", 50, true},
		{"first entry for unknown record unit", "C2", "sack", "litre", 20, true},
		{"unknown units exact match", "C3", "Carton", "carton", 4, true},
		{"category id is trimmed", " C2 ", "l", "litre", 20, true},
		{"missing category", "C9", "kg", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := idx.Resolve(tt.category, tt.unit)
			assert.Equal(t, tt.wantFound, found)
			if !tt.wantFound {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantUnit, got.Unit)
			assert.Equal(t, tt.wantCutoff, got.CutoffQuantity.Value)
		})
	}
}

func TestResolve_NilNormalizer(t *testing.T) {
	idx := NewIndex([]models.ThresholdEntry{entry("A", "kg", 1)}, nil)
	got, ok := idx.Resolve("A", "g")
	require.True(t, ok)
	assert.Equal(t, "kg", got.Unit)
}

func TestResolve_ConcurrentReaders(t *testing.T) {
	idx := createTestIndex()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, ok := idx.Resolve("C1", "tonne")
			assert.True(t, ok)
			assert.Equal(t, "kg", got.Unit)
		}()
	}
	wg.Wait()
}
