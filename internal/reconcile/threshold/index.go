package threshold

import (
	"strings"

	"indiamart-audit/internal/models"
	"indiamart-audit/internal/reconcile/units"
)

// Entry is a threshold row annotated with its normalized unit and dimension.
type Entry struct {
	models.ThresholdEntry
	Unit      string
	Dimension units.Dimension
	// HasDimension is false when the cutoff unit is not a recognized unit.
	HasDimension bool
}

// Index maps a category ID to its threshold entries in insertion order. It is
// built once per run and never mutated, so concurrent reads are safe.
type Index struct {
	byCategory map[string][]Entry
	normalizer *units.Normalizer
}

// NewIndex builds an Index. A nil normalizer gets a private one.
func NewIndex(entries []models.ThresholdEntry, normalizer *units.Normalizer) *Index {
	if normalizer == nil {
		normalizer = units.NewNormalizer(units.DefaultCacheSize)
	}
	idx := &Index{
		byCategory: make(map[string][]Entry),
		normalizer: normalizer,
	}
	for _, e := range entries {
		key := categoryKey(e.CategoryID)
		dim, ok := normalizer.Classify(e.CutoffUnit)
		idx.byCategory[key] = append(idx.byCategory[key], Entry{
			ThresholdEntry: e,
			Unit:           normalizer.Normalize(e.CutoffUnit),
			Dimension:      dim,
			HasDimension:   ok,
		})
	}
	return idx
}

// Entries returns the entries stored for a category.
func (i *Index) Entries(categoryID string) []Entry {
	return i.byCategory[categoryKey(categoryID)]
}

// Len reports the number of categories.
func (i *Index) Len() int {
	return len(i.byCategory)
}

// Resolve picks the best threshold for a record unit. First match wins:
//  1. an entry with the same normalized unit
//  2. the first entry sharing the record unit's dimension
//  3. the first entry of the category
//
// It returns false only when the category has no entries.
func (i *Index) Resolve(categoryID, recordUnit string) (*Entry, bool) {
	entries := i.byCategory[categoryKey(categoryID)]
	if len(entries) == 0 {
		return nil, false
	}

	unit := i.normalizer.Normalize(recordUnit)
	for k := range entries {
		if entries[k].Unit == unit {
			return &entries[k], true
		}
	}

	if dim, ok := i.normalizer.Classify(recordUnit); ok {
		for k := range entries {
			if entries[k].HasDimension && entries[k].Dimension == dim {
				return &entries[k], true
			}
		}
	}

	return &entries[0], true
}

func categoryKey(id string) string {
	return strings.TrimSpace(id)
}
