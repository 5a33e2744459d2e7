package models

import "strings"

// ThresholdEntry is one reference cutoff for a merchandising category (MCAT).
type ThresholdEntry struct {
	CategoryID     string   `json:"categoryId"`
	CategoryName   string   `json:"categoryName"`
	CutoffQuantity Quantity `json:"cutoffQuantity"`
	CutoffUnit     string   `json:"cutoffUnit"`
}

// Display renders the cutoff as "<value> <unit>".
func (t ThresholdEntry) Display() string {
	unit := strings.TrimSpace(t.CutoffUnit)
	if unit == "" {
		return FormatNumber(t.CutoffQuantity.Value)
	}
	return FormatNumber(t.CutoffQuantity.Value) + " " + unit
}
