// Package classifier holds the deterministic retail/non-retail decision table.
package classifier

import (
	"fmt"
	"strings"

	"indiamart-audit/internal/models"
	"indiamart-audit/internal/reconcile/units"
)

// Converter converts a quantity between units. units.Convert is the default.
type Converter func(value float64, from, to string) float64

// IsMarkedRetail reports whether a segment label is one of the retail segments.
func IsMarkedRetail(segment string) bool {
	s := strings.ToLower(strings.TrimSpace(segment))
	return s == strings.ToLower(models.SegmentRetailIndian) ||
		s == strings.ToLower(models.SegmentRetailForeign)
}

// Classify produces the verdict for a record and its resolved threshold, which
// is nil when none could be resolved. It has no side effects.
func Classify(rec models.RawRecord, th *models.ThresholdEntry, convert Converter) models.ClassificationVerdict {
	if convert == nil {
		convert = units.Convert
	}

	v := models.ClassificationVerdict{
		MCATType:         models.MCATStandard,
		ThresholdDisplay: models.ThresholdDisplayNA,
	}
	if th != nil {
		v.ThresholdAvailable = true
		v.ThresholdDisplay = th.Display()
	}
	marked := IsMarkedRetail(rec.SegmentLabel)

	if rec.BusinessCategoryOverride {
		v.MCATType = models.MCATBusiness
		v.Path = models.PathBusinessOverride
		if marked {
			v.Outcome = models.OutcomeError
			v.CategoryLabel = models.LabelRetailWrong
			v.Reason = fmt.Sprintf(
				"Business category override is set, so the lead must be Non-Retail, but it is marked %q",
				strings.TrimSpace(rec.SegmentLabel))
			return v
		}
		v.Outcome = models.OutcomePass
		v.CategoryLabel = models.LabelNonRetailCorrect
		return v
	}

	if th == nil {
		v.Path = models.PathThresholdMissing
		v.Outcome = models.OutcomeError
		v.CategoryLabel = models.LabelThresholdUnavailable
		v.Reason = fmt.Sprintf(
			"No threshold is available for category %s; the audit cannot proceed on quantity",
			categoryRef(rec))
		return v
	}

	v.Path = models.PathQuantityComparison
	v.ConvertedQuantity = convert(rec.Quantity.Value, rec.QuantityUnit, th.CutoffUnit)
	shouldBeRetail := v.ConvertedQuantity <= th.CutoffQuantity.Value

	switch {
	case shouldBeRetail && marked:
		v.Outcome = models.OutcomePass
		v.CategoryLabel = models.LabelRetailCorrect
	case !shouldBeRetail && !marked:
		v.Outcome = models.OutcomePass
		v.CategoryLabel = models.LabelNonRetailCorrect
	case shouldBeRetail && !marked:
		v.Outcome = models.OutcomeError
		v.CategoryLabel = models.LabelNonRetailWrong
	default:
		v.Outcome = models.OutcomeError
		v.CategoryLabel = models.LabelRetailWrong
	}
	v.Reason = quantityReason(rec, th, v.ConvertedQuantity, shouldBeRetail, marked)
	return v
}

func quantityReason(rec models.RawRecord, th *models.ThresholdEntry, converted float64, shouldBeRetail, marked bool) string {
	cmp, expected := "exceeds", "Non-Retail"
	if shouldBeRetail {
		cmp, expected = "is within", "Retail"
	}
	actual := "Non-Retail"
	if marked {
		actual = "Retail"
	}
	return fmt.Sprintf(
		"Quantity %s %s (converted: %.2f %s) %s the threshold of %s %s; expected %s, marked %s",
		rec.Quantity.Literal(), strings.TrimSpace(rec.QuantityUnit),
		converted, strings.TrimSpace(th.CutoffUnit),
		cmp, models.FormatNumber(th.CutoffQuantity.Value), strings.TrimSpace(th.CutoffUnit),
		expected, actual)
}

func categoryRef(rec models.RawRecord) string {
	name := strings.TrimSpace(rec.CategoryName)
	if name == "" {
		return rec.CategoryID
	}
	return fmt.Sprintf("%s (%s)", rec.CategoryID, name)
}
