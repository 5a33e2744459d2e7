package models

// Outcome is the deterministic audit result for a record.
type Outcome string

const (
	OutcomePass  Outcome = "PASS"
	OutcomeError Outcome = "ERROR"
)

// Category labels produced by the classifier.
const (
	LabelRetailCorrect        = "Retail Correctly Marked"
	LabelNonRetailCorrect     = "Non-Retail Correctly Marked"
	LabelRetailWrong          = "Retail Wrongly Marked"
	LabelNonRetailWrong       = "Non-Retail Wrongly Marked"
	LabelThresholdUnavailable = "Threshold Not Available"
)

// MCATType tells whether the business-category override applied.
type MCATType string

const (
	MCATStandard MCATType = "Standard"
	MCATBusiness MCATType = "Business"
)

// VerdictPath names the decision-table branch that produced a verdict.
type VerdictPath string

const (
	PathBusinessOverride   VerdictPath = "business_override"
	PathThresholdMissing   VerdictPath = "threshold_missing"
	PathQuantityComparison VerdictPath = "quantity_comparison"
)

// Segment labels that count as retail.
const (
	SegmentRetailIndian  = "Retail - Indian"
	SegmentRetailForeign = "Retail - Foreign"
)

const ThresholdDisplayNA = "NA"

type ClassificationVerdict struct {
	Outcome            Outcome     `json:"outcome"`
	CategoryLabel      string      `json:"categoryLabel"`
	Reason             string      `json:"reason"`
	MCATType           MCATType    `json:"mcatType"`
	ThresholdAvailable bool        `json:"thresholdAvailable"`
	ThresholdDisplay   string      `json:"thresholdDisplay"`
	Path               VerdictPath `json:"path"`
	// ConvertedQuantity is only meaningful on the quantity comparison path.
	ConvertedQuantity float64 `json:"convertedQuantity"`
}
