package models

// SuggestedType is the LLM's non-binding opinion on a record.
type SuggestedType string

const (
	SuggestedRetail    SuggestedType = "Retail"
	SuggestedNonRetail SuggestedType = "Non-Retail"
	SuggestedUnknown   SuggestedType = "Unknown"
	SuggestedError     SuggestedType = "Error"
)

type AdvisoryAssessment struct {
	SuggestedType      SuggestedType      `json:"suggestedType"`
	SuggestedThreshold string             `json:"suggestedThreshold"`
	Reasoning          string             `json:"reasoning"`
	Signals            *EvaluationSignals `json:"signals,omitempty"`
	ConflictNotes      string             `json:"conflictNotes,omitempty"`
}

// EvaluationSignals are the optional sub-assessments the model may return.
type EvaluationSignals struct {
	Threshold   string `json:"threshold,omitempty"`
	OrderValue  string `json:"orderValue,omitempty"`
	BuyerIntent string `json:"buyerIntent,omitempty"`
	ProductType string `json:"productType,omitempty"`
}

func (s *EvaluationSignals) IsEmpty() bool {
	return s == nil || (s.Threshold == "" && s.OrderValue == "" && s.BuyerIntent == "" && s.ProductType == "")
}

// Failed reports whether the advisory call degraded to the error variant.
func (a AdvisoryAssessment) Failed() bool {
	return a.SuggestedType == SuggestedError
}
