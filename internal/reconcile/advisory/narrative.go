package advisory

import (
	"fmt"
	"strings"

	"indiamart-audit/internal/models"
)

const precedenceStatement = "The deterministic verdict takes precedence; the advisory assessment does not change the audit outcome."

// Narrative composes the rationale stored with each result.
func Narrative(v models.ClassificationVerdict, a models.AdvisoryAssessment) string {
	parts := []string{
		"Verdict path: " + pathDescription(v),
		fmt.Sprintf("Deterministic verdict: %s, %s (MCAT type %s)", v.Outcome, v.CategoryLabel, v.MCATType),
	}
	if v.Reason != "" {
		parts = append(parts, "Reason: "+v.Reason)
	}

	if a.Failed() {
		parts = append(parts, "Advisory assessment unavailable: "+a.Reasoning)
	} else {
		line := "Advisory assessment: " + string(a.SuggestedType)
		if a.SuggestedThreshold != "" {
			line += " (threshold considered: " + a.SuggestedThreshold + ")"
		}
		if a.Reasoning != "" {
			line += ". " + a.Reasoning
		}
		parts = append(parts, line)
		if sig := signalsLine(a.Signals); sig != "" {
			parts = append(parts, "Advisory signals: "+sig)
		}
		if a.ConflictNotes != "" {
			parts = append(parts, "Conflict notes: "+a.ConflictNotes)
		}
	}

	parts = append(parts, precedenceStatement)
	return strings.Join(parts, "\n")
}

func pathDescription(v models.ClassificationVerdict) string {
	switch v.Path {
	case models.PathBusinessOverride:
		return "business category override"
	case models.PathThresholdMissing:
		return "no threshold available for the category"
	case models.PathQuantityComparison:
		return "quantity compared with threshold " + v.ThresholdDisplay
	default:
		return "unknown"
	}
}

func signalsLine(s *models.EvaluationSignals) string {
	if s.IsEmpty() {
		return ""
	}
	var out []string
	add := func(name, val string) {
		if val != "" {
			out = append(out, name+"="+val)
		}
	}
	add("threshold", s.Threshold)
	add("order value", s.OrderValue)
	add("buyer intent", s.BuyerIntent)
	add("product type", s.ProductType)
	return strings.Join(out, "; ")
}
