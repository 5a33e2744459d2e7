package advisory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"indiamart-audit/internal/common/validation"
	"indiamart-audit/internal/models"
)

var ErrReplyInvalid = errors.New("ADVISORY_REPLY_INVALID")

type reply struct {
	BLType            string          `json:"bl_type"`
	ThresholdValue    json.RawMessage `json:"threshold_value"`
	Reasoning         *string         `json:"reasoning"`
	EvaluationSignals *struct {
		Threshold   *string `json:"threshold"`
		OrderValue  *string `json:"order_value"`
		BuyerIntent *string `json:"buyer_intent"`
		ProductType *string `json:"product_type"`
	} `json:"evaluation_signals"`
	ConflictNotes *string `json:"conflict_notes"`
}

// ParseReply turns model output into an assessment. Code fences and prose
// around the JSON object are tolerated. A reply missing bl_type,
// threshold_value or reasoning, or naming a type outside the contract, is
// ErrReplyInvalid.
func ParseReply(content string) (models.AdvisoryAssessment, error) {
	doc := extractJSON(content)
	if doc == "" {
		return models.AdvisoryAssessment{}, fmt.Errorf("%w: no JSON object in reply", ErrReplyInvalid)
	}

	res := validation.AdvisoryReply.ValidateBytes([]byte(doc))
	if !res.Valid {
		return models.AdvisoryAssessment{}, fmt.Errorf("%w: %s", ErrReplyInvalid,
			strings.Join(res.GetErrorMessages(), "; "))
	}

	var r reply
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return models.AdvisoryAssessment{}, fmt.Errorf("%w: %v", ErrReplyInvalid, err)
	}

	suggested, ok := parseType(r.BLType)
	if !ok {
		return models.AdvisoryAssessment{}, fmt.Errorf("%w: unrecognised bl_type %q", ErrReplyInvalid, r.BLType)
	}

	a := models.AdvisoryAssessment{
		SuggestedType:      suggested,
		SuggestedThreshold: thresholdText(r.ThresholdValue),
		Reasoning:          deref(r.Reasoning),
		ConflictNotes:      deref(r.ConflictNotes),
	}
	if s := r.EvaluationSignals; s != nil {
		signals := &models.EvaluationSignals{
			Threshold:   deref(s.Threshold),
			OrderValue:  deref(s.OrderValue),
			BuyerIntent: deref(s.BuyerIntent),
			ProductType: deref(s.ProductType),
		}
		if !signals.IsEmpty() {
			a.Signals = signals
		}
	}
	return a, nil
}

// NormalizeType maps the model's spelling of a type onto the fixed set.
// Spellings outside the contract map to Unknown.
func NormalizeType(blType string) models.SuggestedType {
	t, _ := parseType(blType)
	return t
}

// parseType reports false for spellings the reply contract does not allow.
func parseType(blType string) (models.SuggestedType, bool) {
	key := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(blType)))
	switch key {
	case "retail":
		return models.SuggestedRetail, true
	case "nonretail", "notretail", "wholesale", "bulk":
		return models.SuggestedNonRetail, true
	case "unknown":
		return models.SuggestedUnknown, true
	default:
		return models.SuggestedUnknown, false
	}
}

func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func thresholdText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
