package audit

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "indiamart-audit/internal/common/errors"
	"indiamart-audit/internal/common/validation"
	"indiamart-audit/internal/models"
)

// Request is one audit run.
type Request struct {
	SessionID   string                  `json:"sessionId"`
	AuditPrompt string                  `json:"auditPrompt"`
	Records     []models.RawRecord      `json:"rawRecords"`
	Thresholds  []models.ThresholdEntry `json:"thresholds"`
}

// Validate collects every problem with the request into one input validation
// error, or returns nil.
func (r *Request) Validate() error {
	var problems []string
	if strings.TrimSpace(r.SessionID) == "" {
		problems = append(problems, "sessionId is required")
	}
	if strings.TrimSpace(r.AuditPrompt) == "" {
		problems = append(problems, "auditPrompt is required")
	}
	if len(r.Records) == 0 {
		problems = append(problems, "rawRecords must not be empty")
	}
	if len(r.Thresholds) == 0 {
		problems = append(problems, "thresholds must not be empty")
	}

	seen := make(map[string]int, len(r.Records))
	for i, rec := range r.Records {
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			problems = append(problems, fmt.Sprintf("rawRecords[%d].id is required", i))
			continue
		}
		if first, ok := seen[id]; ok {
			problems = append(problems, fmt.Sprintf("rawRecords[%d].id %q duplicates rawRecords[%d]", i, id, first))
			continue
		}
		seen[id] = i
	}

	if len(problems) > 0 {
		return apperrors.NewInputValidationError(problems)
	}
	return nil
}

// DecodeRequest checks a JSON run request against the request schema and
// decodes it. Schema problems come back as one input validation error.
func DecodeRequest(data []byte) (*Request, error) {
	res := validation.RunAuditRequest.ValidateBytes(data)
	if !res.Valid {
		return nil, apperrors.NewInputValidationError(res.GetErrorMessages())
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, apperrors.NewInputValidationError([]string{fmt.Sprintf("decode request: %v", err)})
	}
	return &req, nil
}
