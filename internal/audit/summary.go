package audit

import (
	"time"

	"indiamart-audit/internal/models"
)

// Summary is the per-run roll-up returned to workflow callers, notifications and the CLI.
type Summary struct {
	SessionID        string               `json:"sessionId"`
	Status           models.SessionStatus `json:"status"`
	TotalRecords     int                  `json:"totalRecords"`
	Passed           int                  `json:"passed"`
	Errors           int                  `json:"errors"`
	ByLabel          map[string]int       `json:"byLabel"`
	BySuggestedType  map[string]int       `json:"bySuggestedType"`
	AdvisoryFailures int                  `json:"advisoryFailures"`
	Batches          int                  `json:"batches"`
	DurationMs       int64                `json:"durationMs"`
	TraceID          string               `json:"traceId,omitempty"`
	Error            string               `json:"error,omitempty"`
}

// Summarize counts results by outcome, label and advisory type.
func Summarize(sessionID string, results []models.AuditResult) *Summary {
	s := &Summary{
		SessionID:       sessionID,
		Status:          models.SessionCompleted,
		TotalRecords:    len(results),
		ByLabel:         make(map[string]int),
		BySuggestedType: make(map[string]int),
	}
	for _, r := range results {
		switch r.Verdict.Outcome {
		case models.OutcomePass:
			s.Passed++
		case models.OutcomeError:
			s.Errors++
		}
		s.ByLabel[r.Verdict.CategoryLabel]++
		s.BySuggestedType[string(r.Advisory.SuggestedType)]++
		if r.Advisory.Failed() {
			s.AdvisoryFailures++
		}
	}
	return s
}

func (s *Summary) setDuration(d time.Duration) {
	s.DurationMs = d.Milliseconds()
}
