// internal/workers/audit/run-audit/models.go
package runaudit

import (
	"indiamart-audit/internal/audit"
	"indiamart-audit/internal/models"
)

type Input struct {
	SessionID   string                  `json:"sessionId"`
	AuditPrompt string                  `json:"auditPrompt"`
	RawRecords  []models.RawRecord      `json:"rawRecords"`
	Thresholds  []models.ThresholdEntry `json:"thresholds"`
}

// Output is merged into the process variables. Results stay in the store;
// only the roll-up travels with the process.
type Output struct {
	SessionID        string         `json:"sessionId"`
	AuditStatus      string         `json:"auditStatus"`
	TotalRecords     int            `json:"totalRecords"`
	PassCount        int            `json:"passCount"`
	ErrorCount       int            `json:"errorCount"`
	AdvisoryFailures int            `json:"advisoryFailures"`
	AuditSummary     *audit.Summary `json:"auditSummary"`
}
