package models

import (
	"encoding/json"
	"time"
)

// AuditResult is the persisted row for one record in one session.
type AuditResult struct {
	ID                 string                `json:"id" db:"id"`
	SessionID          string                `json:"sessionId" db:"session_id"`
	RecordID           string                `json:"recordId" db:"record_id"`
	CategoryID         string                `json:"categoryId" db:"category_id"`
	CategoryName       string                `json:"categoryName" db:"category_name"`
	Quantity           Quantity              `json:"quantity" db:"quantity"`
	QuantityUnit       string                `json:"quantityUnit" db:"quantity_unit"`
	ProbableOrderValue string                `json:"probableOrderValue" db:"probable_order_value"`
	SegmentLabel       string                `json:"segmentLabel" db:"segment_label"`
	Verdict            ClassificationVerdict `json:"verdict"`
	Advisory           AdvisoryAssessment    `json:"advisory"`
	Narrative          string                `json:"narrative" db:"narrative"`
	CreatedAt          time.Time             `json:"createdAt" db:"created_at"`
}

// MarshalJSON adds quantityRaw next to quantity when the supplied text did not
// survive parsing as-is.
func (r AuditResult) MarshalJSON() ([]byte, error) {
	type alias AuditResult
	return json.Marshal(struct {
		alias
		QuantityRaw string `json:"quantityRaw,omitempty"`
	}{alias: alias(r), QuantityRaw: r.Quantity.SuppliedText()})
}

// SessionStatus is the lifecycle state of an audit run.
type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

// AuditSession is the tracked state of one run.
type AuditSession struct {
	ID               string        `json:"id"`
	Status           SessionStatus `json:"status"`
	TotalRecords     int           `json:"totalRecords"`
	ProcessedRecords int           `json:"processedRecords"`
	AdvisoryFailures int           `json:"advisoryFailures"`
	StartedAt        time.Time     `json:"startedAt"`
	FinishedAt       *time.Time    `json:"finishedAt,omitempty"`
	Error            string        `json:"error,omitempty"`
}
