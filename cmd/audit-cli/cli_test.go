package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indiamart-audit/internal/audit"
	apperrors "indiamart-audit/internal/common/errors"
	"indiamart-audit/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildRequest(t *testing.T) {
	dir := t.TempDir()
	records := writeFile(t, dir, "records.json",
		`[{"id":"R1","categoryId":"C1","quantity":"2","quantityUnit":"tonne","segmentLabel":"Retail - Indian"}]`)
	thresholds := writeFile(t, dir, "thresholds.json",
		`[{"categoryId":"C1","cutoffQuantity":50,"cutoffUnit":"kg"}]`)

	req, err := buildRequest("s-1", "Check segments.", records, thresholds)
	require.NoError(t, err)
	assert.Equal(t, "s-1", req.SessionID)
	require.Len(t, req.Records, 1)
	assert.Equal(t, "tonne", req.Records[0].QuantityUnit)
	require.Len(t, req.Thresholds, 1)
}

func TestBuildRequest_Errors(t *testing.T) {
	dir := t.TempDir()
	thresholds := writeFile(t, dir, "thresholds.json", `[{"categoryId":"C1","cutoffQuantity":50}]`)

	_, err := buildRequest("s-1", "p", filepath.Join(dir, "missing.json"), thresholds)
	assert.ErrorContains(t, err, "read")

	notArray := writeFile(t, dir, "object.json", `{"id":"R1"}`)
	_, err = buildRequest("s-1", "p", notArray, thresholds)
	assert.ErrorContains(t, err, "must hold a JSON array")

	dupes := writeFile(t, dir, "dupes.json", `[{"id":"R1","categoryId":"C1"},{"id":"R1","categoryId":"C1"}]`)
	_, err = buildRequest("s-1", "p", dupes, thresholds)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInputValidation))

	ok := writeFile(t, dir, "ok.json", `[{"id":"R1","categoryId":"C1"}]`)
	_, err = buildRequest("s-1", "", ok, thresholds)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInputValidation))
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &audit.Summary{
		SessionID:    "s-1",
		Status:       models.SessionCompleted,
		TotalRecords: 2,
		Passed:       1,
		Errors:       1,
		ByLabel: map[string]int{
			models.LabelRetailCorrect: 1,
			models.LabelRetailWrong:   1,
		},
		DurationMs: 1200,
	})

	out := buf.String()
	assert.Contains(t, out, "PASS / ERROR:      1 / 1")
	assert.Contains(t, out, "Duration:          1.2s")
	assert.Contains(t, out, models.LabelRetailWrong)
}

func TestPrintResultsAndSession(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, []models.AuditResult{{
		RecordID:     "R1",
		CategoryID:   "C1",
		Quantity:     models.NewQuantity(2),
		QuantityUnit: "tonne",
		Verdict: models.ClassificationVerdict{
			Outcome:          models.OutcomeError,
			CategoryLabel:    models.LabelRetailWrong,
			ThresholdDisplay: "50 kg",
		},
		Advisory: models.AdvisoryAssessment{SuggestedType: models.SuggestedNonRetail},
	}})
	assert.Contains(t, buf.String(), "R1")
	assert.Contains(t, buf.String(), "2 tonne")
	assert.Contains(t, buf.String(), "Non-Retail")

	buf.Reset()
	finished := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	printSession(&buf, &models.AuditSession{
		ID:               "s-1",
		Status:           models.SessionFailed,
		TotalRecords:     40,
		ProcessedRecords: 20,
		StartedAt:        finished.Add(-time.Minute),
		FinishedAt:       &finished,
		Error:            "db down",
	})
	assert.Contains(t, buf.String(), "Processed:         20 / 40")
	assert.Contains(t, buf.String(), "Error:             db down")
}
