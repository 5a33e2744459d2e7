package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indiamart-audit/internal/common/database"
	"indiamart-audit/internal/common/logger"
	"indiamart-audit/internal/models"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func sampleResult(recordID string) models.AuditResult {
	return models.AuditResult{
		ID:           "id-" + recordID,
		SessionID:    "s-1",
		RecordID:     recordID,
		CategoryID:   "C1",
		CategoryName: "Cotton Yarn",
		Quantity:     models.ParseQuantity("2"),
		QuantityUnit: "tonne",
		SegmentLabel: "Retail - Indian",
		Verdict: models.ClassificationVerdict{
			Outcome:            models.OutcomeError,
			CategoryLabel:      models.LabelRetailWrong,
			Reason:             "too much",
			MCATType:           models.MCATStandard,
			ThresholdAvailable: true,
			ThresholdDisplay:   "50 kg",
			Path:               models.PathQuantityComparison,
			ConvertedQuantity:  2000,
		},
		Advisory: models.AdvisoryAssessment{
			SuggestedType: models.SuggestedNonRetail,
			Reasoning:     "bulk",
			Signals:       &models.EvaluationSignals{BuyerIntent: "business"},
		},
		Narrative: "narrative",
		CreatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveResults(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewResultStore(database.NewPostgresFromDB(db), logger.NewTestLogger(t))

	results := []models.AuditResult{sampleResult("R1"), sampleResult("R2")}
	results[1].Advisory.Signals = nil

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO audit_results")
	for _, r := range results {
		prep.ExpectExec().
			WithArgs(
				r.ID, "s-1", r.RecordID, "C1", "Cotton Yarn",
				2.0, "2", "tonne", "", "Retail - Indian",
				"ERROR", models.LabelRetailWrong, "too much", "Standard", true,
				"50 kg", "quantity_comparison", 2000.0,
				"Non-Retail", "", "bulk", sqlmock.AnyArg(), "",
				"narrative", r.CreatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, store.SaveResults(context.Background(), results))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveResults_RollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewResultStore(database.NewPostgresFromDB(db), logger.NewNoOpLogger())

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO audit_results")
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.SaveResults(context.Background(), []models.AuditResult{sampleResult("R1")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "R1")
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveResults_Empty(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewResultStore(database.NewPostgresFromDB(db), logger.NewNoOpLogger())

	assert.NoError(t, store.SaveResults(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewResultStore(database.NewPostgresFromDB(db), logger.NewNoOpLogger())

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS audit_results").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

var resultColumns = []string{
	"id", "session_id", "record_id", "category_id", "category_name",
	"quantity", "quantity_raw", "quantity_unit", "probable_order_value", "segment_label",
	"outcome", "category_label", "reason", "mcat_type", "threshold_available",
	"threshold_display", "verdict_path", "converted_quantity",
	"suggested_type", "suggested_threshold", "advisory_reasoning", "advisory_signals", "conflict_notes",
	"narrative", "created_at",
}

func TestListResults(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewResultStore(database.NewPostgresFromDB(db), logger.NewNoOpLogger())

	created := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(resultColumns).
		AddRow("id-1", "s-1", "R1", "C1", "Cotton Yarn",
			2.0, "2", "tonne", "", "Retail - Indian",
			"ERROR", models.LabelRetailWrong, "too much", "Standard", true,
			"50 kg", "quantity_comparison", 2000.0,
			"Non-Retail", "", "bulk", []byte(`{"buyerIntent":"business"}`), "",
			"narrative", created).
		AddRow("id-2", "s-1", "R2", "C9", "",
			1.0, "", "kg", "", "Non-Retail",
			"ERROR", models.LabelThresholdUnavailable, "no threshold", "Standard", false,
			"NA", "threshold_missing", 0.0,
			"Error", "", "advisory call failed", nil, "",
			"narrative", created)

	mock.ExpectQuery("SELECT (.+) FROM audit_results").WithArgs("s-1").WillReturnRows(rows)

	got, err := store.ListResults(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "R1", got[0].RecordID)
	assert.Equal(t, models.OutcomeError, got[0].Verdict.Outcome)
	assert.Equal(t, models.PathQuantityComparison, got[0].Verdict.Path)
	assert.Equal(t, models.SuggestedNonRetail, got[0].Advisory.SuggestedType)
	require.NotNil(t, got[0].Advisory.Signals)
	assert.Equal(t, "business", got[0].Advisory.Signals.BuyerIntent)
	assert.Equal(t, "2", got[0].Quantity.Literal())

	assert.Nil(t, got[1].Advisory.Signals)
	assert.Equal(t, models.SuggestedError, got[1].Advisory.SuggestedType)
	assert.False(t, got[1].Verdict.ThresholdAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListResults_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewResultStore(database.NewPostgresFromDB(db), logger.NewNoOpLogger())

	mock.ExpectQuery("SELECT (.+) FROM audit_results").WillReturnError(errors.New("connection lost"))
	_, err := store.ListResults(context.Background(), "s-1")
	assert.ErrorContains(t, err, "connection lost")
}
