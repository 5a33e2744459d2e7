package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"indiamart-audit/internal/common/database"
	"indiamart-audit/internal/common/logger"
	"indiamart-audit/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS audit_results (
	id                   UUID PRIMARY KEY,
	session_id           TEXT NOT NULL,
	record_id            TEXT NOT NULL,
	category_id          TEXT NOT NULL,
	category_name        TEXT NOT NULL DEFAULT '',
	quantity             DOUBLE PRECISION NOT NULL DEFAULT 0,
	quantity_raw         TEXT NOT NULL DEFAULT '',
	quantity_unit        TEXT NOT NULL DEFAULT '',
	probable_order_value TEXT NOT NULL DEFAULT '',
	segment_label        TEXT NOT NULL DEFAULT '',
	outcome              TEXT NOT NULL,
	category_label       TEXT NOT NULL,
	reason               TEXT NOT NULL DEFAULT '',
	mcat_type            TEXT NOT NULL,
	threshold_available  BOOLEAN NOT NULL,
	threshold_display    TEXT NOT NULL,
	verdict_path         TEXT NOT NULL,
	converted_quantity   DOUBLE PRECISION NOT NULL DEFAULT 0,
	suggested_type       TEXT NOT NULL,
	suggested_threshold  TEXT NOT NULL DEFAULT '',
	advisory_reasoning   TEXT NOT NULL DEFAULT '',
	advisory_signals     JSONB,
	conflict_notes       TEXT NOT NULL DEFAULT '',
	narrative            TEXT NOT NULL,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (session_id, record_id)
)`

// Rows are written once; a repeated (session_id, record_id) is left untouched.
const insertResultSQL = `
INSERT INTO audit_results (
	id, session_id, record_id, category_id, category_name,
	quantity, quantity_raw, quantity_unit, probable_order_value, segment_label,
	outcome, category_label, reason, mcat_type, threshold_available,
	threshold_display, verdict_path, converted_quantity,
	suggested_type, suggested_threshold, advisory_reasoning, advisory_signals, conflict_notes,
	narrative, created_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
	$16, $17, $18, $19, $20, $21, $22, $23, $24, $25
)
ON CONFLICT (session_id, record_id) DO NOTHING`

const selectResultsSQL = `
SELECT id, session_id, record_id, category_id, category_name,
	quantity, quantity_raw, quantity_unit, probable_order_value, segment_label,
	outcome, category_label, reason, mcat_type, threshold_available,
	threshold_display, verdict_path, converted_quantity,
	suggested_type, suggested_threshold, advisory_reasoning, advisory_signals, conflict_notes,
	narrative, created_at
FROM audit_results
WHERE session_id = $1
ORDER BY created_at, record_id`

// ResultStore persists audit results in postgres.
type ResultStore struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func NewResultStore(db *database.PostgresClient, log logger.Logger) *ResultStore {
	return &ResultStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "result-store"}),
	}
}

// EnsureSchema creates the results table when it does not exist.
func (s *ResultStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create audit_results: %w", err)
	}
	return nil
}

// SaveResults writes a batch in one transaction.
func (s *ResultStore) SaveResults(ctx context.Context, results []models.AuditResult) error {
	if len(results) == 0 {
		return nil
	}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertResultSQL)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range results {
			signals, err := signalsJSON(r.Advisory.Signals)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx,
				r.ID, r.SessionID, r.RecordID, r.CategoryID, r.CategoryName,
				r.Quantity.Value, r.Quantity.Raw, r.QuantityUnit, r.ProbableOrderValue, r.SegmentLabel,
				string(r.Verdict.Outcome), r.Verdict.CategoryLabel, r.Verdict.Reason, string(r.Verdict.MCATType), r.Verdict.ThresholdAvailable,
				r.Verdict.ThresholdDisplay, string(r.Verdict.Path), r.Verdict.ConvertedQuantity,
				string(r.Advisory.SuggestedType), r.Advisory.SuggestedThreshold, r.Advisory.Reasoning, signals, r.Advisory.ConflictNotes,
				r.Narrative, r.CreatedAt,
			); err != nil {
				return fmt.Errorf("insert result %s: %w", r.RecordID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("results saved", map[string]interface{}{
		"sessionId": results[0].SessionID,
		"count":     len(results),
	})
	return nil
}

// ListResults reads back every result of a session.
func (s *ResultStore) ListResults(ctx context.Context, sessionID string) ([]models.AuditResult, error) {
	rows, err := s.db.Query(ctx, selectResultsSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []models.AuditResult
	for rows.Next() {
		var (
			r                              models.AuditResult
			outcome, mcat, path, suggested string
			signals                        []byte
		)
		if err := rows.Scan(
			&r.ID, &r.SessionID, &r.RecordID, &r.CategoryID, &r.CategoryName,
			&r.Quantity.Value, &r.Quantity.Raw, &r.QuantityUnit, &r.ProbableOrderValue, &r.SegmentLabel,
			&outcome, &r.Verdict.CategoryLabel, &r.Verdict.Reason, &mcat, &r.Verdict.ThresholdAvailable,
			&r.Verdict.ThresholdDisplay, &path, &r.Verdict.ConvertedQuantity,
			&suggested, &r.Advisory.SuggestedThreshold, &r.Advisory.Reasoning, &signals, &r.Advisory.ConflictNotes,
			&r.Narrative, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Verdict.Outcome = models.Outcome(outcome)
		r.Verdict.MCATType = models.MCATType(mcat)
		r.Verdict.Path = models.VerdictPath(path)
		r.Advisory.SuggestedType = models.SuggestedType(suggested)
		if len(signals) > 0 {
			var sig models.EvaluationSignals
			if err := json.Unmarshal(signals, &sig); err != nil {
				return nil, fmt.Errorf("decode signals for %s: %w", r.RecordID, err)
			}
			r.Advisory.Signals = &sig
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

func signalsJSON(s *models.EvaluationSignals) (interface{}, error) {
	if s.IsEmpty() {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode signals: %w", err)
	}
	return b, nil
}
