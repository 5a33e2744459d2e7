package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	apperrors "indiamart-audit/internal/common/errors"
	"indiamart-audit/internal/common/logger"
	"indiamart-audit/internal/models"
)

// ResultIndexer makes results searchable for display in Elasticsearch.
type ResultIndexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewResultIndexer(client *elasticsearch.Client, index string, log logger.Logger) *ResultIndexer {
	return &ResultIndexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "result-indexer", "index": index}),
	}
}

func (i *ResultIndexer) Index() string {
	return i.index
}

type indexedResult struct {
	SessionID          string  `json:"sessionId"`
	RecordID           string  `json:"recordId"`
	CategoryID         string  `json:"categoryId"`
	CategoryName       string  `json:"categoryName"`
	Quantity           float64 `json:"quantity"`
	QuantityRaw        string  `json:"quantityRaw,omitempty"`
	QuantityUnit       string  `json:"quantityUnit"`
	SegmentLabel       string  `json:"segmentLabel"`
	Outcome            string  `json:"outcome"`
	CategoryLabel      string  `json:"categoryLabel"`
	MCATType           string  `json:"mcatType"`
	ThresholdDisplay   string  `json:"thresholdDisplay"`
	Reason             string  `json:"reason"`
	SuggestedType      string  `json:"suggestedType"`
	SuggestedThreshold string  `json:"suggestedThreshold"`
	Narrative          string  `json:"narrative"`
	CreatedAt          string  `json:"createdAt"`
}

// ResultIndexMapping keeps identifiers and labels as keywords so results can
// be filtered and aggregated per session, outcome and label.
const ResultIndexMapping = `{
  "mappings": {
    "properties": {
      "sessionId":          {"type": "keyword"},
      "recordId":           {"type": "keyword"},
      "categoryId":         {"type": "keyword"},
      "categoryName":       {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "quantity":           {"type": "double"},
      "quantityRaw":        {"type": "keyword"},
      "quantityUnit":       {"type": "keyword"},
      "segmentLabel":       {"type": "keyword"},
      "outcome":            {"type": "keyword"},
      "categoryLabel":      {"type": "keyword"},
      "mcatType":           {"type": "keyword"},
      "thresholdDisplay":   {"type": "keyword"},
      "reason":             {"type": "text"},
      "suggestedType":      {"type": "keyword"},
      "suggestedThreshold": {"type": "keyword"},
      "narrative":          {"type": "text"},
      "createdAt":          {"type": "date"}
    }
  }
}`

// DocumentID keys a result document by session and record.
func DocumentID(sessionID, recordID string) string {
	return sessionID + ":" + recordID
}

// IndexResults sends all results through the bulk API. Failures come back as
// SEARCH_INDEX_FAILED.
func (i *ResultIndexer) IndexResults(ctx context.Context, results []models.AuditResult) error {
	if len(results) == 0 {
		return nil
	}
	if err := i.bulkIndex(ctx, results); err != nil {
		return apperrors.NewSearchIndexFailedError(i.index, err)
	}
	i.logger.Debug("results indexed", map[string]interface{}{"count": len(results)})
	return nil
}

func (i *ResultIndexer) bulkIndex(ctx context.Context, results []models.AuditResult) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range results {
		meta := map[string]interface{}{
			"index": map[string]interface{}{
				"_index": i.index,
				"_id":    DocumentID(r.SessionID, r.RecordID),
			},
		}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("encode bulk meta: %w", err)
		}
		if err := enc.Encode(indexedResult{
			SessionID:          r.SessionID,
			RecordID:           r.RecordID,
			CategoryID:         r.CategoryID,
			CategoryName:       r.CategoryName,
			Quantity:           r.Quantity.Value,
			QuantityRaw:        r.Quantity.SuppliedText(),
			QuantityUnit:       r.QuantityUnit,
			SegmentLabel:       r.SegmentLabel,
			Outcome:            string(r.Verdict.Outcome),
			CategoryLabel:      r.Verdict.CategoryLabel,
			MCATType:           string(r.Verdict.MCATType),
			ThresholdDisplay:   r.Verdict.ThresholdDisplay,
			Reason:             r.Verdict.Reason,
			SuggestedType:      string(r.Advisory.SuggestedType),
			SuggestedThreshold: r.Advisory.SuggestedThreshold,
			Narrative:          r.Narrative,
			CreatedAt:          r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		}); err != nil {
			return fmt.Errorf("encode bulk doc: %w", err)
		}
	}

	res, err := i.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		i.client.Bulk.WithContext(ctx),
		i.client.Bulk.WithIndex(i.index),
	)
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("bulk request failed: %s: %s", res.Status(), strings.TrimSpace(string(body)))
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID    string `json:"_id"`
			Error *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if bulkResp.Errors {
		failed := 0
		first := ""
		for _, item := range bulkResp.Items {
			for _, op := range item {
				if op.Error != nil {
					failed++
					if first == "" {
						first = fmt.Sprintf("%s: %s", op.ID, op.Error.Reason)
					}
				}
			}
		}
		return fmt.Errorf("bulk indexing failed for %d documents (first: %s)", failed, first)
	}
	return nil
}
