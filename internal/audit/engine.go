package audit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "indiamart-audit/internal/common/errors"
	"indiamart-audit/internal/common/logger"
	"indiamart-audit/internal/common/metrics"
	"indiamart-audit/internal/common/observability"
	"indiamart-audit/internal/models"
	"indiamart-audit/internal/reconcile/advisory"
	"indiamart-audit/internal/reconcile/classifier"
	"indiamart-audit/internal/reconcile/threshold"
	"indiamart-audit/internal/reconcile/units"
)

// Advisor runs advisory assessments for one batch. *advisory.Reconciler satisfies it.
type Advisor interface {
	Reconcile(ctx context.Context, systemPrompt string, items []advisory.Item) []advisory.Result
	BatchSize() int
}

type ResultStore interface {
	SaveResults(ctx context.Context, results []models.AuditResult) error
}

type SessionTracker interface {
	Start(ctx context.Context, sessionID string, total int) error
	Advance(ctx context.Context, sessionID string, processed, advisoryFailures int) error
	Complete(ctx context.Context, sessionID string) error
	Fail(ctx context.Context, sessionID string, cause error) error
}

type ResultIndexer interface {
	IndexResults(ctx context.Context, results []models.AuditResult) error
}

type Notifier interface {
	NotifyRunFinished(ctx context.Context, summary *Summary) error
}

// Deps are the collaborators of an Engine. Only Store is required.
type Deps struct {
	Store         ResultStore
	Sessions      SessionTracker
	Indexer       ResultIndexer
	Notifier      Notifier
	Observability *observability.Observability
}

type Config struct {
	NormalizerCacheSize int
}

// ProgressFunc is called after every batch with the number of records done.
type ProgressFunc func(done, total int)

// Report is the outcome of Execute.
type Report struct {
	Results []models.AuditResult
	Summary *Summary
}

type Engine struct {
	config  Config
	advisor Advisor
	deps    Deps
	logger  logger.Logger
	now     func() time.Time
	newID   func() string
}

func NewEngine(config *Config, advisor Advisor, deps Deps, log logger.Logger) *Engine {
	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.NormalizerCacheSize <= 0 {
		cfg.NormalizerCacheSize = units.DefaultCacheSize
	}
	if deps.Observability == nil {
		deps.Observability = observability.NewNoop()
	}
	return &Engine{
		config:  cfg,
		advisor: advisor,
		deps:    deps,
		logger:  log.WithFields(map[string]interface{}{"component": "audit-engine"}),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// RunAudit audits every record and returns exactly one result per record, in
// input order. Invalid input fails before any record is processed. A
// persistence failure still returns the full result set alongside the error.
func (e *Engine) RunAudit(ctx context.Context, sessionID, auditPrompt string, records []models.RawRecord, thresholds []models.ThresholdEntry) ([]models.AuditResult, error) {
	report, err := e.Execute(ctx, &Request{
		SessionID:   sessionID,
		AuditPrompt: auditPrompt,
		Records:     records,
		Thresholds:  thresholds,
	}, nil)
	if report == nil {
		return nil, err
	}
	return report.Results, err
}

// Execute is RunAudit with a summary and progress reporting.
func (e *Engine) Execute(ctx context.Context, req *Request, progress ProgressFunc) (*Report, error) {
	if err := req.Validate(); err != nil {
		metrics.AuditRuns.WithLabelValues("rejected").Inc()
		return nil, err
	}

	start := e.now()
	sessionID := strings.TrimSpace(req.SessionID)
	total := len(req.Records)

	ctx, span := e.deps.Observability.StartSpan(ctx, "audit.run",
		attribute.String("session.id", sessionID),
		attribute.Int("records", total),
	)
	defer span.End()

	log := e.logger.WithFields(map[string]interface{}{
		"sessionId": sessionID,
		"traceId":   observability.TraceID(ctx),
	})
	log.Info("audit run started", map[string]interface{}{
		"records":    total,
		"thresholds": len(req.Thresholds),
	})

	if e.deps.Sessions != nil {
		if err := e.deps.Sessions.Start(ctx, sessionID, total); err != nil {
			log.Warn("session start not tracked", map[string]interface{}{
				"error": apperrors.NewSessionTrackingFailedError(sessionID, err).Error(),
			})
		}
	}

	normalizer := units.NewNormalizer(e.config.NormalizerCacheSize)
	index := threshold.NewIndex(req.Thresholds, normalizer)
	systemPrompt := advisory.SystemPrompt(req.AuditPrompt)

	items := make([]advisory.Item, total)
	for i, rec := range req.Records {
		items[i] = e.classify(rec, index, normalizer)
	}

	results := make([]models.AuditResult, 0, total)
	batchSize := e.advisor.BatchSize()
	if batchSize <= 0 {
		batchSize = total
	}

	var persistErr error
	batches := 0
	for lo := 0; lo < total; lo += batchSize {
		hi := min(lo+batchSize, total)
		batch, failures := e.runBatch(ctx, sessionID, systemPrompt, items[lo:hi], batches)
		batches++
		results = append(results, batch...)

		if err := e.deps.Store.SaveResults(ctx, batch); err != nil && persistErr == nil {
			persistErr = apperrors.NewPersistenceFailedError(sessionID, err)
			log.Error("failed to persist batch", map[string]interface{}{
				"batch": batches,
				"error": err.Error(),
			})
		}
		if e.deps.Sessions != nil {
			if err := e.deps.Sessions.Advance(ctx, sessionID, len(batch), failures); err != nil {
				log.Warn("session progress not tracked", map[string]interface{}{"error": err.Error()})
			}
		}
		if progress != nil {
			progress(len(results), total)
		}
	}

	summary := Summarize(sessionID, results)
	summary.Batches = batches
	summary.TraceID = observability.TraceID(ctx)
	summary.setDuration(e.now().Sub(start))

	status := models.SessionCompleted
	if persistErr != nil {
		status = models.SessionFailed
		summary.Status = status
		summary.Error = persistErr.Error()
		span.RecordError(persistErr)
		span.SetStatus(codes.Error, "persistence failed")
	}
	e.finish(ctx, log, summary, results, persistErr)

	metrics.AuditRuns.WithLabelValues(string(status)).Inc()
	e.deps.Observability.RecordRun(ctx, string(status), total, e.now().Sub(start))

	log.Info("audit run finished", map[string]interface{}{
		"status":           status,
		"records":          total,
		"passed":           summary.Passed,
		"errors":           summary.Errors,
		"advisoryFailures": summary.AdvisoryFailures,
		"durationMs":       summary.DurationMs,
	})

	return &Report{Results: results, Summary: summary}, persistErr
}

func (e *Engine) classify(rec models.RawRecord, index *threshold.Index, normalizer *units.Normalizer) advisory.Item {
	item := advisory.Item{Record: rec}
	if entry, ok := index.Resolve(rec.CategoryID, rec.QuantityUnit); ok {
		th := entry.ThresholdEntry
		item.Threshold = &th
	}
	item.Verdict = classifier.Classify(rec, item.Threshold, normalizer.Convert)
	metrics.AuditRecords.WithLabelValues(item.Verdict.CategoryLabel, string(item.Verdict.Outcome)).Inc()
	return item
}

func (e *Engine) runBatch(ctx context.Context, sessionID, systemPrompt string, items []advisory.Item, n int) ([]models.AuditResult, int) {
	ctx, span := e.deps.Observability.StartSpan(ctx, "audit.batch",
		attribute.Int("batch", n),
		attribute.Int("size", len(items)),
	)
	defer span.End()

	started := time.Now()
	advice := e.advisor.Reconcile(ctx, systemPrompt, items)
	metrics.AuditBatchDuration.Observe(time.Since(started).Seconds())

	createdAt := e.now().UTC()
	out := make([]models.AuditResult, len(items))
	failures := 0
	for i, item := range items {
		var adv advisory.Result
		if i < len(advice) {
			adv = advice[i]
		} else {
			adv = advisory.Result{
				Assessment: models.AdvisoryAssessment{
					SuggestedType: models.SuggestedError,
					Reasoning:     "advisory call failed: no assessment returned",
				},
			}
			adv.Narrative = advisory.Narrative(item.Verdict, adv.Assessment)
		}
		if adv.Assessment.Failed() {
			failures++
		}

		rec := item.Record
		out[i] = models.AuditResult{
			ID:                 e.newID(),
			SessionID:          sessionID,
			RecordID:           strings.TrimSpace(rec.ID),
			CategoryID:         rec.CategoryID,
			CategoryName:       rec.CategoryName,
			Quantity:           rec.Quantity,
			QuantityUnit:       rec.QuantityUnit,
			ProbableOrderValue: rec.ProbableOrderValue,
			SegmentLabel:       rec.SegmentLabel,
			Verdict:            item.Verdict,
			Advisory:           adv.Assessment,
			Narrative:          adv.Narrative,
			CreatedAt:          createdAt,
		}
	}
	span.SetAttributes(attribute.Int("advisory.failures", failures))
	return out, failures
}

// finish closes the session and fans results out to search and notification.
// Failures here are logged and never change the run outcome.
func (e *Engine) finish(ctx context.Context, log logger.Logger, summary *Summary, results []models.AuditResult, runErr error) {
	if e.deps.Sessions != nil {
		var err error
		if runErr != nil {
			err = e.deps.Sessions.Fail(ctx, summary.SessionID, runErr)
		} else {
			err = e.deps.Sessions.Complete(ctx, summary.SessionID)
		}
		if err != nil {
			log.Warn("session finish not tracked", map[string]interface{}{
				"error": apperrors.NewSessionTrackingFailedError(summary.SessionID, err).Error(),
			})
		}
	}

	if e.deps.Indexer != nil {
		if err := e.deps.Indexer.IndexResults(ctx, results); err != nil {
			fields := map[string]interface{}{"error": err.Error()}
			if stdErr, ok := apperrors.As(err); ok {
				fields["details"] = stdErr.Details
			}
			log.Warn("results not indexed", fields)
		}
	}

	if e.deps.Notifier != nil {
		if err := e.deps.Notifier.NotifyRunFinished(ctx, summary); err != nil {
			log.Warn("run notification not sent", map[string]interface{}{"error": err.Error()})
		}
	}
}
