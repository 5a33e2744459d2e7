package advisory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	apperrors "indiamart-audit/internal/common/errors"
	"indiamart-audit/internal/common/logger"
	"indiamart-audit/internal/common/metrics"
	"indiamart-audit/internal/llm"
	"indiamart-audit/internal/models"
)

var errCallPanicked = errors.New("ADVISORY_CALL_PANICKED")

// Caller is the LLM collaborator. *llm.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, systemPrompt, userPrompt string, opts llm.Options) (*llm.Response, error)
}

// Item is one classified record waiting for its advisory assessment.
type Item struct {
	Record    models.RawRecord
	Threshold *models.ThresholdEntry
	Verdict   models.ClassificationVerdict
}

type Result struct {
	Assessment models.AdvisoryAssessment
	Narrative  string
	// Err is set when the assessment degraded to the error variant.
	Err error
}

type Reconciler struct {
	config *Config
	caller Caller
	logger logger.Logger
}

func NewReconciler(config *Config, caller Caller, log logger.Logger) *Reconciler {
	cfg := *config
	cfg.applyDefaults()
	return &Reconciler{
		config: &cfg,
		caller: caller,
		logger: log.WithFields(map[string]interface{}{"component": "advisory"}),
	}
}

func (r *Reconciler) BatchSize() int {
	return r.config.BatchSize
}

func (r *Reconciler) Concurrency() int {
	return r.config.Concurrency
}

// Reconcile assesses every item with at most Concurrency calls in flight and
// returns once all of them have finished. results[i] belongs to items[i]; a
// failed call only degrades its own result.
func (r *Reconciler) Reconcile(ctx context.Context, systemPrompt string, items []Item) []Result {
	results := make([]Result, len(items))
	sem := make(chan struct{}, r.config.Concurrency)
	var wg sync.WaitGroup

	for i := range items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = r.assess(ctx, systemPrompt, items[i])
		}(i)
	}
	wg.Wait()
	return results
}

func (r *Reconciler) assess(ctx context.Context, systemPrompt string, item Item) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = r.degrade(item, fmt.Errorf("%w: %v", errCallPanicked, p))
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, r.config.CallTimeout)
	defer cancel()

	resp, err := r.caller.Call(callCtx, systemPrompt, UserPrompt(item), llm.Options{
		Temperature: r.config.Temperature,
		MaxTokens:   r.config.MaxTokens,
		JSONMode:    r.config.JSONMode,
	})
	if err != nil {
		return r.degrade(item, err)
	}

	assessment, err := ParseReply(resp.Content)
	if err != nil {
		return r.degrade(item, err)
	}

	metrics.AuditAdvisories.WithLabelValues(string(assessment.SuggestedType)).Inc()
	return Result{
		Assessment: assessment,
		Narrative:  Narrative(item.Verdict, assessment),
	}
}

func (r *Reconciler) degrade(item Item, err error) Result {
	reason := FailureReason(err)
	metrics.AuditAdvisories.WithLabelValues(string(models.SuggestedError)).Inc()
	metrics.AuditAdvisoryFailures.WithLabelValues(reason).Inc()

	r.logger.Warn("advisory assessment degraded", map[string]interface{}{
		"recordId": item.Record.ID,
		"reason":   reason,
		"error":    err.Error(),
	})

	assessment := models.AdvisoryAssessment{
		SuggestedType: models.SuggestedError,
		Reasoning:     "advisory call failed: " + err.Error(),
	}
	return Result{
		Assessment: assessment,
		Narrative:  Narrative(item.Verdict, assessment),
		Err:        apperrors.NewAdvisoryError(errorCode(reason), err),
	}
}

func errorCode(reason string) apperrors.ErrorCode {
	switch reason {
	case "timeout":
		return apperrors.ErrCodeAdvisoryTimeout
	case "invalid_reply", "empty_reply":
		return apperrors.ErrCodeAdvisoryReplyInvalid
	default:
		return apperrors.ErrCodeAdvisoryCallFailed
	}
}

// FailureReason is the metrics label for a degraded assessment.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, llm.ErrLLMTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrReplyInvalid):
		return "invalid_reply"
	case errors.Is(err, llm.ErrLLMEmptyReply):
		return "empty_reply"
	case errors.Is(err, errCallPanicked):
		return "panic"
	default:
		return "call_failed"
	}
}
