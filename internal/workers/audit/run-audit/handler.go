// internal/workers/audit/run-audit/handler.go
package runaudit

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"indiamart-audit/internal/audit"
	apperrors "indiamart-audit/internal/common/errors"
	"indiamart-audit/internal/common/logger"
	"indiamart-audit/internal/common/metrics"
)

const (
	TaskType = "run-audit"
)

// Runner executes one audit. *audit.Engine satisfies it.
type Runner interface {
	Execute(ctx context.Context, req *audit.Request, progress audit.ProgressFunc) (*audit.Report, error)
}

type Handler struct {
	config       *Config
	runner       Runner
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, runner Runner, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		runner:       runner,
		errorHandler: apperrors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := ParseInput([]byte(job.Variables))
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// ParseInput validates job variables against the run request schema before
// decoding them.
func ParseInput(variables []byte) (*Input, error) {
	req, err := audit.DecodeRequest(variables)
	if err != nil {
		return nil, err
	}
	return &Input{
		SessionID:   req.SessionID,
		AuditPrompt: req.AuditPrompt,
		RawRecords:  req.Records,
		Thresholds:  req.Thresholds,
	}, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	report, err := h.runner.Execute(ctx, &audit.Request{
		SessionID:   input.SessionID,
		AuditPrompt: input.AuditPrompt,
		Records:     input.RawRecords,
		Thresholds:  input.Thresholds,
	}, func(done, total int) {
		h.logger.Debug("audit progress", map[string]interface{}{
			"sessionId": input.SessionID,
			"done":      done,
			"total":     total,
		})
	})
	if err != nil {
		return nil, err
	}

	s := report.Summary
	h.logger.Info("audit completed", map[string]interface{}{
		"sessionId": s.SessionID,
		"records":   s.TotalRecords,
		"errors":    s.Errors,
	})

	return &Output{
		SessionID:        s.SessionID,
		AuditStatus:      string(s.Status),
		TotalRecords:     s.TotalRecords,
		PassCount:        s.Passed,
		ErrorCount:       s.Errors,
		AdvisoryFailures: s.AdvisoryFailures,
		AuditSummary:     s,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := string(apperrors.ErrCodeInternal)
	if stdErr, ok := apperrors.As(err); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()

	// The job context may already be spent; reporting must still reach the broker.
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
	}
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
