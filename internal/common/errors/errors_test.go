package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := fmt.Errorf("save batch: %w", NewPersistenceFailedError("s-1", cause))

	assert.True(t, stderrors.Is(err, cause))
	stdErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodePersistenceFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "s-1")
	assert.True(t, HasCode(err, ErrCodePersistenceFailed))
	assert.False(t, HasCode(cause, ErrCodePersistenceFailed))
}

func TestNewInputValidationError(t *testing.T) {
	err := NewInputValidationError([]string{"sessionId is required", "thresholds must not be empty"})

	assert.Equal(t, ErrCodeInputValidation, err.Code)
	assert.False(t, err.Retryable)
	assert.Equal(t, "sessionId is required; thresholds must not be empty", err.Details)
	assert.Len(t, err.Metadata["problems"], 2)
}

func TestNewConfigurationError(t *testing.T) {
	cause := stderrors.New("LLM_CREDENTIALS_MISSING")
	err := NewConfigurationError("llm client", cause)
	assert.Equal(t, "llm client: LLM_CREDENTIALS_MISSING", err.Details)
	assert.True(t, stderrors.Is(err, cause))

	assert.Equal(t, "only details", NewConfigurationError("only details", nil).Details)
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("validation error is final", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewInputValidationError([]string{"x"}))
		assert.Equal(t, "AUDIT_INPUT_INVALID", bpmn.Code)
		assert.Equal(t, 0, bpmn.Retries)
		vars := bpmn.ToErrorVariables()
		assert.Equal(t, "INPUT_VALIDATION_FAILED", vars["originalErrorCode"])
		assert.Equal(t, []string{"x"}, vars["problems"])
	})

	t.Run("persistence error retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewPersistenceFailedError("s", stderrors.New("down")))
		assert.Equal(t, "AUDIT_PERSISTENCE_FAILED", bpmn.Code)
		assert.Equal(t, 3, bpmn.Retries)
		assert.True(t, bpmn.Retryable)
	})

	t.Run("unmapped code falls back to itself", func(t *testing.T) {
		bpmn := ConvertToBPMNError(&StandardError{Code: ErrCodeInternal, Message: "x"})
		assert.Equal(t, "INTERNAL_ERROR", bpmn.Code)
		assert.Equal(t, 0, bpmn.Retries)
	})
}

func TestNewAdvisoryError(t *testing.T) {
	cause := stderrors.New("deadline")
	timeout := NewAdvisoryError(ErrCodeAdvisoryTimeout, cause)
	assert.True(t, timeout.Retryable)
	assert.Equal(t, "Advisory call timed out", timeout.Message)
	assert.True(t, stderrors.Is(timeout, cause))

	invalid := NewAdvisoryError(ErrCodeAdvisoryReplyInvalid, cause)
	assert.False(t, invalid.Retryable)
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeConfiguration:            "CONFIGURATION",
		ErrCodeInputValidation:          "VALIDATION",
		ErrCodeAdvisoryTimeout:          "AI",
		ErrCodePersistenceFailed:        "DATABASE",
		ErrCodeSessionTrackingFailed:    "DATABASE",
		ErrCodeDatabaseConnectionFailed: "DATABASE",
		ErrCodeSearchIndexFailed:        "SEARCH",
		ErrCodeNotificationSendFailed:   "NOTIFICATION",
		ErrCodeInternal:                 "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), code)
	}
}

func TestRemainingRetries(t *testing.T) {
	assert.Equal(t, 2, RemainingRetries(3, 3))
	assert.Equal(t, 3, RemainingRetries(10, 3))
	assert.Equal(t, 0, RemainingRetries(1, 3))
	assert.Equal(t, 0, RemainingRetries(0, 3))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodePersistenceFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeInputValidation))
}
