package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "indiamart-audit/internal/common/errors"
)

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest([]byte(`{
		"sessionId": "s-1",
		"auditPrompt": "Check segments.",
		"rawRecords": [{"id": "R1", "categoryId": "C1", "quantity": "1,200", "quantityUnit": "Kg", "businessCategoryOverride": 1}],
		"thresholds": [{"categoryId": "C1", "cutoffQuantity": "50", "cutoffUnit": "kg"}]
	}`))
	require.NoError(t, err)
	require.NoError(t, req.Validate())

	require.Len(t, req.Records, 1)
	assert.Equal(t, 1200.0, req.Records[0].Quantity.Value)
	assert.True(t, bool(req.Records[0].BusinessCategoryOverride))
	assert.Equal(t, 50.0, req.Thresholds[0].CutoffQuantity.Value)
}

func TestDecodeRequest_SchemaErrors(t *testing.T) {
	_, err := DecodeRequest([]byte(`{"sessionId": "s-1", "rawRecords": [], "thresholds": []}`))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInputValidation))

	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, stdErr.Details, "auditPrompt")
}
