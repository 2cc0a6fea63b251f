package errors

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemDetails_JSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "mode is invalid", "/api/waves/summary").
		WithExtension("trace_id", "abc")

	data, err := json.Marshal(problem)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "/errors/validation",
		"title": "Validation Failed",
		"status": 400,
		"detail": "mode is invalid",
		"instance": "/api/waves/summary",
		"trace_id": "abc"
	}`, string(data))

	var decoded ProblemDetails
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, problem.Type, decoded.Type)
	assert.Equal(t, problem.Status, decoded.Status)
	assert.Equal(t, "abc", decoded.Extensions["trace_id"])
}

func TestProblemDetails_ExtensionCannotShadowStandardFields(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "").
		WithExtension("status", 200)

	data, err := json.Marshal(problem)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"/errors/not-found","title":"Not Found","status":404}`, string(data))
}

func TestAPIErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"multiple", NewValidationErrors([]ValidationError{{Field: "mode"}}), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"missing", MissingParameter("sheet"), http.StatusBadRequest, "MISSING_PARAMETER"},
		{"invalid request", InvalidRequestWithError(assert.AnError), http.StatusBadRequest, "INVALID_REQUEST"},
		{"sheets disabled", ErrSheetsDisabled, http.StatusServiceUnavailable, "SHEETS_DISABLED"},
		{"rate limited", ErrRateLimitExceeded, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}
