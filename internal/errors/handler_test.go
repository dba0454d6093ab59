package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func TestErrorToProblem(t *testing.T) {
	h := testHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "context deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "data not loaded",
			err:        errors.New("dataset not loaded"),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataNotLoaded,
		},
		{
			name:       "schema violation",
			err:        errors.New("orders: missing required columns: order_id"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataSchema,
		},
		{
			name:       "not found",
			err:        errors.New("report not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "wrapped api error",
			err:        fmt.Errorf("handling request: %w", ErrDataNotLoaded),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataNotLoaded,
		},
		{
			name:       "unknown error",
			err:        errors.New("something odd"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, req)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/analytics/summary", problem.Instance)
		})
	}
}

func TestHandleErrorResponse(t *testing.T) {
	h := testHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/export/bogus", nil)
	h.HandleError(rec, req, ErrReportNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeReportNotFound, body["type"])
	assert.Contains(t, body, "trace_id")
}

func TestProblemDetailsExtensions(t *testing.T) {
	problem := NewProblemDetails(http.StatusTooManyRequests, TypeRateLimit,
		"Rate Limit Exceeded", "slow down", "/api/analytics/summary").
		WithExtension("retry_after", 60)

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, float64(60), body["retry_after"], "extensions are flattened into the object")
	assert.Equal(t, "Rate Limit Exceeded", body["title"])
}

func TestSchemaErrorWithDetails(t *testing.T) {
	apiErr := SchemaErrorWithDetails("orders", []string{"order_id", "order_purchase_timestamp"})

	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "SCHEMA_VIOLATION", apiErr.ErrorCode)
	assert.Contains(t, apiErr.Message, "orders")
}

func TestNotFoundHandler(t *testing.T) {
	h := testHandler()

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}
