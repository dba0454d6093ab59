package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	// 404 Not Found
	ErrReportNotFound = New(http.StatusNotFound, "REPORT_NOT_FOUND", "Report not found")

	// 503 Service Unavailable
	ErrDataNotLoaded = New(http.StatusServiceUnavailable, "DATA_NOT_LOADED", "Dataset has not been loaded yet")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
}

// InvalidParameterError creates an invalid parameter error with the offending value
func InvalidParameterError(param, value string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_PARAMETER",
		fmt.Sprintf("Invalid value for parameter %s", param), value)
}

// SchemaErrorWithDetails creates a schema violation error for a source table
func SchemaErrorWithDetails(table string, missing []string) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, "SCHEMA_VIOLATION",
		fmt.Sprintf("Table %s is missing required columns", table), missing)
}

// DataLoadError creates a dataset load failure error
func DataLoadError(err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, "DATA_LOAD_FAILED", "Failed to load dataset", err.Error())
}
