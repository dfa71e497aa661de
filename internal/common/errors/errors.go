// Package errors provides standardized error handling for BPMN workflow
// integration across the lead pipeline workers.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Discovery
	ErrCodePlacesSearchFailed  ErrorCode = "PLACES_SEARCH_FAILED"
	ErrCodePlacesSearchTimeout ErrorCode = "PLACES_SEARCH_TIMEOUT"
	ErrCodeIndexWriteFailed    ErrorCode = "INDEX_WRITE_FAILED"

	// Enrichment
	ErrCodeEnrichmentFailed   ErrorCode = "ENRICHMENT_FAILED"
	ErrCodeEnrichmentTimeout  ErrorCode = "ENRICHMENT_TIMEOUT"
	ErrCodeWebsiteFetchFailed ErrorCode = "WEBSITE_FETCH_FAILED"

	// Scoring
	ErrCodeICPConfigNotFound ErrorCode = "ICP_CONFIG_NOT_FOUND"
	ErrCodeScoreWriteFailed  ErrorCode = "SCORE_WRITE_FAILED"
	ErrCodeBulkScoreFailed   ErrorCode = "BULK_SCORE_FAILED"

	// Reporting
	ErrCodeReportBuildFailed      ErrorCode = "REPORT_BUILD_FAILED"
	ErrCodeReportValidationFailed ErrorCode = "REPORT_VALIDATION_FAILED"

	// Outreach
	ErrCodeTemplateNotFound      ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateRenderFailed  ErrorCode = "TEMPLATE_RENDER_FAILED"
	ErrCodeEmailValidationFailed ErrorCode = "EMAIL_VALIDATION_FAILED"
	ErrCodeEmailSendFailed       ErrorCode = "EMAIL_SEND_FAILED"
	ErrCodeDuplicateSend         ErrorCode = "DUPLICATE_SEND"

	// CRM / notifications
	ErrCodeCRMSyncFailed          ErrorCode = "CRM_SYNC_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	// Infrastructure
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeParseError               ErrorCode = "PARSE_ERROR"
	ErrCodeInternalError            ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// BPMNError represents an error thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ConvertToBPMNError maps a StandardError onto the engine error shape.
func ConvertToBPMNError(err *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(err.Code),
		Message:   err.Message,
		Details:   err.Details,
		Retryable: err.Retryable,
		Retries:   GetRetryCount(err.Code),
	}
}

// GetRetryCount returns how many engine-side retries a code deserves.
// Non-retryable codes get zero so the error surfaces as a BPMN error
// event instead of looping.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodePlacesSearchFailed, ErrCodeEnrichmentFailed,
		ErrCodeEmailSendFailed, ErrCodeCRMSyncFailed,
		ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed,
		ErrCodeIndexWriteFailed, ErrCodeScoreWriteFailed:
		return 3
	case ErrCodePlacesSearchTimeout, ErrCodeEnrichmentTimeout, ErrCodeQueryTimeout:
		return 2
	default:
		return 0
	}
}

// ==========================
// Error Constructors
// ==========================

// NewPlacesSearchFailedError creates a retryable provider error.
func NewPlacesSearchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePlacesSearchFailed,
		Message:   "Places provider search failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPlacesSearchTimeoutError creates a retryable timeout error.
func NewPlacesSearchTimeoutError(query string) *StandardError {
	return &StandardError{
		Code:      ErrCodePlacesSearchTimeout,
		Message:   "Places provider search timed out",
		Details:   fmt.Sprintf("query: %s", query),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnrichmentFailedError creates a retryable enrichment provider error.
func NewEnrichmentFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnrichmentFailed,
		Message:   "Contact enrichment provider failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewICPConfigNotFoundError creates a non-retryable config lookup error.
func NewICPConfigNotFoundError(configID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeICPConfigNotFound,
		Message:   "ICP config not found",
		Details:   fmt.Sprintf("configId: %s", configID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoreWriteFailedError creates a retryable persistence error.
func NewScoreWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoreWriteFailed,
		Message:   "Failed to persist score result",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Failed to send status notification",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Template not found in registry",
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmailValidationFailedError creates a non-retryable address error.
func NewEmailValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailValidationFailed,
		Message:   "Email address validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmailSendFailedError creates a retryable transport error.
func NewEmailSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailSendFailed,
		Message:   "Failed to send outreach email",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportValidationFailedError creates a non-retryable schema error.
func NewReportValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportValidationFailed,
		Message:   "Audit report failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCRMSyncFailedError creates a retryable CRM transport error.
func NewCRMSyncFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCRMSyncFailed,
		Message:   "CRM lead sync failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable database error.
func NewQueryExecutionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
