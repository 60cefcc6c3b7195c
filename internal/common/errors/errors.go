// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Extraction
	ErrCodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"

	// Recommendations
	ErrCodeMergeFailed        ErrorCode = "MERGE_FAILED"
	ErrCodeAdvisorTimeout     ErrorCode = "ADVISOR_API_TIMEOUT"
	ErrCodeAdvisorFailed      ErrorCode = "ADVISOR_REQUEST_FAILED"
	ErrCodeCatalogQueryFailed ErrorCode = "CATALOG_QUERY_FAILED"
	ErrCodeCatalogTimeout     ErrorCode = "CATALOG_QUERY_TIMEOUT"

	// Calculation
	ErrCodeInvalidLoanParameters ErrorCode = "INVALID_LOAN_PARAMETERS"

	// Sessions
	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeSessionNotFound    ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionExpired     ErrorCode = "SESSION_EXPIRED"

	// Response assembly
	ErrCodeResponseBuildFailed ErrorCode = "RESPONSE_BUILD_FAILED"

	// Generic
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT"
	ErrCodeNotFound        ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeBusinessRule    ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// retryCounts maps error codes to the number of Camunda retries they earn.
// Only transient infrastructure failures are worth retrying; rule-level
// failures (bad input, out-of-domain values) are final.
var retryCounts = map[ErrorCode]int{
	ErrCodeAdvisorTimeout:     2,
	ErrCodeAdvisorFailed:      1,
	ErrCodeCatalogTimeout:     2,
	ErrCodeCatalogQueryFailed: 1,
	ErrCodeSessionStoreFailed: 3,
	ErrCodeExternalService:    2,
	ErrCodeTimeout:            2,
}

// GetRetryCount returns how many retries an error code should be given.
func GetRetryCount(code ErrorCode) int {
	return retryCounts[code]
}

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

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
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

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ConvertToBPMNError maps a StandardError onto the workflow error contract.
func ConvertToBPMNError(err *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(err.Code),
		Message:   err.Message,
		Details:   err.Details,
		Retryable: err.Retryable,
		Retries:   GetRetryCount(err.Code),
		ErrorVariables: map[string]interface{}{
			"timestamp": err.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 3. Error Constructors
// ==========================

// NewExtractionError wraps an unexpected fault inside an extraction pass.
// Extraction faults never propagate to the user; callers report them as a
// zero-field pass.
func NewExtractionError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Extraction pass failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAdvisorTimeoutError creates a retryable advisor-service timeout error.
func NewAdvisorTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAdvisorTimeout,
		Message:   "Advisor service call timed out",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAdvisorRequestError creates an advisor-service request failure.
func NewAdvisorRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAdvisorFailed,
		Message:   "Advisor service request failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreError creates a retryable session-storage failure.
func NewSessionStoreError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store operation failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidLoanParametersError creates a non-retryable calculation input error.
func NewInvalidLoanParametersError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidLoanParameters,
		Message:   "Loan parameters outside accepted ranges",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExternalServiceError wraps a failure from a named external dependency.
func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service %s failed", service),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"service": service},
		Timestamp: time.Now().UTC(),
	}
}

// NewTimeoutError wraps a timeout from a named external dependency.
func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Operation against %s timed out", service),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"service": service},
		Timestamp: time.Now().UTC(),
	}
}

// NewResourceNotFoundError creates a non-retryable not-found error.
func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBusinessRuleError creates a non-retryable business rule violation.
func NewBusinessRuleError(details, rule string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBusinessRule,
		Message:   rule,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthenticationError creates a non-retryable authorization failure.
func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Not authorized",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
