// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Signing-flow error codes. Validation and out-of-turn errors are terminal
// for the attempt: the user must re-trigger, nothing is retried on their
// behalf. Snapshot fetches and downstream fan-out (audit, index, notify) are
// background work and may be retried by the engine.
const (
	ErrCodeAgreementNotFound   ErrorCode = "AGREEMENT_NOT_FOUND"
	ErrCodeAgreementFetchError ErrorCode = "AGREEMENT_FETCH_FAILED"
	ErrCodeRoleUnresolved      ErrorCode = "ROLE_UNRESOLVED"

	ErrCodeFeeValidationFailed ErrorCode = "FEE_VALIDATION_FAILED"
	ErrCodeFeeSubmissionFailed ErrorCode = "FEE_SUBMISSION_FAILED"
	ErrCodeFeesOutstanding     ErrorCode = "FEES_OUTSTANDING"

	ErrCodeSignatureValidationFailed ErrorCode = "SIGNATURE_VALIDATION_FAILED"
	ErrCodeSignatureSubmissionFailed ErrorCode = "SIGNATURE_SUBMISSION_FAILED"
	ErrCodeSigningOutOfTurn          ErrorCode = "SIGNING_OUT_OF_TURN"
	ErrCodeAlreadySigned             ErrorCode = "ALREADY_SIGNED"

	ErrCodeDocumentValidationFailed ErrorCode = "DOCUMENT_VALIDATION_FAILED"
	ErrCodeDocumentUploadFailed     ErrorCode = "DOCUMENT_UPLOAD_FAILED"

	ErrCodeMarketplaceAPIError   ErrorCode = "MARKETPLACE_API_ERROR"
	ErrCodeMarketplaceAPITimeout ErrorCode = "MARKETPLACE_API_TIMEOUT"

	ErrCodeAuditWriteFailed     ErrorCode = "AUDIT_WRITE_FAILED"
	ErrCodeContractIndexFailed  ErrorCode = "CONTRACT_INDEX_FAILED"
	ErrCodeNotificationFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeRecipientUnavailable ErrorCode = "RECIPIENT_UNAVAILABLE"
)

// StandardError represents a structured application error. Details carries
// the server-provided error text verbatim when one exists so the UI can
// surface it unchanged.
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

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
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

// ==========================
// 3. Error Constructors
// ==========================

// NewAgreementNotFoundError creates a non-retryable missing-agreement error.
func NewAgreementNotFoundError(agreementID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAgreementNotFound,
		Message:   "Agreement not found",
		Details:   fmt.Sprintf("agreementId: %s", agreementID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAgreementFetchError creates a retryable snapshot fetch error.
func NewAgreementFetchError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAgreementFetchError,
		Message:   "Failed to fetch agreement snapshot",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRoleUnresolvedError creates a non-retryable role projection error. The
// viewer matching neither counterparty signals a data or auth inconsistency,
// never a silent default.
func NewRoleUnresolvedError(userID, agreementID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRoleUnresolved,
		Message:   "User is neither publisher nor applicant on this agreement",
		Details:   fmt.Sprintf("userId: %s, agreementId: %s", userID, agreementID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFeeValidationError creates a non-retryable fee input validation error.
func NewFeeValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFeeValidationFailed,
		Message:   "Placement fee input is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFeeSubmissionError wraps a rejected fee update. The attempt is terminal;
// the user must re-trigger.
func NewFeeSubmissionError(serverDetail string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFeeSubmissionFailed,
		Message:   "Placement fee submission failed",
		Details:   serverDetail,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFeesOutstandingError creates a non-retryable error blocking a signature
// while the placement fee is still owed.
func NewFeesOutstandingError(agreementID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFeesOutstanding,
		Message:   "Placement fee must be submitted before signing",
		Details:   fmt.Sprintf("agreementId: %s", agreementID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSignatureValidationError creates a non-retryable signature input error.
func NewSignatureValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSignatureValidationFailed,
		Message:   "Signature input is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSignatureSubmissionError wraps a rejected signature. The attempt is
// terminal; the user must re-trigger.
func NewSignatureSubmissionError(serverDetail string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSignatureSubmissionFailed,
		Message:   "Signature submission failed",
		Details:   serverDetail,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSigningOutOfTurnError creates a non-retryable out-of-turn error. The
// state is transient: the agreement will become signable for this role later.
func NewSigningOutOfTurnError(role string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSigningOutOfTurn,
		Message:   "It is not this party's turn to sign",
		Details:   fmt.Sprintf("role: %s", role),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlreadySignedError creates a non-retryable terminal already-signed error.
func NewAlreadySignedError(role string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadySigned,
		Message:   "This party has already signed the agreement",
		Details:   fmt.Sprintf("role: %s", role),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentValidationError creates a non-retryable custom-document error.
func NewDocumentValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentValidationFailed,
		Message:   "Custom agreement document rejected",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentUploadError creates a retryable document upload error.
func NewDocumentUploadError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentUploadFailed,
		Message:   "Custom agreement upload failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMarketplaceAPIError creates a retryable marketplace transport error.
func NewMarketplaceAPIError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMarketplaceAPIError,
		Message:   fmt.Sprintf("Marketplace API operation '%s' failed", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMarketplaceAPITimeoutError creates a retryable marketplace timeout error.
func NewMarketplaceAPITimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMarketplaceAPITimeout,
		Message:   fmt.Sprintf("Marketplace API operation '%s' timed out", operation),
		Details:   "call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditWriteError creates a retryable audit log insert error.
func NewAuditWriteError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "Audit log write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewContractIndexError creates a retryable search index error.
func NewContractIndexError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContractIndexFailed,
		Message:   "Booked contract indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendError creates a retryable notification delivery error.
func NewNotificationSendError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecipientUnavailableError signals that no reachable contact address
// exists for the requested channel. Retrying cannot help.
func NewRecipientUnavailableError(channel string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecipientUnavailable,
		Message:   "Notification recipient unavailable",
		Details:   fmt.Sprintf("no recipient address for channel %s", channel),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. The codes
// are identical on both sides so boundary events can match on them directly.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeAgreementNotFound:         "AGREEMENT_NOT_FOUND",
	ErrCodeAgreementFetchError:       "AGREEMENT_FETCH_FAILED",
	ErrCodeRoleUnresolved:            "ROLE_UNRESOLVED",
	ErrCodeFeeValidationFailed:       "FEE_VALIDATION_FAILED",
	ErrCodeFeeSubmissionFailed:       "FEE_SUBMISSION_FAILED",
	ErrCodeFeesOutstanding:           "FEES_OUTSTANDING",
	ErrCodeSignatureValidationFailed: "SIGNATURE_VALIDATION_FAILED",
	ErrCodeSignatureSubmissionFailed: "SIGNATURE_SUBMISSION_FAILED",
	ErrCodeSigningOutOfTurn:          "SIGNING_OUT_OF_TURN",
	ErrCodeAlreadySigned:             "ALREADY_SIGNED",
	ErrCodeDocumentValidationFailed:  "DOCUMENT_VALIDATION_FAILED",
	ErrCodeDocumentUploadFailed:      "DOCUMENT_UPLOAD_FAILED",
	ErrCodeMarketplaceAPIError:       "MARKETPLACE_API_ERROR",
	ErrCodeMarketplaceAPITimeout:     "MARKETPLACE_API_TIMEOUT",
	ErrCodeAuditWriteFailed:          "AUDIT_WRITE_FAILED",
	ErrCodeContractIndexFailed:       "CONTRACT_INDEX_FAILED",
	ErrCodeNotificationFailed:        "NOTIFICATION_SEND_FAILED",
	ErrCodeRecipientUnavailable:      "RECIPIENT_UNAVAILABLE",
}

// GetRetryCount returns the engine-level retry count per code. User-triggered
// submissions never auto-retry: a failed fee or signature attempt is terminal
// until the user re-triggers it.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeAgreementFetchError,
		ErrCodeMarketplaceAPIError,
		ErrCodeDocumentUploadFailed,
		ErrCodeAuditWriteFailed,
		ErrCodeContractIndexFailed,
		ErrCodeNotificationFailed:
		return 3 // Retryable technical errors

	case ErrCodeMarketplaceAPITimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Validation, state, and user-attempt errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SIGNING") || strings.Contains(codeStr, "SIGNED") ||
		strings.Contains(codeStr, "OUTSTANDING") || strings.Contains(codeStr, "ROLE"):
		return "AUTH/STATE"
	case strings.Contains(codeStr, "MARKETPLACE") || strings.Contains(codeStr, "FETCH") ||
		strings.Contains(codeStr, "TIMEOUT"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "AUDIT") || strings.Contains(codeStr, "INDEX"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "RECIPIENT"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
