package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeConversationLimit ErrorType = "conversation_limit"
	ErrorTypeRateLimit         ErrorType = "rate_limit"
	ErrorTypeInternal          ErrorType = "internal"
	ErrorTypeExternal          ErrorType = "external"
	ErrorTypeUnavailable       ErrorType = "unavailable"
)

// User-facing messages returned by the query pipeline.
const (
	MsgDailyLimitReached   = "Daily query limit reached"
	MsgQueryTooShort       = "Query must be at least 3 characters"
	MsgConversationLimit   = "Conversation limit reached (5 messages)"
	MsgEmbeddingFailed     = "Failed to embed query"
	MsgSearchUnavailable   = "Knowledge base unavailable"
	MsgDatabaseUnavailable = "Database unavailable"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError of the same type.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Sentinels for errors.Is comparisons. Never attach details to these;
// build a fresh error with the constructors below instead.
var (
	ErrInvalidInput      = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrRateLimitExceeded = NewDomainError(ErrorTypeRateLimit, MsgDailyLimitReached, nil)
	ErrConversationFull  = NewDomainError(ErrorTypeConversationLimit, MsgConversationLimit, nil)
	ErrProviderError     = NewDomainError(ErrorTypeExternal, "model provider error", nil)
	ErrStoreUnavailable  = NewDomainError(ErrorTypeUnavailable, "store unavailable", nil)
	ErrInternal          = NewDomainError(ErrorTypeInternal, "internal server error", nil)
)

// NewRateLimitError reports an exhausted daily quota.
func NewRateLimitError(limit, used int) *DomainError {
	return NewDomainError(ErrorTypeRateLimit, MsgDailyLimitReached, nil).
		WithDetail("limit", limit).
		WithDetail("queries_today", used)
}

// NewQueryTooShortError reports a query under the minimum trimmed length.
func NewQueryTooShortError() *DomainError {
	return NewDomainError(ErrorTypeValidation, MsgQueryTooShort, nil)
}

// NewConversationLimitError reports a session that is already full.
func NewConversationLimitError(maxTurns int) *DomainError {
	msg := MsgConversationLimit
	if maxTurns != 5 {
		msg = fmt.Sprintf("Conversation limit reached (%d messages)", maxTurns)
	}
	return NewDomainError(ErrorTypeConversationLimit, msg, nil).WithDetail("max_turns", maxTurns)
}

// Error type checking helper functions

func isType(err error, errType ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == errType
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool { return isType(err, ErrorTypeValidation) }

// IsConversationLimitError checks if an error is a full-session error
func IsConversationLimitError(err error) bool { return isType(err, ErrorTypeConversationLimit) }

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool { return isType(err, ErrorTypeRateLimit) }

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool { return isType(err, ErrorTypeInternal) }

// IsExternalError checks if an error is an external provider error
func IsExternalError(err error) bool { return isType(err, ErrorTypeExternal) }

// IsUnavailableError checks if an error is a store availability error
func IsUnavailableError(err error) bool { return isType(err, ErrorTypeUnavailable) }

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorMessage returns the user-facing message of a domain error,
// or the empty string when err is not one.
func GetErrorMessage(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// WrapExternal wraps an error as an external provider error
func WrapExternal(message string, err error) error {
	return NewDomainError(ErrorTypeExternal, message, err)
}

// WrapUnavailable wraps an error from a backing store that could not be reached
func WrapUnavailable(message string, err error) error {
	return NewDomainError(ErrorTypeUnavailable, message, err)
}
