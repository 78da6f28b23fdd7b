package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation              = "VALIDATION_ERROR"
	ErrCodeNotFound                = "NOT_FOUND"
	ErrCodeAlreadyExists           = "ALREADY_EXISTS"
	ErrCodeUnauthorized            = "UNAUTHORIZED"
	ErrCodeQuotaExceeded           = "QUOTA_EXCEEDED"
	ErrCodeCollaboratorUnavailable = "COLLABORATOR_UNAVAILABLE"
	ErrCodeInternalError           = "INTERNAL_ERROR"
	ErrCodeInvalidOperation        = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrInvalidCategory      = NewDomainError(ErrCodeValidation, "invalid preference category")
	ErrEmptyQuery           = NewDomainError(ErrCodeValidation, "query cannot be empty")
)

// Not found errors
var (
	ErrProductNotFound     = NewDomainError(ErrCodeNotFound, "product not found")
	ErrPreferencesNotFound = NewDomainError(ErrCodeNotFound, "preferences not found")
)

// Already exists errors
var (
	ErrProductAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "product already exists")
)

// Collaborator errors
var (
	ErrCatalogUnavailable   = NewDomainError(ErrCodeCollaboratorUnavailable, "catalog store unavailable")
	ErrEmbeddingUnavailable = NewDomainError(ErrCodeCollaboratorUnavailable, "embedding provider unavailable")
)
