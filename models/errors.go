package models

import "fmt"

// ErrorKind is the stable error classification surfaced to API clients.
type ErrorKind string

const (
	KindValidation       ErrorKind = "VALIDATION_ERROR"
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindForbidden        ErrorKind = "FORBIDDEN"
	KindInvalidOperation ErrorKind = "INVALID_OPERATION"
	KindConflict         ErrorKind = "CONFLICT"
	KindDependency       ErrorKind = "DEPENDENCY_FAILURE"
)

// AppError is a classified application error.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: resource + " not found"}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewInvalidOperationError(message string) *AppError {
	return &AppError{Kind: KindInvalidOperation, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// NewDependencyError wraps a persistence or storage collaborator failure.
// The message must say which invariant may be at risk when a multi-document
// write stopped halfway.
func NewDependencyError(message string, err error) *AppError {
	return &AppError{Kind: KindDependency, Message: message, Err: err}
}

// KindOf extracts the classification from err, defaulting to
// DEPENDENCY_FAILURE for unclassified errors.
func KindOf(err error) ErrorKind {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Kind
	}
	return KindDependency
}
