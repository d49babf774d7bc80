package services

import (
	"errors"
	"net/http"
	"strings"
)

// ErrorKind classifies a ServiceError into the error taxonomy. Controllers
// map kinds to HTTP statuses; the Code carries the specific reason.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindDependency
)

// ServiceError is the error type returned by the service layer. No
// expected control flow uses plain errors: a missing record, a violated
// invariant or a permission failure each carry their kind and code so the
// caller can respond without string matching.
type ServiceError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// HTTPStatus returns the HTTP status code for the error kind
func (e *ServiceError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindDependency:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// NewValidationError returns a ServiceError for malformed input
func NewValidationError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindValidation, Code: code, Message: message}
}

// NewNotFoundError returns a ServiceError for a missing (or hidden) record
func NewNotFoundError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Code: code, Message: message}
}

// NewConflictError returns a ServiceError for an invariant violation
func NewConflictError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindConflict, Code: code, Message: message}
}

// NewForbiddenError returns a ServiceError for a permission failure
func NewForbiddenError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindForbidden, Code: code, Message: message}
}

// NewDependencyError returns a ServiceError for a failing collaborator
func NewDependencyError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindDependency, Code: code, Message: message}
}

// AsServiceError extracts a *ServiceError from err, or wraps err as a
// dependency failure of the persistence layer
func AsServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return NewDependencyError("DATABASE_ERROR", "Persistence operation failed")
}

// isUniqueViolation detects a unique-constraint error from the database.
// String matching keeps it portable across PostgreSQL and SQLite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique")
}
