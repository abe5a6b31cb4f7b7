package app_errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthorizationError is returned when the acting identity may not perform
// the requested operation. The stored state is never touched.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

func NewAuthorizationError(format string, args ...any) *AuthorizationError {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

// AuthenticationError means the caller could not prove who they are. The
// message never says which credential was wrong.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{Message: message}
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}

	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// ExternalServiceError carries the upstream status code and raw body so
// callers can surface what the remote system actually said.
type ExternalServiceError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s responded with status %d: %s", e.Service, e.StatusCode, e.Body)
}

const (
	ErrorFieldRequired = "FIELD_REQUIRED"
	ErrorFieldInvalid  = "FIELD_INVALID"
)

type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewRequiredFieldError(field string) *ValidationError {
	return &ValidationError{
		Code:    ErrorFieldRequired,
		Message: fmt.Sprintf("%s is required", field),
		Field:   field,
	}
}

func NewInvalidFieldError(field, message string) *ValidationError {
	return &ValidationError{
		Code:    ErrorFieldInvalid,
		Message: message,
		Field:   field,
	}
}

// ConflictError means a precondition on stored state no longer holds,
// e.g. the status changed between read and write.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func HTTPStatus(err error) int {
	var authenticationErr *AuthenticationError
	var authorizationErr *AuthorizationError
	var notFoundErr *NotFoundError
	var configurationErr *ConfigurationError
	var externalErr *ExternalServiceError
	var validationErr *ValidationError
	var conflictErr *ConflictError

	switch {
	case errors.As(err, &authenticationErr):
		return http.StatusUnauthorized
	case errors.As(err, &authorizationErr):
		return http.StatusForbidden
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &configurationErr):
		return http.StatusPreconditionFailed
	case errors.As(err, &externalErr):
		return http.StatusBadGateway
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &conflictErr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}
