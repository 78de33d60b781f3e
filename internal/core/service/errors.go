package service

import (
	"errors"
	"net/http"
)

// Error kinds surfaced by the services. Match with errors.Is.
var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidParameter       = errors.New("invalid parameter")
	ErrNotFound               = errors.New("not found")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrScopeNotGranted        = errors.New("scope not granted")
)

// ServiceError carries the kind of failure, the HTTP status it maps to and a
// message safe to show the caller.
type ServiceError struct {
	Kind    error
	Code    int
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Kind
}

func NewAuthenticationRequired() *ServiceError {
	return &ServiceError{
		Kind:    ErrAuthenticationRequired,
		Code:    http.StatusUnauthorized,
		Message: "Incorrect authentication credentials.",
	}
}

func NewInvalidParameter(message string) *ServiceError {
	return &ServiceError{Kind: ErrInvalidParameter, Code: http.StatusBadRequest, Message: message}
}

func NewNotFound(message string) *ServiceError {
	return &ServiceError{Kind: ErrNotFound, Code: http.StatusNotFound, Message: message}
}

func NewInvalidCredentials(message string) *ServiceError {
	return &ServiceError{Kind: ErrInvalidCredentials, Code: http.StatusUnauthorized, Message: message}
}

func NewScopeNotGranted(scope string) *ServiceError {
	return &ServiceError{
		Kind:    ErrScopeNotGranted,
		Code:    http.StatusForbidden,
		Message: "Scope " + scope + " is not granted to this client",
	}
}
