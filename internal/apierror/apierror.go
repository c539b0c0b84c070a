// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"net/http"

	"vendapos/internal/apperror"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// RequestID is set on 5xx answers so support can find the log line.
type APIError struct {
	Detail    string         `json:"detail"`
	Code      string         `json:"code,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Fields: fields}
}

// FromError maps a service error to a status code and a safe envelope.
// Integrity failures never expose their cause.
func FromError(err error) (int, *APIError) {
	appErr, ok := apperror.As(err)
	if !ok {
		return http.StatusInternalServerError, New("Erro interno do servidor")
	}
	body := &APIError{Detail: appErr.Message, Code: appErr.Code, Details: appErr.Details}
	switch appErr.Kind {
	case apperror.KindValidation:
		return http.StatusUnprocessableEntity, body
	case apperror.KindConflict:
		return http.StatusConflict, body
	case apperror.KindNotFound:
		return http.StatusNotFound, body
	default:
		return http.StatusInternalServerError, &APIError{Detail: appErr.Message, Code: appErr.Code}
	}
}
