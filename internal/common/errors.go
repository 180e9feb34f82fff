package common

import "net/http"

// Error codes returned by the storefront API. Handlers must only emit codes
// from this set so the SPA can switch on them.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidation       = "VALIDATION"
	CodeNotFound         = "NOT_FOUND"
	CodeNoPrice          = "NO_PRICE"
	CodeUpstream         = "UPSTREAM"
	CodeInternal         = "INTERNAL"
	CodeIdempotentReplay = "IDEMPOTENT_REPLAY"
	CodeRateLimited      = "RATE_LIMITED"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NotFoundError marks a catalog record that does not exist upstream.
func NotFoundError(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, HTTPStatus: http.StatusNotFound}
}

// ValidationError marks a request the caller can correct and resubmit.
func ValidationError(message string, details any) *AppError {
	return &AppError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusUnprocessableEntity, Details: details}
}
