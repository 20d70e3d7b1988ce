// Package errors provides unified error handling with structured error codes.
// Codes map the failure taxonomy of the capture/OCR pipeline and its
// collaborators onto HTTP statuses for the API layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a failure class.
type Code string

const (
	CodeUnknown              Code = "UNKNOWN"
	CodeInvalidArgument      Code = "INVALID_ARGUMENT"
	CodeCaptureUnavailable   Code = "CAPTURE_UNAVAILABLE"
	CodeExtractorUnavailable Code = "EXTRACTOR_UNAVAILABLE"
	CodeExtractorTimeout     Code = "EXTRACTOR_TIMEOUT"
	CodeLLMUnavailable       Code = "LLM_UNAVAILABLE"
	CodeLLMRateLimited       Code = "LLM_RATE_LIMITED"
	CodeLLMAPIError          Code = "LLM_API_ERROR"
	CodeSearchUnavailable    Code = "SEARCH_UNAVAILABLE"
	CodeSearchFailed         Code = "SEARCH_FAILED"
)

// httpStatusMap maps error codes to HTTP statuses.
var httpStatusMap = map[Code]int{
	CodeUnknown:              http.StatusInternalServerError,
	CodeInvalidArgument:      http.StatusBadRequest,
	CodeCaptureUnavailable:   http.StatusServiceUnavailable,
	CodeExtractorUnavailable: http.StatusServiceUnavailable,
	CodeExtractorTimeout:     http.StatusGatewayTimeout,
	CodeLLMUnavailable:       http.StatusServiceUnavailable,
	CodeLLMRateLimited:       http.StatusTooManyRequests,
	CodeLLMAPIError:          http.StatusBadGateway,
	CodeSearchUnavailable:    http.StatusServiceUnavailable,
	CodeSearchFailed:         http.StatusBadGateway,
}

// AppError is the base error type with structured code and optional cause.
type AppError struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Cause != nil {
		s += fmt.Sprintf(": %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// HTTPStatus returns the HTTP status for the error's code.
func (e *AppError) HTTPStatus() int {
	if s, ok := httpStatusMap[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// New creates a new AppError with the given code and message.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates a new AppError with formatted message.
func Newf(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps an existing error with formatted message.
func Wrapf(err error, code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// CodeOf extracts the code from an error chain, CodeUnknown if absent.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// IsCode checks if an error carries a specific code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// HTTPStatus returns the HTTP status for any error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// IsRetryable returns true if the error is potentially transient.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case CodeLLMRateLimited, CodeLLMAPIError, CodeSearchFailed, CodeExtractorTimeout:
		return true
	default:
		return false
	}
}
