package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// StatusCode maps the error code onto an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInvalidInput:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrInvalidTransition, ErrConflict:
		return http.StatusConflict
	case ErrAnalysisFailed, ErrGenerationFailed, ErrServiceFailure:
		return http.StatusBadGateway
	case ErrTranscodeFailure, ErrEmptyHistory:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrInvalidInput
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrConflict
	ErrInvalidTransition
	ErrAnalysisFailed
	ErrGenerationFailed
	ErrTranscodeFailure
	ErrServiceFailure
	ErrEmptyHistory
	ErrPersistenceFailed
)

func newError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NotFound(resource string, err error) *AppError {
	return newError(ErrNotFound, fmt.Sprintf("%s not found", resource), err)
}

func InvalidInput(message string, err error) *AppError {
	return newError(ErrInvalidInput, message, err)
}

func Unauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return newError(ErrUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return newError(ErrForbidden, message, nil)
}

func Conflict(message string, err error) *AppError {
	return newError(ErrConflict, message, err)
}

func InvalidTransition(message string) *AppError {
	return newError(ErrInvalidTransition, message, nil)
}

func AnalysisFailed(err error) *AppError {
	return newError(ErrAnalysisFailed, "symptom analysis failed", err)
}

func GenerationFailed(what string, err error) *AppError {
	return newError(ErrGenerationFailed, fmt.Sprintf("failed to generate %s", what), err)
}

func TranscodeFailure(err error) *AppError {
	return newError(ErrTranscodeFailure, "failed to convert audio", err)
}

func ServiceFailure(service string, err error) *AppError {
	return newError(ErrServiceFailure, fmt.Sprintf("%s service failed", service), err)
}

func EmptyHistory() *AppError {
	return newError(ErrEmptyHistory, "no consultation history to summarize", nil)
}

func PersistenceFailed(err error) *AppError {
	return newError(ErrPersistenceFailed, "failed to save record", err)
}

func Internal(err error) *AppError {
	return newError(ErrInternal, "internal server error", err)
}

// CodeOf returns the code of the first AppError in the chain, or ErrInternal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}
