package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CodeAuthenticationRequired ErrorCode = "AUTHENTICATION_REQUIRED"
	CodeInvalidCredentials     ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken           ErrorCode = "INVALID_TOKEN"
	CodePermissionDenied       ErrorCode = "PERMISSION_DENIED"
	CodeNotFound               ErrorCode = "NOT_FOUND"
	CodeInvalidTarget          ErrorCode = "INVALID_TARGET"
	CodeValidation             ErrorCode = "VALIDATION_FAILED"
	CodeCurrencyLookupFailed   ErrorCode = "CURRENCY_LOOKUP_FAILED"
	CodeProvider               ErrorCode = "PROVIDER_ERROR"
	CodeDuplicateSubscription  ErrorCode = "DUPLICATE_SUBSCRIPTION"
	CodeEmailTaken             ErrorCode = "EMAIL_TAKEN"
	CodeRateLimited            ErrorCode = "RATE_LIMITED"
	CodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// AppError is the error type returned by services. HTTPCode is the status
// the transport layer answers with; Err keeps the underlying cause.
type AppError struct {
	Code     ErrorCode
	Message  string
	HTTPCode int
	Err      error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so wrapped copies compare equal to the sentinels below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode, Err: err}
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

// WithError returns a copy of e wrapping err.
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

var (
	ErrAuthenticationRequired = New(CodeAuthenticationRequired, "Authentication required", http.StatusUnauthorized)
	ErrInvalidCredentials     = New(CodeInvalidCredentials, "Invalid email or password", http.StatusUnauthorized)
	ErrInvalidToken           = New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
	ErrPermissionDenied       = New(CodePermissionDenied, "You do not have permission to perform this action", http.StatusForbidden)
	ErrNotFound               = New(CodeNotFound, "Not found", http.StatusNotFound)
	ErrInvalidTarget          = New(CodeInvalidTarget, "Exactly one of course or lesson must be specified", http.StatusBadRequest)
	ErrValidation             = New(CodeValidation, "Validation failed", http.StatusBadRequest)
	ErrCurrencyLookupFailed   = New(CodeCurrencyLookupFailed, "Currency rate lookup failed", http.StatusInternalServerError)
	ErrProvider               = New(CodeProvider, "Payment provider error", http.StatusInternalServerError)
	ErrDuplicateSubscription  = New(CodeDuplicateSubscription, "Subscription already exists", http.StatusConflict)
	ErrEmailTaken             = New(CodeEmailTaken, "User already exists", http.StatusConflict)
	ErrRateLimited            = New(CodeRateLimited, "Too many requests", http.StatusTooManyRequests)
	ErrInternal               = New(CodeInternal, "Internal server error", http.StatusInternalServerError)
)

// NotFound returns ErrNotFound with a message naming the missing entity.
func NotFound(entity string) *AppError {
	return ErrNotFound.WithMessage(entity + " not found.")
}

// Provider wraps a payment provider failure, surfacing the provider's text.
func Provider(message string, err error) *AppError {
	return Wrap(err, CodeProvider, message, http.StatusInternalServerError)
}

// Internal wraps an unexpected error.
func Internal(err error) *AppError {
	return ErrInternal.WithError(err)
}

// From converts any error into an AppError, falling back to ErrInternal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
