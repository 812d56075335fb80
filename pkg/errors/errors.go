package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInvalidInput = "INVALID_INPUT"
	CodeRateLimited  = "RATE_LIMITED"
)

// AppError is the error every service returns to its handler. Code is the
// stable machine readable part; Message is safe to show to callers and Err
// never leaves the process.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func NotFoundWithID(resource, id string) *AppError {
	err := New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
	err.Details = map[string]any{"resource": resource, "id": id}
	return err
}

func Validation(message string, details map[string]any) *AppError {
	err := New(CodeValidation, message, http.StatusUnprocessableEntity)
	err.Details = details
	return err
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

// Conflict covers lifecycle conflicts, e.g. rescheduling a cancelled booking.
func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

// SlotConflict reports that the requested window collides with an existing
// booking. The blocking booking id is exposed in details so clients can show it.
func SlotConflict(providerID, date, window, blockingID string) *AppError {
	err := Conflict("provider already has a booking in this time window")
	err.Details = map[string]any{
		"provider_id":         providerID,
		"date":                date,
		"window":              window,
		"conflicting_booking": blockingID,
	}
	return err
}

// ProviderBusy is returned when another writer holds the provider's lock.
// The caller may retry once the lock is released.
func ProviderBusy(providerID, date string) *AppError {
	err := Conflict("provider's day is currently being booked by another request, please retry")
	err.Details = map[string]any{"provider_id": providerID, "date": date, "retryable": true}
	return err
}

func RateLimited(retryAfterSeconds int) *AppError {
	err := New(CodeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests)
	err.Details = map[string]any{"retry_after_seconds": retryAfterSeconds}
	return err
}

func Internal(message string, err error) *AppError {
	appErr := New(CodeInternal, message, http.StatusInternalServerError)
	appErr.Err = err
	return appErr
}

func Timeout(message string) *AppError {
	return New(CodeTimeout, message, http.StatusGatewayTimeout)
}

func Unavailable(service string) *AppError {
	return New(CodeUnavailable, fmt.Sprintf("%s is temporarily unavailable", service), http.StatusServiceUnavailable)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// HasCode reports whether err is (or wraps) an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
