package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   NotFoundWithID("Booking", "b1"),
			expected: "NOT_FOUND: Booking not found",
		},
		{
			name:     "with underlying error",
			appErr:   Internal("Failed to load bookings", errors.New("socket closed")),
			expected: "INTERNAL_ERROR: Failed to load bookings (caused by: socket closed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("socket closed")
	if !errors.Is(Internal("x", cause), cause) {
		t.Error("expected Internal to wrap its cause")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFoundWithID("Provider", "p1"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("cancelled"), CodeConflict, http.StatusConflict},
		{"slot conflict", SlotConflict("p1", "2025-01-15", "10:00-12:00", "b7"), CodeConflict, http.StatusConflict},
		{"provider busy", ProviderBusy("p1", "2025-01-15"), CodeConflict, http.StatusConflict},
		{"rate limited", RateLimited(3), CodeRateLimited, http.StatusTooManyRequests},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("mongo"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestSlotConflict_Details(t *testing.T) {
	err := SlotConflict("p1", "2025-01-15", "10:00-12:00", "b7")

	if err.Details["conflicting_booking"] != "b7" {
		t.Errorf("expected blocking booking in details, got %v", err.Details)
	}
	if err.Details["window"] != "10:00-12:00" {
		t.Errorf("expected window in details, got %v", err.Details)
	}
}

func TestProviderBusy_IsRetryable(t *testing.T) {
	err := ProviderBusy("p1", "2025-01-15")
	if err.Details["retryable"] != true {
		t.Errorf("expected retryable detail, got %v", err.Details)
	}
}

func TestHasCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("create booking: %w", SlotConflict("p1", "2025-01-15", "10:00-12:00", "b7"))

	if !HasCode(err, CodeConflict) {
		t.Error("expected wrapped conflict to match")
	}
	if HasCode(err, CodeNotFound) {
		t.Error("unexpected code match")
	}
	if HasCode(errors.New("plain"), CodeConflict) {
		t.Error("plain errors carry no code")
	}
}

func TestAsAppError(t *testing.T) {
	original := Validation("bad", nil)
	if got := AsAppError(fmt.Errorf("wrap: %w", original)); got != original {
		t.Errorf("expected the wrapped AppError back, got %v", got)
	}

	plain := errors.New("disk full")
	got := AsAppError(plain)
	if got.Code != CodeInternal || !errors.Is(got, plain) {
		t.Errorf("expected INTERNAL_ERROR wrapping the cause, got %v", got)
	}
}
