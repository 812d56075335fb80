package validation

import (
	"errors"
	"io"
	"strings"
	"testing"

	"tidyslot/pkg/logger"
)

type sample struct {
	Date  string `validate:"required,date_ymd"`
	Time  string `validate:"required,hhmm"`
	Hours int    `validate:"min=1,max=8"`
}

func newTestValidator() *sample {
	return &sample{Date: "2025-01-15", Time: "09:00", Hours: 2}
}

func TestStruct(t *testing.T) {
	v := New(logger.New(logger.Config{Output: io.Discard}))

	tests := []struct {
		name      string
		mutate    func(s *sample)
		wantField string
		wantMsg   string
	}{
		{name: "valid", mutate: func(s *sample) {}},
		{name: "bad date", mutate: func(s *sample) { s.Date = "15/01/2025" }, wantField: "Date", wantMsg: "YYYY-MM-DD"},
		{name: "impossible date", mutate: func(s *sample) { s.Date = "2025-02-30" }, wantField: "Date", wantMsg: "YYYY-MM-DD"},
		{name: "bad time", mutate: func(s *sample) { s.Time = "9:00" }, wantField: "Time", wantMsg: "HH:MM"},
		{name: "hour too large", mutate: func(s *sample) { s.Time = "24:00" }, wantField: "Time", wantMsg: "HH:MM"},
		{name: "missing time", mutate: func(s *sample) { s.Time = "" }, wantField: "Time", wantMsg: "is required"},
		{name: "too long", mutate: func(s *sample) { s.Hours = 9 }, wantField: "Hours", wantMsg: "at most 8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestValidator()
			tt.mutate(s)
			err := Struct(v, s)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var validationErrs ValidationErrors
			if !errors.As(err, &validationErrs) {
				t.Fatalf("expected ValidationErrors, got %T (%v)", err, err)
			}
			if len(validationErrs) != 1 {
				t.Fatalf("expected exactly 1 error, got %d: %v", len(validationErrs), validationErrs)
			}
			if validationErrs[0].Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, validationErrs[0].Field)
			}
			if !strings.Contains(validationErrs[0].Message, tt.wantMsg) {
				t.Errorf("expected message to contain %q, got %q", tt.wantMsg, validationErrs[0].Message)
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "Date", Message: "Date is required"},
		{Field: "Time", Message: "Time is required"},
	}
	want := "validation failed: 2 error(s): [Date: Date is required; Time: Time is required]"
	if errs.Error() != want {
		t.Errorf("expected %q, got %q", want, errs.Error())
	}
	if (ValidationErrors{}).Error() != "" {
		t.Error("expected empty string for no errors")
	}
}

func TestIsDate(t *testing.T) {
	if !IsDate("2024-02-29") {
		t.Error("leap day should be valid")
	}
	for _, bad := range []string{"2025-1-15", "2025-01-15T00:00:00Z", "", "20250115"} {
		if IsDate(bad) {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}
