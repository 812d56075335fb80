package validator

import (
	"tidyslot/pkg/logger"
	"tidyslot/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// AvailabilityQuery asks for the bookable starts on Date. DurationHours is
// clamped later, so any integer is accepted here.
type AvailabilityQuery struct {
	Date          string `json:"date" validate:"required,date_ymd"`
	DurationHours int    `json:"duration_hours"`
	ProviderID    string `json:"provider_id,omitempty" validate:"omitempty,mongodb"`
}

type ConflictQuery struct {
	ProviderID       string `json:"provider_id" validate:"required,mongodb"`
	Date             string `json:"date" validate:"required,date_ymd"`
	Time             string `json:"time" validate:"required,hhmm"`
	DurationHours    int    `json:"duration_hours" validate:"required,min=1,max=8"`
	ExcludeBookingID string `json:"exclude_booking_id,omitempty" validate:"omitempty,mongodb"`
}

type AvailabilityValidator struct {
	validate *validator.Validate
}

func NewAvailabilityValidator(log *logger.Logger) *AvailabilityValidator {
	return &AvailabilityValidator{validate: validation.New(log)}
}

func (v *AvailabilityValidator) ValidateQuery(q *AvailabilityQuery) error {
	return validation.Struct(v.validate, q)
}

func (v *AvailabilityValidator) ValidateConflict(q *ConflictQuery) error {
	return validation.Struct(v.validate, q)
}
