package model

import (
	"time"

	"tidyslot/pkg/assignment"
	"tidyslot/pkg/config"
	"tidyslot/pkg/scheduling"
)

type Booking struct {
	ID            string               `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CustomerID    string               `json:"customer_id" bson:"customer_id" validate:"required,min=1,max=64"`
	ProviderID    string               `json:"provider_id,omitempty" bson:"provider_id" validate:"omitempty,mongodb"`
	ServiceType   string               `json:"service_type" bson:"service_type" validate:"required,min=2,max=100"`
	Date          string               `json:"date" bson:"date" validate:"required,date_ymd"`
	Time          string               `json:"time" bson:"time" validate:"required,hhmm"`
	DurationHours int                  `json:"duration_hours" bson:"duration_hours" validate:"required,min=1,max=8"`
	Status        config.BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed in_progress completed cancelled"`
	Location      *GeoPoint            `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty"`
	Address       string               `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,max=200"`
	Notes         string               `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=1000"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt     time.Time            `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type BookingReschedule struct {
	Date          string `json:"date" validate:"required,date_ymd"`
	Time          string `json:"time" validate:"required,hhmm"`
	DurationHours *int   `json:"duration_hours,omitempty" validate:"omitempty,min=1,max=8"`
}

func (b *Booking) Interval() (scheduling.TimeInterval, error) {
	return scheduling.IntervalFrom(b.Time, b.DurationHours)
}

func (b *Booking) Snapshot() (scheduling.BookingSnapshot, error) {
	interval, err := b.Interval()
	if err != nil {
		return scheduling.BookingSnapshot{}, err
	}
	return scheduling.BookingSnapshot{
		ID:         b.ID,
		ProviderID: b.ProviderID,
		Date:       b.Date,
		Interval:   interval,
		Status:     string(b.Status),
	}, nil
}

func (b *Booking) JobRequest() (assignment.JobRequest, error) {
	interval, err := b.Interval()
	if err != nil {
		return assignment.JobRequest{}, err
	}
	return assignment.JobRequest{
		ID:       b.ID,
		Date:     b.Date,
		Interval: interval,
		Location: b.Location.Point(),
	}, nil
}

func (b *Booking) Unassigned() bool {
	return b.ProviderID == "" && b.Status == config.Pending
}
