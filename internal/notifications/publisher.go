package notifications

import (
	"context"
	"fmt"
	"time"

	"tidyslot/pkg/kafka"
)

const (
	EventProviderAssigned = "booking.provider_assigned"
	SchemaVersion         = "1"
)

// ProviderAssignedEvent tells a provider they were given a booking.
type ProviderAssignedEvent struct {
	BookingID     string    `json:"booking_id"`
	ProviderID    string    `json:"provider_id"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	DurationHours int       `json:"duration_hours"`
	Strategy      string    `json:"strategy"`
	Score         float64   `json:"score"`
	DistanceKm    float64   `json:"distance_km"`
	AssignedAt    time.Time `json:"assigned_at"`
}

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type Notifier struct {
	publisher Publisher
	source    string
}

func NewNotifier(publisher Publisher, source string) *Notifier {
	return &Notifier{publisher: publisher, source: source}
}

// ProviderAssigned publishes the event keyed by provider id, so one provider's
// notifications stay ordered on a single partition.
func (n *Notifier) ProviderAssigned(ctx context.Context, event ProviderAssignedEvent) error {
	builder := kafka.NewMessage().
		WithKey(event.ProviderID).
		WithValue(event).
		WithEventType(EventProviderAssigned).
		WithSchemaVersion(SchemaVersion).
		WithSource(n.source).
		WithCorrelationID(event.BookingID)
	if err := builder.Err(); err != nil {
		return fmt.Errorf("failed to encode %s event: %w", EventProviderAssigned, err)
	}

	if err := n.publisher.Publish(ctx, builder.Build()); err != nil {
		return fmt.Errorf("failed to publish %s event for booking %s: %w", EventProviderAssigned, event.BookingID, err)
	}
	return nil
}
