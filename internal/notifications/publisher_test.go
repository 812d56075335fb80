package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"tidyslot/pkg/kafka"
)

type mockPublisher struct {
	messages []kafka.Message
	err      error
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func TestNotifier_ProviderAssigned(t *testing.T) {
	pub := &mockPublisher{}
	n := NewNotifier(pub, "scheduler")

	event := ProviderAssignedEvent{
		BookingID:     "b1",
		ProviderID:    "p1",
		Date:          "2025-01-15",
		Time:          "10:00",
		DurationHours: 2,
		Strategy:      "balanced",
		Score:         754,
		DistanceKm:    1.2,
		AssignedAt:    time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
	}
	if err := n.ProviderAssigned(context.Background(), event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(pub.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.Key != "p1" {
		t.Errorf("expected key p1, got %s", msg.Key)
	}
	if msg.GetEventType() != EventProviderAssigned {
		t.Errorf("expected event type %s, got %s", EventProviderAssigned, msg.GetEventType())
	}
	if msg.GetCorrelationID() != "b1" || msg.GetEventID() == "" {
		t.Errorf("unexpected headers %v", msg.Headers)
	}

	var decoded ProviderAssignedEvent
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.BookingID != "b1" || decoded.Score != 754 {
		t.Errorf("unexpected payload %+v", decoded)
	}
}

func TestNotifier_PublishFailure(t *testing.T) {
	n := NewNotifier(&mockPublisher{err: errors.New("broker down")}, "scheduler")

	err := n.ProviderAssigned(context.Background(), ProviderAssignedEvent{BookingID: "b1", ProviderID: "p1"})
	if err == nil {
		t.Fatal("expected error")
	}
}
