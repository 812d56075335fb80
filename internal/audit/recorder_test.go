package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"tidyslot/pkg/config"
	"tidyslot/pkg/model"
)

type mockAuditRepository struct {
	entries []*model.AuditEntry
	err     error
}

func (m *mockAuditRepository) Create(ctx context.Context, entry *model.AuditEntry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func TestRecorder_ProviderAssigned(t *testing.T) {
	repo := &mockAuditRepository{}
	r := NewRecorder(repo)
	fixed := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	if err := r.ProviderAssigned(context.Background(), "b1", "p1", "balanced", 2.5); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(repo.entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.Action != config.AuditActionAutoAssign || entry.ResourceID != "b1" || entry.ResourceType != ResourceBooking {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.Metadata["provider_id"] != "p1" || entry.Metadata["strategy"] != "balanced" || entry.Metadata["distance_km"] != 2.5 {
		t.Errorf("unexpected metadata %v", entry.Metadata)
	}
	if !entry.CreatedAt.Equal(fixed) {
		t.Errorf("expected created_at %v, got %v", fixed, entry.CreatedAt)
	}
}

func TestRecorder_PropagatesFailure(t *testing.T) {
	r := NewRecorder(&mockAuditRepository{err: errors.New("write concern")})

	if err := r.ProviderAssigned(context.Background(), "b1", "p1", "rating", 0); err == nil {
		t.Fatal("expected error")
	}
}
