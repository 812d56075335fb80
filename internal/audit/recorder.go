package audit

import (
	"context"
	"time"

	"tidyslot/internal/audit/repository"
	"tidyslot/pkg/config"
	"tidyslot/pkg/model"
)

const ResourceBooking = "booking"

// Recorder writes audit entries for state changes made by the scheduling core.
type Recorder struct {
	repo repository.AuditRepository
	now  func() time.Time
}

func NewRecorder(repo repository.AuditRepository) *Recorder {
	return &Recorder{repo: repo, now: time.Now}
}

// ProviderAssigned records that an auto-assignment batch gave bookingID to providerID.
func (r *Recorder) ProviderAssigned(ctx context.Context, bookingID, providerID, strategy string, distanceKm float64) error {
	return r.repo.Create(ctx, &model.AuditEntry{
		Action:       config.AuditActionAutoAssign,
		ResourceType: ResourceBooking,
		ResourceID:   bookingID,
		Metadata: map[string]any{
			"provider_id": providerID,
			"strategy":    strategy,
			"distance_km": distanceKm,
		},
		CreatedAt: r.now().UTC().Truncate(time.Millisecond),
	})
}
