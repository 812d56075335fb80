package service

import (
	"context"
	"errors"
	"time"

	"tidyslot/internal/availability/validator"
	bookingsrepo "tidyslot/internal/bookings/repository"
	providerserrors "tidyslot/internal/providers/errors"
	providersrepo "tidyslot/internal/providers/repository"
	"tidyslot/pkg/config"
	apperrors "tidyslot/pkg/errors"
	"tidyslot/pkg/model"
	"tidyslot/pkg/scheduling"
)

type AvailabilityService interface {
	GetAvailability(ctx context.Context, q validator.AvailabilityQuery) ([]scheduling.SlotResult, error)
	CheckConflict(ctx context.Context, q validator.ConflictQuery) (bool, error)
}

type availabilityService struct {
	bookings  bookingsrepo.BookingRepository
	providers providersrepo.ProviderRepository
	validator *validator.AvailabilityValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewAvailabilityService(
	bookings bookingsrepo.BookingRepository,
	providers providersrepo.ProviderRepository,
	validator *validator.AvailabilityValidator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		bookings:  bookings,
		providers: providers,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *availabilityService) GetAvailability(ctx context.Context, q validator.AvailabilityQuery) ([]scheduling.SlotResult, error) {
	if err := s.validator.ValidateQuery(&q); err != nil {
		s.cfg.Log.Warn("Availability query validation failed", "date", q.Date, "error", err)
		return nil, apperrors.Validation("Invalid availability query", map[string]any{"error": err.Error()})
	}

	var (
		providers []*model.Provider
		bookings  []*model.Booking
		err       error
	)
	if q.ProviderID != "" {
		provider, err := s.findProvider(ctx, q.ProviderID)
		if err != nil {
			return nil, err
		}
		providers = []*model.Provider{provider}
		bookings, err = s.bookings.FindActiveByProviderAndDate(ctx, q.ProviderID, q.Date)
		if err != nil {
			s.cfg.Log.Error("Failed to load provider bookings", "provider_id", q.ProviderID, "date", q.Date, "error", err)
			return nil, apperrors.Internal("Failed to load bookings", err)
		}
	} else {
		providers, err = s.providers.FindAvailable(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to load available providers", "error", err)
			return nil, apperrors.Internal("Failed to load providers", err)
		}
		if len(providers) == 0 {
			return []scheduling.SlotResult{}, nil
		}
		bookings, err = s.bookings.FindActiveByDate(ctx, q.Date)
		if err != nil {
			s.cfg.Log.Error("Failed to load bookings", "date", q.Date, "error", err)
			return nil, apperrors.Internal("Failed to load bookings", err)
		}
	}

	slots := scheduling.GenerateSlots(scheduling.SlotRequest{
		Date:          q.Date,
		DurationHours: q.DurationHours,
		ProviderID:    q.ProviderID,
		Providers:     model.ProviderSnapshots(providers),
		Bookings:      s.snapshots(bookings),
		Window:        s.cfg.Window(),
		Now:           s.now(),
		Location:      s.cfg.Location(),
	})

	s.cfg.Log.Debug("Availability computed",
		"date", q.Date,
		"duration_hours", scheduling.ClampDuration(q.DurationHours),
		"provider_id", q.ProviderID,
		"providers", len(providers),
		"slots", len(slots),
	)
	return slots, nil
}

// CheckConflict reports whether the candidate window overlaps one of the
// provider's non-cancelled bookings, ignoring ExcludeBookingID.
func (s *availabilityService) CheckConflict(ctx context.Context, q validator.ConflictQuery) (bool, error) {
	if err := s.validator.ValidateConflict(&q); err != nil {
		s.cfg.Log.Warn("Conflict query validation failed", "provider_id", q.ProviderID, "error", err)
		return false, apperrors.Validation("Invalid conflict query", map[string]any{"error": err.Error()})
	}

	candidate, err := scheduling.IntervalFrom(q.Time, q.DurationHours)
	if err != nil {
		return false, apperrors.InvalidInput(err.Error())
	}

	bookings, err := s.bookings.FindActiveByProviderAndDate(ctx, q.ProviderID, q.Date)
	if err != nil {
		s.cfg.Log.Error("Failed to load provider bookings", "provider_id", q.ProviderID, "date", q.Date, "error", err)
		return false, apperrors.Internal("Failed to load bookings", err)
	}

	return scheduling.HasConflict(s.snapshots(bookings), candidate, q.ExcludeBookingID), nil
}

func (s *availabilityService) findProvider(ctx context.Context, id string) (*model.Provider, error) {
	provider, err := s.providers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, providerserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Provider", id)
		}
		if errors.Is(err, providerserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid provider ID format")
		}
		s.cfg.Log.Error("Failed to load provider", "provider_id", id, "error", err)
		return nil, apperrors.Internal("Failed to load provider", err)
	}
	return provider, nil
}

func (s *availabilityService) snapshots(bookings []*model.Booking) []scheduling.BookingSnapshot {
	out := make([]scheduling.BookingSnapshot, 0, len(bookings))
	for _, b := range bookings {
		snapshot, err := b.Snapshot()
		if err != nil {
			s.cfg.Log.Warn("Skipping booking with unreadable time", "id", b.ID, "time", b.Time, "error", err)
			continue
		}
		out = append(out, snapshot)
	}
	return out
}
