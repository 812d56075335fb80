package service

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "tidyslot/internal/bookings/errors"
	"tidyslot/internal/bookings/repository"
	"tidyslot/internal/bookings/validator"
	providerserrors "tidyslot/internal/providers/errors"
	providersrepo "tidyslot/internal/providers/repository"
	"tidyslot/pkg/config"
	mongotx "tidyslot/pkg/db/mongo"
	apperrors "tidyslot/pkg/errors"
	"tidyslot/pkg/model"
	"tidyslot/pkg/sanitizer"
	"tidyslot/pkg/scheduling"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	Reschedule(ctx context.Context, id string, req *model.BookingReschedule) (*model.Booking, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
}

// Locker serialises writes to one provider's calendar day.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(context.Context) error, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	providers providersrepo.ProviderRepository
	locker    Locker
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	providers providersrepo.ProviderRepository,
	locker Locker,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		providers: providers,
		locker:    locker,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	if booking.Status != "" && booking.Status != config.Pending {
		s.cfg.Log.Warn("Rejected booking with client supplied status", "status", booking.Status)
		return apperrors.InvalidInput("Booking status is set by the scheduler and cannot be chosen on create")
	}
	booking.ID = ""
	booking.Status = config.Pending
	s.sanitize(booking)
	interval, err := s.validate(booking)
	if err != nil {
		return err
	}

	if booking.ProviderID == "" {
		if err := s.repo.Create(ctx, booking); err != nil {
			s.cfg.Log.Error("Failed to create booking", "error", err)
			return apperrors.Internal("Failed to create booking", err)
		}
		s.cfg.Log.Info("Booking created successfully",
			"id", booking.ID,
			"date", booking.Date,
			"time", booking.Time,
		)
		return nil
	}

	if err := s.verifyProvider(ctx, booking.ProviderID); err != nil {
		return err
	}

	release, err := s.acquireDayLock(ctx, booking.ProviderID, booking.Date)
	if err != nil {
		return err
	}
	defer s.releaseLock(ctx, release, booking.ProviderID, booking.Date)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoConflict(sessCtx, booking.ProviderID, booking.Date, interval, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to create booking", err, "provider_id", booking.ProviderID, "date", booking.Date)
		return err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"provider_id", booking.ProviderID,
		"date", booking.Date,
		"time", booking.Time,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(id, err)
	}

	return booking, nil
}

// Reschedule moves a booking to a new date and time. When the booking has a
// provider, the new window must not overlap the provider's other bookings.
func (s *bookingService) Reschedule(ctx context.Context, id string, req *model.BookingReschedule) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if err := s.validator.ValidateReschedule(req); err != nil {
		s.cfg.Log.Warn("Booking reschedule validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid reschedule input", map[string]any{"error": err.Error()})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(id, err)
	}
	if closed(existing) {
		return nil, apperrors.Conflict(fmt.Sprintf("Booking is %s and cannot be rescheduled", existing.Status))
	}

	updated := *existing
	updated.Date = req.Date
	updated.Time = req.Time
	if req.DurationHours != nil {
		updated.DurationHours = *req.DurationHours
	}
	interval, err := s.validate(&updated)
	if err != nil {
		return nil, err
	}

	apply := func(ctx context.Context) error {
		if err := s.repo.UpdateSchedule(ctx, id, updated.Date, updated.Time, updated.DurationHours); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to reschedule booking", err)
		}
		return nil
	}

	if updated.ProviderID == "" {
		err = apply(ctx)
	} else {
		release, lockErr := s.acquireDayLock(ctx, updated.ProviderID, updated.Date)
		if lockErr != nil {
			return nil, lockErr
		}
		defer s.releaseLock(ctx, release, updated.ProviderID, updated.Date)

		err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			if err := s.verifyNoConflict(sessCtx, updated.ProviderID, updated.Date, interval, id); err != nil {
				return err
			}
			return apply(sessCtx)
		})
	}
	if err != nil {
		s.logFailure("Failed to reschedule booking", err, "id", id)
		return nil, err
	}

	s.cfg.Log.Info("Booking rescheduled successfully",
		"id", id,
		"date", updated.Date,
		"time", updated.Time,
		"duration_hours", updated.DurationHours,
	)
	return &updated, nil
}

// Cancel marks a booking cancelled. Cancelling a confirmed or in-progress
// booking gives the provider's load back. Cancelling twice is a no-op.
func (s *bookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(id, err)
	}
	switch existing.Status {
	case config.Cancelled:
		return existing, nil
	case config.Completed:
		return nil, apperrors.Conflict("Booking is completed and cannot be cancelled")
	}

	releaseLoad := existing.ProviderID != "" &&
		(existing.Status == config.Confirmed || existing.Status == config.InProgress)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.UpdateStatus(sessCtx, id, config.Cancelled); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to cancel booking", err)
		}
		if releaseLoad {
			if err := s.providers.ReleaseLoad(sessCtx, existing.ProviderID); err != nil {
				return apperrors.Internal("Failed to release provider load", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to cancel booking", err, "id", id)
		return nil, err
	}

	cancelled := *existing
	cancelled.Status = config.Cancelled
	s.cfg.Log.Info("Booking cancelled successfully", "id", id, "provider_id", existing.ProviderID)
	return &cancelled, nil
}

// --- Helpers ---

func (s *bookingService) sanitize(b *model.Booking) {
	b.CustomerID = sanitizer.NormalizeID(b.CustomerID)
	b.ProviderID = sanitizer.NormalizeID(b.ProviderID)
	b.ServiceType = sanitizer.NormalizeLabel(b.ServiceType)
	b.Address = sanitizer.NormalizeText(b.Address)
	b.Notes = sanitizer.NormalizeText(b.Notes)
}

// validate checks the booking and returns the window it occupies.
func (s *bookingService) validate(booking *model.Booking) (scheduling.TimeInterval, error) {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return scheduling.TimeInterval{}, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	interval, err := booking.Interval()
	if err != nil {
		s.cfg.Log.Warn("Booking schedule is unreadable", "time", booking.Time, "error", err)
		return scheduling.TimeInterval{}, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return interval, nil
}

func (s *bookingService) verifyProvider(ctx context.Context, providerID string) error {
	if _, err := s.providers.FindByID(ctx, providerID); err != nil {
		if errors.Is(err, providerserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Provider", providerID)
		}
		if errors.Is(err, providerserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid provider ID format")
		}
		return apperrors.Internal("Failed to check provider existence", err)
	}
	return nil
}

// verifyNoConflict rejects interval when it overlaps another non-cancelled
// booking of the provider on date. excludeID lets a booking keep its own slot.
func (s *bookingService) verifyNoConflict(ctx context.Context, providerID, date string, interval scheduling.TimeInterval, excludeID string) error {
	existing, err := s.repo.FindActiveByProviderAndDate(ctx, providerID, date)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	snapshots := make([]scheduling.BookingSnapshot, 0, len(existing))
	for _, b := range existing {
		snapshot, err := b.Snapshot()
		if err != nil {
			s.cfg.Log.Warn("Skipping booking with unreadable time", "id", b.ID, "time", b.Time, "error", err)
			continue
		}
		snapshots = append(snapshots, snapshot)
	}

	if blocking, found := scheduling.FindConflict(snapshots, interval, excludeID); found {
		window := fmt.Sprintf("%s-%s", scheduling.FormatMinutes(interval.Start), scheduling.FormatMinutes(interval.End))
		return apperrors.SlotConflict(providerID, date, window, blocking.ID)
	}
	return nil
}

func (s *bookingService) acquireDayLock(ctx context.Context, providerID, date string) (func(context.Context) error, error) {
	release, err := s.locker.Acquire(ctx, mongotx.ProviderDayKey(providerID, date))
	if err != nil {
		if errors.Is(err, mongotx.ErrLocked) {
			return nil, apperrors.ProviderBusy(providerID, date)
		}
		return nil, apperrors.Internal("Failed to acquire booking lock", err)
	}
	return release, nil
}

func (s *bookingService) releaseLock(ctx context.Context, release func(context.Context) error, providerID, date string) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		s.cfg.Log.Warn("Failed to release booking lock",
			"provider_id", providerID,
			"date", date,
			"error", err,
		)
	}
}

func (s *bookingService) mapLookupError(id string, err error) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal("Failed to retrieve booking", err)
}

func (s *bookingService) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if apperrors.HasCode(err, apperrors.CodeConflict) {
		s.cfg.Log.Warn(msg, args...)
		return
	}
	s.cfg.Log.Error(msg, args...)
}

func closed(b *model.Booking) bool {
	return b.Status == config.Cancelled || b.Status == config.Completed
}
