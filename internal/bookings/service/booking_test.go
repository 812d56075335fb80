package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	bookingserrors "tidyslot/internal/bookings/errors"
	"tidyslot/internal/bookings/validator"
	providerserrors "tidyslot/internal/providers/errors"
	"tidyslot/pkg/config"
	mongotx "tidyslot/pkg/db/mongo"
	apperrors "tidyslot/pkg/errors"
	"tidyslot/pkg/logger"
	"tidyslot/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	providerA = "507f1f77bcf86cd799439011"
	bookingX  = "65a1b2c3d4e5f60718293a4b"
)

// ────── Mock repositories ──────

type mockBookingRepository struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	created  []*model.Booking
	txCalls  int
	createFn func(b *model.Booking) error
}

func newMockBookingRepository(existing ...*model.Booking) *mockBookingRepository {
	m := &mockBookingRepository{bookings: map[string]*model.Booking{}}
	for _, b := range existing {
		m.bookings[b.ID] = b
	}
	return m
}

func (m *mockBookingRepository) Create(ctx context.Context, b *model.Booking) error {
	if m.createFn != nil {
		if err := m.createFn(b); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = "new-booking"
	}
	copied := *b
	m.bookings[b.ID] = &copied
	m.created = append(m.created, &copied)
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "bad" {
		return nil, bookingserrors.ErrInvalidID
	}
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *mockBookingRepository) FindActiveByProviderAndDate(ctx context.Context, providerID, date string) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Booking{}
	for _, b := range m.bookings {
		if b.ProviderID == providerID && b.Date == date && b.Status != config.Cancelled {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) FindActiveByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	return nil, errors.New("not used")
}

func (m *mockBookingRepository) FindActiveByProvidersAndDates(ctx context.Context, providerIDs, dates []string) ([]*model.Booking, error) {
	return nil, errors.New("not used")
}

func (m *mockBookingRepository) FindUnassigned(ctx context.Context, ids []string, limit int) ([]*model.Booking, error) {
	return nil, errors.New("not used")
}

func (m *mockBookingRepository) UpdateSchedule(ctx context.Context, id, date, hhmm string, durationHours int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	b.Date, b.Time, b.DurationHours = date, hhmm, durationHours
	return nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, status config.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	b.Status = status
	return nil
}

func (m *mockBookingRepository) AssignProvider(ctx context.Context, id, providerID string) error {
	return errors.New("not used")
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.mu.Lock()
	m.txCalls++
	m.mu.Unlock()
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockProviderRepository struct {
	providers map[string]*model.Provider
	released  []string
}

func (m *mockProviderRepository) FindByID(ctx context.Context, id string) (*model.Provider, error) {
	if id == "bad" {
		return nil, providerserrors.ErrInvalidID
	}
	p, ok := m.providers[id]
	if !ok {
		return nil, providerserrors.ErrNotFound
	}
	return p, nil
}

func (m *mockProviderRepository) FindAvailable(ctx context.Context) ([]*model.Provider, error) {
	return nil, errors.New("not used")
}

func (m *mockProviderRepository) MarkAssigned(ctx context.Context, id string) error {
	return errors.New("not used")
}

func (m *mockProviderRepository) ReleaseLoad(ctx context.Context, id string) error {
	m.released = append(m.released, id)
	return nil
}

type mockLocker struct {
	held     map[string]bool
	acquired []string
	released []string
}

func newMockLocker() *mockLocker {
	return &mockLocker{held: map[string]bool{}}
}

func (m *mockLocker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	if m.held[key] {
		return nil, mongotx.ErrLocked
	}
	m.held[key] = true
	m.acquired = append(m.acquired, key)
	return func(context.Context) error {
		delete(m.held, key)
		m.released = append(m.released, key)
		return nil
	}, nil
}

// ────── Fixtures ──────

func newTestService(repo *mockBookingRepository, locker *mockLocker) (*bookingService, *mockProviderRepository) {
	log := logger.Discard()
	providers := &mockProviderRepository{providers: map[string]*model.Provider{
		providerA: {ID: providerA, Name: "Ana", AvailabilityStatus: config.Available, Rating: 4.5},
	}}
	svc := &bookingService{
		repo:      repo,
		providers: providers,
		locker:    locker,
		validator: validator.NewBookingValidator(log),
		cfg:       &config.Config{Log: log},
	}
	return svc, providers
}

func confirmedBooking(id, hhmm string, hours int) *model.Booking {
	return &model.Booking{
		ID:            id,
		CustomerID:    "cust-1",
		ProviderID:    providerA,
		ServiceType:   "standard clean",
		Date:          "2025-01-15",
		Time:          hhmm,
		DurationHours: hours,
		Status:        config.Confirmed,
	}
}

func newRequest(hhmm string, hours int) *model.Booking {
	b := confirmedBooking("", hhmm, hours)
	b.Status = ""
	return b
}

// ────── Create ──────

func TestCreate_ConflictGate(t *testing.T) {
	tests := []struct {
		name         string
		hhmm         string
		hours        int
		wantConflict bool
	}{
		{name: "overlapping start", hhmm: "11:00", hours: 1, wantConflict: true},
		{name: "enclosing window", hhmm: "09:00", hours: 4, wantConflict: true},
		{name: "ends where existing starts", hhmm: "08:00", hours: 2},
		{name: "starts where existing ends", hhmm: "12:00", hours: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockBookingRepository(confirmedBooking(bookingX, "10:00", 2))
			locker := newMockLocker()
			svc, _ := newTestService(repo, locker)

			err := svc.Create(context.Background(), newRequest(tt.hhmm, tt.hours))

			if tt.wantConflict {
				if !apperrors.HasCode(err, apperrors.CodeConflict) {
					t.Fatalf("expected CONFLICT, got %v", err)
				}
				appErr := apperrors.AsAppError(err)
				if appErr.Details["conflicting_booking"] != bookingX {
					t.Errorf("expected conflicting booking %s, got %v", bookingX, appErr.Details["conflicting_booking"])
				}
				if len(repo.created) != 0 {
					t.Errorf("expected nothing created on conflict")
				}
			} else if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(locker.acquired) != 1 || len(locker.released) != 1 {
				t.Errorf("expected lock acquired and released once, got %v / %v", locker.acquired, locker.released)
			}
		})
	}
}

func TestCreate_CancelledBookingDoesNotBlock(t *testing.T) {
	cancelled := confirmedBooking(bookingX, "10:00", 2)
	cancelled.Status = config.Cancelled
	repo := newMockBookingRepository(cancelled)
	svc, _ := newTestService(repo, newMockLocker())

	if err := svc.Create(context.Background(), newRequest("10:00", 2)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestCreate_DefaultsAndSanitizes(t *testing.T) {
	repo := newMockBookingRepository()
	svc, _ := newTestService(repo, newMockLocker())

	b := newRequest("10:00", 2)
	b.ProviderID = ""
	b.ServiceType = "  Deep   CLEAN "
	b.Notes = " ring\tthe  bell "
	if err := svc.Create(context.Background(), b); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if b.Status != config.Pending {
		t.Errorf("expected default status pending, got %s", b.Status)
	}
	if b.ServiceType != "deep clean" {
		t.Errorf("expected normalized service type, got %q", b.ServiceType)
	}
	if b.Notes != "ring the bell" {
		t.Errorf("expected normalized notes, got %q", b.Notes)
	}
	if repo.txCalls != 0 {
		t.Errorf("unassigned booking should not open a transaction")
	}
}

func TestCreate_RejectsClientSuppliedStatus(t *testing.T) {
	for _, status := range []config.BookingStatus{config.Confirmed, config.InProgress, config.Completed, config.Cancelled} {
		t.Run(string(status), func(t *testing.T) {
			repo := newMockBookingRepository()
			locker := newMockLocker()
			svc, _ := newTestService(repo, locker)

			b := newRequest("10:00", 2)
			b.Status = status
			err := svc.Create(context.Background(), b)
			if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
			if len(repo.created) != 0 || len(locker.acquired) != 0 {
				t.Errorf("expected no lock and no write for a rejected status")
			}
		})
	}
}

func TestCreate_WithProviderThenCancelLeavesLoadAlone(t *testing.T) {
	repo := newMockBookingRepository()
	svc, providers := newTestService(repo, newMockLocker())

	b := newRequest("10:00", 2)
	b.Status = config.Pending
	if err := svc.Create(context.Background(), b); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if b.Status != config.Pending {
		t.Fatalf("expected created booking to be pending, got %s", b.Status)
	}

	if _, err := svc.Cancel(context.Background(), b.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(providers.released) != 0 {
		t.Errorf("load was never added for this booking, got release for %v", providers.released)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	repo := newMockBookingRepository()
	svc, _ := newTestService(repo, newMockLocker())

	b := newRequest("25:00", 2)
	err := svc.Create(context.Background(), b)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Errorf("expected no write on validation failure")
	}
}

func TestCreate_UnknownProvider(t *testing.T) {
	svc, _ := newTestService(newMockBookingRepository(), newMockLocker())

	b := newRequest("10:00", 2)
	b.ProviderID = "65a1b2c3d4e5f60718293a00"
	err := svc.Create(context.Background(), b)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCreate_LockHeld(t *testing.T) {
	locker := newMockLocker()
	locker.held[mongotx.ProviderDayKey(providerA, "2025-01-15")] = true
	svc, _ := newTestService(newMockBookingRepository(), locker)

	err := svc.Create(context.Background(), newRequest("10:00", 2))
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT while lock is held, got %v", err)
	}
}

func TestCreate_RepositoryFailure(t *testing.T) {
	repo := newMockBookingRepository()
	repo.createFn = func(*model.Booking) error { return errors.New("connection reset") }
	locker := newMockLocker()
	svc, _ := newTestService(repo, locker)

	err := svc.Create(context.Background(), newRequest("10:00", 2))
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("expected INTERNAL_ERROR, got %v", err)
	}
	if len(locker.released) != 1 {
		t.Errorf("lock must be released after a failed create")
	}
}

// ────── GetByID ──────

func TestGetByID_ErrorMapping(t *testing.T) {
	svc, _ := newTestService(newMockBookingRepository(confirmedBooking(bookingX, "10:00", 2)), newMockLocker())

	tests := []struct {
		id       string
		wantCode string
	}{
		{id: "", wantCode: apperrors.CodeInvalidInput},
		{id: "bad", wantCode: apperrors.CodeInvalidInput},
		{id: "65a1b2c3d4e5f60718293a00", wantCode: apperrors.CodeNotFound},
		{id: bookingX},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			b, err := svc.GetByID(context.Background(), tt.id)
			if tt.wantCode == "" {
				if err != nil || b.ID != bookingX {
					t.Fatalf("expected booking %s, got %v, %v", bookingX, b, err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

// ────── Reschedule ──────

func TestReschedule_IntoOwnSlotIsNotAConflict(t *testing.T) {
	repo := newMockBookingRepository(confirmedBooking(bookingX, "10:00", 2))
	svc, _ := newTestService(repo, newMockLocker())

	updated, err := svc.Reschedule(context.Background(), bookingX, &model.BookingReschedule{Date: "2025-01-15", Time: "11:00"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Time != "11:00" || updated.DurationHours != 2 {
		t.Errorf("expected 11:00 for 2h, got %s for %dh", updated.Time, updated.DurationHours)
	}
	if repo.bookings[bookingX].Time != "11:00" {
		t.Errorf("expected stored time to change")
	}
}

func TestReschedule_ConflictWithOtherBooking(t *testing.T) {
	other := confirmedBooking("65a1b2c3d4e5f60718293a4c", "13:00", 2)
	repo := newMockBookingRepository(confirmedBooking(bookingX, "10:00", 2), other)
	svc, _ := newTestService(repo, newMockLocker())

	three := 3
	_, err := svc.Reschedule(context.Background(), bookingX, &model.BookingReschedule{Date: "2025-01-15", Time: "11:00", DurationHours: &three})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if repo.bookings[bookingX].Time != "10:00" {
		t.Errorf("booking must stay untouched on conflict")
	}
}

func TestReschedule_ClosedBooking(t *testing.T) {
	done := confirmedBooking(bookingX, "10:00", 2)
	done.Status = config.Completed
	svc, _ := newTestService(newMockBookingRepository(done), newMockLocker())

	_, err := svc.Reschedule(context.Background(), bookingX, &model.BookingReschedule{Date: "2025-01-16", Time: "10:00"})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT for completed booking, got %v", err)
	}
}

func TestReschedule_InvalidInput(t *testing.T) {
	svc, _ := newTestService(newMockBookingRepository(confirmedBooking(bookingX, "10:00", 2)), newMockLocker())

	_, err := svc.Reschedule(context.Background(), bookingX, &model.BookingReschedule{Date: "2025-01-16", Time: "7pm"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

// ────── Cancel ──────

func TestCancel_ReleasesProviderLoad(t *testing.T) {
	repo := newMockBookingRepository(confirmedBooking(bookingX, "10:00", 2))
	svc, providers := newTestService(repo, newMockLocker())

	cancelled, err := svc.Cancel(context.Background(), bookingX)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cancelled.Status != config.Cancelled {
		t.Errorf("expected cancelled status, got %s", cancelled.Status)
	}
	if len(providers.released) != 1 || providers.released[0] != providerA {
		t.Errorf("expected load released for %s, got %v", providerA, providers.released)
	}
}

func TestCancel_PendingDoesNotReleaseLoad(t *testing.T) {
	pending := confirmedBooking(bookingX, "10:00", 2)
	pending.ProviderID = ""
	pending.Status = config.Pending
	svc, providers := newTestService(newMockBookingRepository(pending), newMockLocker())

	if _, err := svc.Cancel(context.Background(), bookingX); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(providers.released) != 0 {
		t.Errorf("expected no load release, got %v", providers.released)
	}
}

func TestCancel_Idempotent(t *testing.T) {
	cancelled := confirmedBooking(bookingX, "10:00", 2)
	cancelled.Status = config.Cancelled
	repo := newMockBookingRepository(cancelled)
	svc, providers := newTestService(repo, newMockLocker())

	if _, err := svc.Cancel(context.Background(), bookingX); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.txCalls != 0 || len(providers.released) != 0 {
		t.Errorf("second cancel must not write")
	}
}
