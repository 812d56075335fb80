package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "tidyslot/pkg/errors"
	"tidyslot/pkg/logger"
	"tidyslot/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockBookingService struct {
	createFunc     func(ctx context.Context, b *model.Booking) error
	rescheduleFunc func(ctx context.Context, id string, req *model.BookingReschedule) (*model.Booking, error)
	cancelFunc     func(ctx context.Context, id string) (*model.Booking, error)
}

func (m *mockBookingService) Create(ctx context.Context, b *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, b)
	}
	return nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) Reschedule(ctx context.Context, id string, req *model.BookingReschedule) (*model.Booking, error) {
	return m.rescheduleFunc(ctx, id, req)
}

func (m *mockBookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	return m.cancelFunc(ctx, id)
}

func newRouter(svc *mockBookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestCreate_ConflictReturns409(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, b *model.Booking) error {
			return apperrors.SlotConflict(b.ProviderID, b.Date, "10:00-12:00", "b7")
		},
	}

	body := `{"customer_id":"c1","provider_id":"p1","service_type":"standard","date":"2025-01-15","time":"10:00","duration_hours":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Code != apperrors.CodeConflict || resp.Details["conflicting_booking"] != "b7" {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
}

func TestCreate_RejectsUnknownFields(t *testing.T) {
	called := false
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, b *model.Booking) error {
			called = true
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{"capacity":3}`))
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if called {
		t.Error("service must not be called for a malformed body")
	}
}

func TestCreate_Success(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, b *model.Booking) error {
			b.ID = "new-id"
			return nil
		},
	}

	body := `{"customer_id":"c1","service_type":"standard","date":"2025-01-15","time":"10:00","duration_hours":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"id":"new-id"`) {
		t.Errorf("expected created booking in data envelope, got %s", rec.Body.String())
	}
}

func TestReschedule_PassesPathID(t *testing.T) {
	var gotID string
	svc := &mockBookingService{
		rescheduleFunc: func(ctx context.Context, id string, req *model.BookingReschedule) (*model.Booking, error) {
			gotID = id
			return &model.Booking{ID: id, Date: req.Date, Time: req.Time}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/id/abc/reschedule", strings.NewReader(`{"date":"2025-01-16","time":"13:00"}`))
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != "abc" {
		t.Errorf("expected id abc, got %q", gotID)
	}
}

func TestCancel_NotFound(t *testing.T) {
	svc := &mockBookingService{
		cancelFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/missing/cancel", nil)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
