package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tidyslot/pkg/assignment"
	apperrors "tidyslot/pkg/errors"
	"tidyslot/pkg/logger"
	"tidyslot/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockAssignmentService struct {
	calls   int
	lastReq model.AutoAssignRequest
	result  *model.AutoAssignResult
	err     error
}

func (m *mockAssignmentService) AutoAssign(ctx context.Context, req model.AutoAssignRequest) (*model.AutoAssignResult, error) {
	m.calls++
	m.lastReq = req
	return m.result, m.err
}

func post(svc *mockAssignmentService, body string) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewAssignmentHandler(svc, logger.Discard()).RegisterRoutes(router)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, "/api/v1/assignments/auto", nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/api/v1/assignments/auto", strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAutoAssign_EmptyBodyUsesDefaults(t *testing.T) {
	svc := &mockAssignmentService{result: model.NewAutoAssignResult(assignment.Balanced)}

	rec := post(svc, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.calls != 1 || svc.lastReq.Strategy != "" || len(svc.lastReq.JobIDs) != 0 {
		t.Errorf("expected a zero request, got %+v", svc.lastReq)
	}
}

func TestAutoAssign_ReturnsResultEnvelope(t *testing.T) {
	result := model.NewAutoAssignResult(assignment.Distance)
	result.Assigned = 1
	result.Assignments = append(result.Assignments, assignment.Assignment{JobID: "j1", ProviderID: "p1", Score: 990, DistanceKm: 1})
	result.Errors = append(result.Errors, "job j1: notification failed: broker down")
	svc := &mockAssignmentService{result: result}

	rec := post(svc, `{"job_ids":["65a1b2c3d4e5f60718293a4b"],"strategy":"distance"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastReq.Strategy != "distance" || len(svc.lastReq.JobIDs) != 1 {
		t.Errorf("request not decoded: %+v", svc.lastReq)
	}

	var resp struct {
		Data struct {
			Assigned    int `json:"assigned"`
			Assignments []struct {
				JobID      string `json:"job_id"`
				ProviderID string `json:"provider_id"`
			} `json:"assignments"`
			Unassigned []string `json:"unassigned"`
			Errors     []string `json:"errors"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Data.Assigned != 1 || resp.Data.Assignments[0].ProviderID != "p1" {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if resp.Data.Unassigned == nil || len(resp.Data.Errors) != 1 {
		t.Errorf("expected empty unassigned array and one error, got %s", rec.Body.String())
	}
}

func TestAutoAssign_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		err       error
		wantCode  int
		wantCalls int
	}{
		{name: "malformed json", body: `{"job_ids":`, wantCode: http.StatusBadRequest},
		{name: "unknown field", body: `{"priority":1}`, wantCode: http.StatusBadRequest},
		{name: "validation", body: `{"strategy":"cheapest"}`, err: apperrors.Validation("Invalid auto-assign request", nil), wantCode: http.StatusUnprocessableEntity, wantCalls: 1},
		{name: "snapshot load failure", body: `{}`, err: apperrors.Internal("Failed to load providers", nil), wantCode: http.StatusInternalServerError, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAssignmentService{err: tt.err}

			rec := post(svc, tt.body)

			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if svc.calls != tt.wantCalls {
				t.Errorf("expected %d service calls, got %d", tt.wantCalls, svc.calls)
			}
		})
	}
}
