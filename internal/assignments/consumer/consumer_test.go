package consumer

import (
	"context"
	"errors"
	"testing"

	"tidyslot/pkg/assignment"
	apperrors "tidyslot/pkg/errors"
	"tidyslot/pkg/kafka"
	"tidyslot/pkg/logger"
	"tidyslot/pkg/model"
)

type mockAssignmentService struct {
	calls   int
	lastReq model.AutoAssignRequest
	err     error
}

func (m *mockAssignmentService) AutoAssign(ctx context.Context, req model.AutoAssignRequest) (*model.AutoAssignResult, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return model.NewAutoAssignResult(assignment.Balanced), nil
}

func message(value string) kafka.Message {
	return kafka.NewMessage().
		WithKey("batch-1").
		WithRawValue([]byte(value)).
		WithEventType("auto_assign.requested").
		Build()
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		err       error
		wantType  kafka.ErrorType
		wantErr   bool
		wantCalls int
	}{
		{name: "valid request", value: `{"job_ids":["65a1b2c3d4e5f60718293a4b"],"strategy":"rating"}`, wantCalls: 1},
		{name: "empty object", value: `{}`, wantCalls: 1},
		{name: "empty payload", value: ``, wantErr: true, wantType: kafka.ErrorTypePermanent},
		{name: "malformed payload", value: `{"job_ids":`, wantErr: true, wantType: kafka.ErrorTypePermanent},
		{name: "invalid request", value: `{"strategy":"cheapest"}`, err: apperrors.Validation("Invalid auto-assign request", nil), wantErr: true, wantType: kafka.ErrorTypeBusiness, wantCalls: 1},
		{name: "infrastructure failure", value: `{}`, err: apperrors.Internal("Failed to load providers", errors.New("timeout")), wantErr: true, wantType: kafka.ErrorTypeTransient, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAssignmentService{err: tt.err}
			h := NewAutoAssignHandler(svc, logger.Discard())

			err := h.Handle(context.Background(), message(tt.value))

			if svc.calls != tt.wantCalls {
				t.Errorf("expected %d service calls, got %d", tt.wantCalls, svc.calls)
			}
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := kafka.ClassifyError(err); got != tt.wantType {
				t.Errorf("expected error type %v, got %v", tt.wantType, got)
			}
		})
	}
}

func TestHandle_DecodesRequest(t *testing.T) {
	svc := &mockAssignmentService{}
	h := NewAutoAssignHandler(svc, logger.Discard())

	if err := h.Handle(context.Background(), message(`{"job_ids":["a","b"],"strategy":"workload"}`)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if svc.lastReq.Strategy != "workload" || len(svc.lastReq.JobIDs) != 2 {
		t.Errorf("unexpected request %+v", svc.lastReq)
	}
}
