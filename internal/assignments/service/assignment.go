package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tidyslot/internal/assignments/validator"
	bookingserrors "tidyslot/internal/bookings/errors"
	bookingsrepo "tidyslot/internal/bookings/repository"
	"tidyslot/internal/notifications"
	"tidyslot/internal/observability/metrics"
	providerserrors "tidyslot/internal/providers/errors"
	providersrepo "tidyslot/internal/providers/repository"
	"tidyslot/pkg/assignment"
	"tidyslot/pkg/config"
	mongotx "tidyslot/pkg/db/mongo"
	apperrors "tidyslot/pkg/errors"
	"tidyslot/pkg/model"
	"tidyslot/pkg/sanitizer"
	"tidyslot/pkg/scheduling"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

type AssignmentService interface {
	AutoAssign(ctx context.Context, req model.AutoAssignRequest) (*model.AutoAssignResult, error)
}

type Locker interface {
	Acquire(ctx context.Context, key string) (func(context.Context) error, error)
}

type Notifier interface {
	ProviderAssigned(ctx context.Context, event notifications.ProviderAssignedEvent) error
}

type Auditor interface {
	ProviderAssigned(ctx context.Context, bookingID, providerID, strategy string, distanceKm float64) error
}

type assignmentService struct {
	bookings  bookingsrepo.BookingRepository
	providers providersrepo.ProviderRepository
	locker    Locker
	notifier  Notifier
	auditor   Auditor
	metrics   *metrics.Metrics
	engine    *assignment.Engine
	validator *validator.AssignmentValidator
	cfg       *config.Config
	now       func() time.Time
}

type Dependencies struct {
	Bookings  bookingsrepo.BookingRepository
	Providers providersrepo.ProviderRepository
	Locker    Locker
	Notifier  Notifier
	Auditor   Auditor
	Metrics   *metrics.Metrics
	Validator *validator.AssignmentValidator
}

func NewAssignmentService(deps Dependencies, cfg *config.Config) AssignmentService {
	return &assignmentService{
		bookings:  deps.Bookings,
		providers: deps.Providers,
		locker:    deps.Locker,
		notifier:  deps.Notifier,
		auditor:   deps.Auditor,
		metrics:   deps.Metrics,
		engine:    assignment.NewEngine(assignment.GeoDistance(cfg.FallbackDistanceKm)),
		validator: deps.Validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// unitOutcome is what one execution unit reports back to the batch.
type unitOutcome struct {
	assigned bool
	errors   []string
}

// plannedJob pairs a job with the window parsed when the batch was planned.
type plannedJob struct {
	booking  *model.Booking
	interval scheduling.TimeInterval
}

// AutoAssign plans a batch over the unassigned pending bookings and executes
// every planned pairing. Partial failures are reported in the result, never
// as an error; only invalid input or a failed snapshot load returns one.
func (s *assignmentService) AutoAssign(ctx context.Context, req model.AutoAssignRequest) (*model.AutoAssignResult, error) {
	started := s.now()

	req.JobIDs = sanitizer.NormalizeIDs(req.JobIDs)
	req.Strategy = sanitizer.NormalizeLabel(req.Strategy)
	if err := s.validator.Validate(&req); err != nil {
		s.cfg.Log.Warn("Auto-assign request validation failed", "error", err)
		return nil, apperrors.Validation("Invalid auto-assign request", map[string]any{"error": err.Error()})
	}

	strategy := s.cfg.Strategy()
	if req.Strategy != "" {
		parsed, err := assignment.ParseStrategy(req.Strategy)
		if err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		strategy = parsed
	}
	result := model.NewAutoAssignResult(strategy)

	jobs, err := s.bookings.FindUnassigned(ctx, req.JobIDs, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to load unassigned bookings", "error", err)
		return nil, apperrors.Internal("Failed to load unassigned bookings", err)
	}
	s.reportIneligible(req.JobIDs, jobs, result)
	if len(jobs) == 0 {
		s.finish(result, 0, started)
		return result, nil
	}

	providers, err := s.providers.FindAvailable(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load available providers", "error", err)
		return nil, apperrors.Internal("Failed to load providers", err)
	}

	requests := make([]assignment.JobRequest, 0, len(jobs))
	byID := make(map[string]plannedJob, len(jobs))
	dates := make([]string, 0, len(jobs))
	seenDates := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		request, err := job.JobRequest()
		if err != nil {
			result.Unassigned = append(result.Unassigned, job.ID)
			result.Errors = append(result.Errors, fmt.Sprintf("job %s: unreadable schedule: %v", job.ID, err))
			continue
		}
		requests = append(requests, request)
		byID[job.ID] = plannedJob{booking: job, interval: request.Interval}
		if !seenDates[job.Date] {
			seenDates[job.Date] = true
			dates = append(dates, job.Date)
		}
	}

	providerIDs := make([]string, 0, len(providers))
	for _, p := range providers {
		providerIDs = append(providerIDs, p.ID)
	}
	existing, err := s.bookings.FindActiveByProvidersAndDates(ctx, providerIDs, dates)
	if err != nil {
		s.cfg.Log.Error("Failed to load provider bookings", "error", err)
		return nil, apperrors.Internal("Failed to load provider bookings", err)
	}

	plan := s.engine.Plan(assignment.PlanInput{
		Jobs:      requests,
		Providers: model.ProviderSnapshots(providers),
		Bookings:    s.groupByProvider(existing),
		SameDayLoad: true,
		Strategy:    strategy,
	})
	result.Unassigned = append(result.Unassigned, plan.Unassigned...)

	failedUnits := 0
	outcomes := s.execute(ctx, plan.Assignments, byID, strategy)
	for i, outcome := range outcomes {
		result.Errors = append(result.Errors, outcome.errors...)
		if outcome.assigned {
			result.Assignments = append(result.Assignments, plan.Assignments[i])
		} else {
			failedUnits++
		}
	}
	result.Assigned = len(result.Assignments)

	s.finish(result, failedUnits, started)
	return result, nil
}

// execute runs one unit per planned assignment with bounded concurrency.
// Each unit owns a distinct provider, so units never contend with each other.
func (s *assignmentService) execute(ctx context.Context, planned []assignment.Assignment, jobs map[string]plannedJob, strategy assignment.Strategy) []unitOutcome {
	outcomes := make([]unitOutcome, len(planned))

	var g errgroup.Group
	g.SetLimit(max(1, s.cfg.AssignmentConcurrency))
	for i, a := range planned {
		i, a := i, a
		g.Go(func() error {
			outcomes[i] = s.executeOne(ctx, a, jobs[a.JobID], strategy)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (s *assignmentService) executeOne(ctx context.Context, a assignment.Assignment, planned plannedJob, strategy assignment.Strategy) unitOutcome {
	job := planned.booking
	keys := []string{mongotx.ProviderKey(a.ProviderID), mongotx.ProviderDayKey(a.ProviderID, job.Date)}
	for _, key := range keys {
		release, err := s.locker.Acquire(ctx, key)
		if err != nil {
			if errors.Is(err, mongotx.ErrLocked) {
				return failed(fmt.Sprintf("job %s: provider %s is busy with another write, retry later", a.JobID, a.ProviderID))
			}
			s.cfg.Log.Error("Failed to acquire assignment lock", "job_id", a.JobID, "provider_id", a.ProviderID, "error", err)
			return failed(fmt.Sprintf("job %s: failed to lock provider %s: %v", a.JobID, a.ProviderID, err))
		}
		defer s.releaseLock(ctx, release, key)
	}

	err := s.bookings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		current, err := s.bookings.FindActiveByProvidersAndDates(sessCtx, []string{a.ProviderID}, []string{job.Date})
		if err != nil {
			return err
		}
		for _, b := range current {
			snapshot, err := b.Snapshot()
			if err != nil {
				continue
			}
			if snapshot.Occupying() && snapshot.ID != a.JobID && scheduling.Overlaps(snapshot.Interval, planned.interval) {
				return fmt.Errorf("provider %s was booked for %s in the meantime", a.ProviderID, b.ID)
			}
		}
		if err := s.bookings.AssignProvider(sessCtx, a.JobID, a.ProviderID); err != nil {
			return err
		}
		return s.providers.MarkAssigned(sessCtx, a.ProviderID)
	})
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrNotAssignable):
			s.cfg.Log.Warn("Booking changed before assignment", "job_id", a.JobID, "provider_id", a.ProviderID)
			return failed(fmt.Sprintf("job %s: no longer unassigned and pending", a.JobID))
		case errors.Is(err, providerserrors.ErrNotFound):
			return failed(fmt.Sprintf("job %s: provider %s no longer exists", a.JobID, a.ProviderID))
		default:
			s.cfg.Log.Error("Failed to assign provider", "job_id", a.JobID, "provider_id", a.ProviderID, "error", err)
			return failed(fmt.Sprintf("job %s: failed to assign provider %s: %v", a.JobID, a.ProviderID, err))
		}
	}

	s.cfg.Log.Info("Provider assigned",
		"job_id", a.JobID,
		"provider_id", a.ProviderID,
		"strategy", strategy.String(),
		"score", a.Score,
		"distance_km", a.DistanceKm,
	)

	outcome := unitOutcome{assigned: true}
	event := notifications.ProviderAssignedEvent{
		BookingID:     a.JobID,
		ProviderID:    a.ProviderID,
		Date:          job.Date,
		Time:          job.Time,
		DurationHours: job.DurationHours,
		Strategy:      strategy.String(),
		Score:         a.Score,
		DistanceKm:    a.DistanceKm,
		AssignedAt:    s.now().UTC(),
	}
	if err := s.notifier.ProviderAssigned(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to notify provider", "job_id", a.JobID, "provider_id", a.ProviderID, "error", err)
		s.metrics.ObserveSideEffectError("notification")
		outcome.errors = append(outcome.errors, fmt.Sprintf("job %s: notification failed: %v", a.JobID, err))
	}
	if err := s.auditor.ProviderAssigned(ctx, a.JobID, a.ProviderID, strategy.String(), a.DistanceKm); err != nil {
		s.cfg.Log.Error("Failed to write audit entry", "job_id", a.JobID, "provider_id", a.ProviderID, "error", err)
		s.metrics.ObserveSideEffectError("audit")
		outcome.errors = append(outcome.errors, fmt.Sprintf("job %s: audit failed: %v", a.JobID, err))
	}
	return outcome
}

func (s *assignmentService) releaseLock(ctx context.Context, release func(context.Context) error, key string) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		s.cfg.Log.Warn("Failed to release assignment lock", "key", key, "error", err)
	}
}

// reportIneligible flags explicitly requested jobs that are not unassigned
// pending bookings, so callers can tell them apart from jobs nobody could take.
func (s *assignmentService) reportIneligible(requested []string, found []*model.Booking, result *model.AutoAssignResult) {
	if len(requested) == 0 {
		return
	}
	loaded := make(map[string]bool, len(found))
	for _, b := range found {
		loaded[b.ID] = true
	}
	for _, id := range requested {
		if !loaded[id] {
			result.Errors = append(result.Errors, fmt.Sprintf("job %s: not an unassigned pending booking", id))
		}
	}
}

func (s *assignmentService) groupByProvider(bookings []*model.Booking) map[string][]scheduling.BookingSnapshot {
	grouped := make(map[string][]scheduling.BookingSnapshot)
	for _, b := range bookings {
		snapshot, err := b.Snapshot()
		if err != nil {
			s.cfg.Log.Warn("Skipping booking with unreadable time", "id", b.ID, "time", b.Time, "error", err)
			continue
		}
		grouped[b.ProviderID] = append(grouped[b.ProviderID], snapshot)
	}
	return grouped
}

func (s *assignmentService) finish(result *model.AutoAssignResult, failedUnits int, started time.Time) {
	s.metrics.ObserveAssignments(result.Strategy, metrics.OutcomeAssigned, result.Assigned)
	s.metrics.ObserveAssignments(result.Strategy, metrics.OutcomeUnassigned, len(result.Unassigned))
	s.metrics.ObserveAssignments(result.Strategy, metrics.OutcomeFailed, failedUnits)
	s.metrics.ObserveBatch(result.Strategy, s.now().Sub(started))

	s.cfg.Log.Info("Auto-assignment batch finished",
		"strategy", result.Strategy,
		"assigned", result.Assigned,
		"unassigned", len(result.Unassigned),
		"failed", failedUnits,
		"errors", len(result.Errors),
	)
}

func failed(msg string) unitOutcome {
	return unitOutcome{errors: []string{msg}}
}
