package assignment

import (
	"sort"

	"tidyslot/pkg/scheduling"
)

// JobRequest is an unassigned booking waiting for a provider.
type JobRequest struct {
	ID       string
	Date     string
	Interval scheduling.TimeInterval
	Location *scheduling.GeoPoint
}

type Assignment struct {
	JobID      string  `json:"job_id"`
	ProviderID string  `json:"provider_id"`
	Score      float64 `json:"score"`
	DistanceKm float64 `json:"distance_km"`
}

type PlanInput struct {
	Jobs      []JobRequest
	Providers []scheduling.ProviderSnapshot
	// Bookings holds existing bookings keyed by provider id. Providers with an
	// occupying booking overlapping a job on the same date are skipped for it.
	Bookings map[string][]scheduling.BookingSnapshot
	// SameDayLoad scores each provider by its occupying bookings on the job's
	// date instead of ProviderSnapshot.CurrentLoad.
	SameDayLoad bool
	Strategy    Strategy
}

type Plan struct {
	Assignments []Assignment
	Unassigned  []string
}

type Engine struct {
	distance DistanceFunc
}

func NewEngine(distance DistanceFunc) *Engine {
	if distance == nil {
		distance = GeoDistance(DefaultFallbackDistanceKm)
	}
	return &Engine{distance: distance}
}

// Plan pairs each job with the highest scoring provider not yet claimed in
// this batch. Jobs are resolved earliest first and a provider is claimed by
// at most one job. Jobs with no provider scoring above zero are left in
// Plan.Unassigned.
func (e *Engine) Plan(in PlanInput) Plan {
	plan := Plan{Assignments: []Assignment{}, Unassigned: []string{}}
	if len(in.Jobs) == 0 || len(in.Providers) == 0 {
		for _, job := range in.Jobs {
			plan.Unassigned = append(plan.Unassigned, job.ID)
		}
		return plan
	}

	claimed := make(map[string]struct{}, len(in.Providers))
	for _, job := range sortByUrgency(in.Jobs) {
		best, ok := e.bestProvider(job, in, claimed)
		if !ok {
			plan.Unassigned = append(plan.Unassigned, job.ID)
			continue
		}
		claimed[best.ProviderID] = struct{}{}
		plan.Assignments = append(plan.Assignments, best)
	}
	return plan
}

func (e *Engine) bestProvider(job JobRequest, in PlanInput, claimed map[string]struct{}) (Assignment, bool) {
	var best Assignment
	bestScore := 0.0
	found := false

	for _, provider := range in.Providers {
		if !provider.Available() {
			continue
		}
		if _, taken := claimed[provider.ID]; taken {
			continue
		}
		if busyDuring(in.Bookings[provider.ID], job) {
			continue
		}

		if in.SameDayLoad {
			provider.CurrentLoad = loadOn(in.Bookings[provider.ID], job.Date)
		}

		distanceKm := e.distance(provider, job)
		score := Score(in.Strategy, provider, distanceKm)
		if score > bestScore {
			bestScore = score
			best = Assignment{
				JobID:      job.ID,
				ProviderID: provider.ID,
				Score:      score,
				DistanceKm: distanceKm,
			}
			found = true
		}
	}
	return best, found
}

func busyDuring(bookings []scheduling.BookingSnapshot, job JobRequest) bool {
	if len(bookings) == 0 {
		return false
	}
	sameDay := make([]scheduling.BookingSnapshot, 0, len(bookings))
	for _, b := range bookings {
		if b.Date == job.Date {
			sameDay = append(sameDay, b)
		}
	}
	return scheduling.HasConflict(sameDay, job.Interval, job.ID)
}

func loadOn(bookings []scheduling.BookingSnapshot, date string) int {
	load := 0
	for _, b := range bookings {
		if b.Date == date && b.Occupying() {
			load++
		}
	}
	return load
}

// sortByUrgency orders jobs by date then start minute; ties fall back to id
// so repeated runs over the same input produce the same plan.
func sortByUrgency(jobs []JobRequest) []JobRequest {
	sorted := make([]JobRequest, len(jobs))
	copy(sorted, jobs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		if sorted[i].Interval.Start != sorted[j].Interval.Start {
			return sorted[i].Interval.Start < sorted[j].Interval.Start
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
