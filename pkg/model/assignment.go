package model

import "tidyslot/pkg/assignment"

// AutoAssignRequest starts one batch. An empty JobIDs list means every
// unassigned pending booking; an empty Strategy means the configured default.
type AutoAssignRequest struct {
	JobIDs   []string `json:"job_ids,omitempty" validate:"omitempty,max=500,dive,mongodb"`
	Strategy string   `json:"strategy,omitempty" validate:"omitempty,oneof=distance workload rating balanced"`
}

type AutoAssignResult struct {
	Strategy    string                  `json:"strategy"`
	Assigned    int                     `json:"assigned"`
	Assignments []assignment.Assignment `json:"assignments"`
	Unassigned  []string                `json:"unassigned"`
	Errors      []string                `json:"errors"`
}

func NewAutoAssignResult(strategy assignment.Strategy) *AutoAssignResult {
	return &AutoAssignResult{
		Strategy:    strategy.String(),
		Assignments: []assignment.Assignment{},
		Unassigned:  []string{},
		Errors:      []string{},
	}
}
