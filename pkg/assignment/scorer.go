package assignment

import (
	"math"

	"tidyslot/pkg/scheduling"
)

const (
	baseScore = 1000.0

	distancePenaltyPerKm  = 10.0
	workloadPenaltyPerJob = 100.0
	ratingWeight          = 200.0

	balancedDistanceCapKm  = 50.0
	balancedDistanceWeight = 4.0
	balancedLoadCap        = 10
	balancedLoadWeight     = 30.0
	balancedRatingWeight   = 30.0
)

// Score rates how desirable provider is for a job distanceKm away. Providers
// outside their service radius always score zero.
func Score(strategy Strategy, provider scheduling.ProviderSnapshot, distanceKm float64) float64 {
	if OutOfRange(provider, distanceKm) {
		return 0
	}

	switch strategy {
	case Distance:
		return baseScore - distanceKm*distancePenaltyPerKm
	case Workload:
		return baseScore - float64(provider.CurrentLoad)*workloadPenaltyPerJob
	case Rating:
		return provider.Rating * ratingWeight
	default:
		return balancedScore(provider, distanceKm)
	}
}

func OutOfRange(provider scheduling.ProviderSnapshot, distanceKm float64) bool {
	return provider.ServiceRadiusKm > 0 && distanceKm > provider.ServiceRadiusKm
}

func balancedScore(provider scheduling.ProviderSnapshot, distanceKm float64) float64 {
	distanceTerm := (100 - math.Min(distanceKm, balancedDistanceCapKm)) * balancedDistanceWeight
	loadTerm := float64(balancedLoadCap-min(provider.CurrentLoad, balancedLoadCap)) * balancedLoadWeight
	ratingTerm := provider.Rating * balancedRatingWeight
	return distanceTerm + loadTerm + ratingTerm
}
